package handlers

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// weight decodes from a JSON number or a numeric string, which is what HTML
// number inputs submit once edited. A string that is not a number decodes to
// NaN so the service rejects it with its usual validation message.
type weight float64

func (w *weight) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			v = math.NaN()
		}
		*w = weight(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*w = weight(v)
	return nil
}
