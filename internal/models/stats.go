package models

import "time"

// Summary is the public statistics view over all waste entries.
type Summary struct {
	TotalWaste           float64            `json:"totalWaste"`
	LocationCount        int                `json:"locationCount"`
	CategoryDistribution map[string]float64 `json:"categoryDistribution"`
	DateWiseCollection   map[string]float64 `json:"dateWiseCollection"`
}

// NewSummary returns a zero summary with non-nil distributions.
func NewSummary() *Summary {
	return &Summary{
		CategoryDistribution: map[string]float64{},
		DateWiseCollection:   map[string]float64{},
	}
}

// Summarize folds entries into a Summary, bucketing days in loc.
// It mirrors the aggregation pipeline run by the store.
func Summarize(entries []WasteEntry, loc *time.Location) *Summary {
	s := NewSummary()
	locations := make(map[string]struct{})
	for _, e := range entries {
		s.TotalWaste += e.Weight
		locations[e.Location] = struct{}{}
		s.CategoryDistribution[string(e.Category)] += e.Weight
		s.DateWiseCollection[e.CollectedAt.In(loc).Format(DayKeyLayout)] += e.Weight
	}
	s.LocationCount = len(locations)
	return s
}
