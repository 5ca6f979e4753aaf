// Package chat talks to the hosted text-generation endpoint behind the chatbot.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

type generateRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters generateParams `json:"parameters"`
	Options    generateOpts   `json:"options"`
}

type generateParams struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateOpts struct {
	WaitForModel bool `json:"wait_for_model"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// Client is a Hugging Face style inference client. Every call is bounded by
// the client timeout or the context deadline, whichever is sooner.
type Client struct {
	http    *fasthttp.Client
	url     string
	apiKey  string
	timeout time.Duration
}

func NewClient(url, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http: &fasthttp.Client{
			Name:         "wastetrack",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:     url,
		apiKey:  apiKey,
		timeout: timeout,
	}
}

// Generate sends prompt upstream and returns the first generated text, which
// may be empty.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return "", context.DeadlineExceeded
	}

	body, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParams{
			MaxNewTokens: 200,
			Temperature:  0.5,
			TopP:         0.9,
		},
		Options: generateOpts{WaitForModel: true},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return "", fmt.Errorf("model responded with status %d", status)
	}

	var out []generation
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out) == 0 {
		return "", nil
	}
	return out[0].GeneratedText, nil
}
