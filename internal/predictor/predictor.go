// Package predictor calls an external model service for match win
// probabilities. The service is opaque: one POST per match context, one
// probability back.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/courtline/courtline/internal/model"
)

const DefaultTimeout = 5 * time.Second

// Client talks to the prediction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type predictRequest struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Home        string `json:"home"`
	Away        string `json:"away"`
	CloseTime   string `json:"close_time,omitempty"`
}

type predictResponse struct {
	Probability float64 `json:"probability"`
}

// Predict returns the modeled probability that the yes side of the
// contract resolves true.
func (c *Client) Predict(ctx context.Context, mc model.MatchContext) (float64, error) {
	reqBody := predictRequest{
		Ticker:      mc.Ticker,
		EventTicker: mc.EventTicker,
		Home:        mc.Home,
		Away:        mc.Away,
	}
	if !mc.CloseTime.IsZero() {
		reqBody.CloseTime = mc.CloseTime.Format(time.RFC3339)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, fmt.Errorf("read predict response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("predict service returned %d: %s", resp.StatusCode, body)
	}

	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("decode predict response: %w", err)
	}
	if out.Probability < 0 || out.Probability > 1 {
		return 0, fmt.Errorf("predict service returned probability %v outside [0,1]", out.Probability)
	}
	return out.Probability, nil
}
