// Package sentiment classifies text with a hosted three-class sentiment
// model. The classifier is an external collaborator; this package only wraps
// its HTTP interface and normalizes its opaque class labels.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/calebtn/go-mood-matcher/internal/score"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co"
	defaultModel   = "cardiffnlp/twitter-roberta-base-sentiment"
)

// ErrNoClassification is returned when the model yields no predictions.
var ErrNoClassification = errors.New("classifier returned no predictions")

// Result is one sentiment classification.
type Result struct {
	Label      score.Label
	Confidence float64
}

// Classifier maps text to a sentiment class with a confidence score.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// Client calls a HuggingFace-style inference endpoint.
type Client struct {
	baseURL    string
	model      string
	apiToken   string
	httpClient *http.Client
}

// Config configures the sentiment client.
type Config struct {
	BaseURL  string
	Model    string
	APIToken string
	Timeout  time.Duration
}

// NewClient creates a sentiment client from the provided configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		model:    cfg.Model,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// prediction is one scored class in the inference response.
type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends text to the model and returns the top-scoring class.
// Retries up to 3 times on rate limiting and transient server errors.
func (c *Client) Classify(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return Result{}, fmt.Errorf("encoding request: %w", err)
	}

	reqURL := c.baseURL + "/models/" + c.model

	delays := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	var lastErr error

	for attempt := 0; attempt <= len(delays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(delays[attempt-1]):
			}
		}

		result, retryable, err := c.doClassify(ctx, reqURL, body)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return Result{}, err
		}
		lastErr = err
	}

	return Result{}, lastErr
}

func (c *Client) doClassify(ctx context.Context, reqURL string, body []byte) (Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, false, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, false, fmt.Errorf("reading response: %w", err)
	}

	// 429 and 503 cover rate limiting and cold model starts.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return Result{}, true, fmt.Errorf("classifier returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, false, fmt.Errorf("classifier returned %s: %s", resp.Status, respBody)
	}

	// Response shape: [[{"label": "LABEL_2", "score": 0.98}, ...]]
	var nested [][]prediction
	if err := json.Unmarshal(respBody, &nested); err != nil {
		// Some deployments return a flat list.
		var flat []prediction
		if err := json.Unmarshal(respBody, &flat); err != nil {
			return Result{}, false, fmt.Errorf("parsing classifier response: %w", err)
		}
		nested = [][]prediction{flat}
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return Result{}, false, ErrNoClassification
	}

	top := nested[0][0]
	for _, p := range nested[0][1:] {
		if p.Score > top.Score {
			top = p
		}
	}

	return Result{Label: normalizeLabel(top.Label), Confidence: top.Score}, false, nil
}

// normalizeLabel maps the model's opaque class names to sentiment labels.
// The three classes are ordered negative=0, neutral=1, positive=2.
func normalizeLabel(raw string) score.Label {
	switch raw {
	case "LABEL_0", "negative", "NEGATIVE":
		return score.LabelNegative
	case "LABEL_1", "neutral", "NEUTRAL":
		return score.LabelNeutral
	case "LABEL_2", "positive", "POSITIVE":
		return score.LabelPositive
	default:
		return score.Label(raw)
	}
}
