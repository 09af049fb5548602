// Package traingen produces training data for the mood predictor: an LLM
// generates diverse diary-style sentences, then labels each one with the
// danceability and energy of the music its author would want to hear.
// Both steps run against a local Ollama instance.
package traingen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
)

const generatePrompt = "Give me around 20 random medium-length sentences that a person would say or " +
	"write in their diary that express various different feelings (both positive and negative) and " +
	"are separated by periods. Use different sentence structures and vary the wording. In your " +
	"response, only include the twenty sentences separated by periods, with no numbering and no " +
	"introduction of any kind."

const labelPromptFormat = "sentence: %s, based on this phrase, determine the following traits of the " +
	"music the user would likely prefer to listen to at the present moment: danceability (0.00-1.00 " +
	"describing rhythmic quality and suitability for music with an upbeat feel), and energy " +
	"(0.00-1.00 representing a measure of intensity and activity). Interpret danceability as if " +
	"upbeat or rhythmically engaging music matches the user's mood, e.g. a person in a bad mood " +
	"likely wouldn't want dancey music. The output should be ONLY a comma-separated value of " +
	"danceability, energy, with a minimum of 2 decimal places. NOTHING ELSE, no words or " +
	"justification."

// Client talks to an Ollama instance.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates an Ollama client. Empty arguments take the local
// defaults.
func NewClient(baseURL, model string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// complete sends a single-turn prompt and returns the model's reply.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model:  c.model,
		Stream: false,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}

	return strings.TrimSpace(parsed.Message.Content), nil
}

// GenerateSentences repeatedly prompts the model until it has collected
// target sentences. Empty replies are retried; each batch of new sentences
// is passed to emit as it arrives so callers can persist progress.
func (c *Client) GenerateSentences(ctx context.Context, target int, emit func(batch []string) error) error {
	collected := 0
	for collected < target {
		if err := ctx.Err(); err != nil {
			return err
		}

		reply, err := c.complete(ctx, generatePrompt)
		if err != nil {
			return err
		}
		if reply == "" {
			continue
		}

		var batch []string
		for _, s := range splitSentences(reply) {
			if collected+len(batch) >= target {
				break
			}
			batch = append(batch, s)
		}
		if len(batch) == 0 {
			continue
		}

		if err := emit(batch); err != nil {
			return err
		}
		collected += len(batch)
	}
	return nil
}

// LabelSentence asks the model for the danceability and energy a listener in
// this mood would want. Negative values are clamped to 0.
func (c *Client) LabelSentence(ctx context.Context, sentence string) (danceability, energy float64, err error) {
	reply, err := c.complete(ctx, fmt.Sprintf(labelPromptFormat, sentence))
	if err != nil {
		return 0, 0, err
	}

	parts := strings.Split(reply, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("ollama: unexpected label reply %q", reply)
	}

	danceability, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("ollama: bad danceability in %q: %w", reply, err)
	}
	energy, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("ollama: bad energy in %q: %w", reply, err)
	}

	return max(danceability, 0), max(energy, 0), nil
}

// splitSentences breaks LLM output into individual sentences on terminal
// punctuation, dropping blanks.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()

	return sentences
}
