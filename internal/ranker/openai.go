package ranker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spigell/lawyer-matcher/internal/retry"
)

// OpenAIClient talks to an OpenAI-compatible /embeddings endpoint. Any server
// speaking that protocol works, including local Ollama-style gateways.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	retry   retry.Policy
}

// OpenAIConfig configures the embeddings client.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewOpenAIClient creates a new embeddings client using the provided
// configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embeddings api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		retry:   retry.Policy{MaxAttempts: 5, BaseDelay: 200 * time.Millisecond},
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *OpenAIClient) Name() string { return "openai" }

// Embed returns an embedding vector for the given text. Throttled and 5xx
// responses are retried with exponential backoff.
func (c *OpenAIClient) Embed(text string) ([]float64, error) {
	vectors, err := c.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedBatch vectorizes several texts in one request.
func (c *OpenAIClient) EmbedBatch(texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float64
	op := func() error {
		var err error
		vectors, err = c.requestEmbeddings(texts)
		return err
	}

	if err := c.retry.Do(context.Background(), isTransient, op); err != nil {
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}

	return vectors, nil
}

// transientError marks a response worth retrying.
type transientError struct{ err error }

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func (c *OpenAIClient) requestEmbeddings(texts []string) ([][]float64, error) {
	body := struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}{Input: texts, Model: c.model}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &transientError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &transientError{err: fmt.Errorf("embeddings request failed: %s", resp.Status)}
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transientError{err: err}
	}

	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}

	vectors := make([][]float64, 0, len(out.Data))
	for _, item := range out.Data {
		if len(item.Embedding) == 0 {
			return nil, errors.New("no embedding returned")
		}
		vectors = append(vectors, item.Embedding)
	}

	return vectors, nil
}
