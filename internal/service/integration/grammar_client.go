package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// GrammarClient talks to the grammar-correction service used during text
// preprocessing.
type GrammarClient interface {
	Correct(ctx context.Context, text string) (string, error)
	Configured() bool
}

type grammarClient struct {
	baseURL    string
	apiKey     string
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewGrammarClient(baseURL, apiKey string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) GrammarClient {
	return &grammarClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *grammarClient) Configured() bool {
	return c.baseURL != ""
}

type correctRequest struct {
	Text string `json:"text"`
}

type correctResponse struct {
	CorrectedText string `json:"corrected_text"`
}

func (c *grammarClient) Correct(ctx context.Context, text string) (string, error) {
	url := fmt.Sprintf("%s/v1/correct", c.baseURL)

	payload, err := json.Marshal(correctRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal correct request: %w", err)
	}

	var lastErr error
	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Msg("Retrying grammar correction call")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to call grammar service: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var parsed correctResponse
			if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
				resp.Body.Close()
				lastErr = fmt.Errorf("failed to decode grammar response: %w", err)
				continue
			}
			resp.Body.Close()
			return parsed.CorrectedText, nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("grammar service returned status %d: %s", resp.StatusCode, string(body))
	}

	return "", fmt.Errorf("failed to correct text after %d attempts: %w", c.retryCount+1, lastErr)
}
