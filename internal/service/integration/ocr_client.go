package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// OCRClient talks to the cloud text-recognition service.
type OCRClient interface {
	Recognize(ctx context.Context, image []byte, filename string) (string, error)
	Configured() bool
}

type ocrClient struct {
	baseURL    string
	apiKey     string
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewOCRClient(baseURL, apiKey string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) OCRClient {
	return &ocrClient{
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

func (c *ocrClient) Configured() bool {
	return c.baseURL != ""
}

type recognizeRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type recognizeResponse struct {
	Text string `json:"text"`
}

func (c *ocrClient) Recognize(ctx context.Context, image []byte, filename string) (string, error) {
	url := fmt.Sprintf("%s/v1/recognize", c.baseURL)

	payload, err := json.Marshal(recognizeRequest{
		Filename: filename,
		Content:  base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal recognize request: %w", err)
	}

	var lastErr error
	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Msg("Retrying cloud OCR call")
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
			lastErr = fmt.Errorf("failed to call OCR service: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var parsed recognizeResponse
			if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
				resp.Body.Close()
				lastErr = fmt.Errorf("failed to decode OCR response: %w", err)
				continue
			}
			resp.Body.Close()
			return parsed.Text, nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("OCR service returned status %d: %s", resp.StatusCode, string(body))
	}

	return "", fmt.Errorf("failed to recognize after %d attempts: %w", c.retryCount+1, lastErr)
}
