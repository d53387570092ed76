package ocr

import (
	"context"

	"github.com/gradix/gradix/internal/service/integration"
)

// cloudConfidence is the confidence attributed to the managed OCR service.
const cloudConfidence = 0.98

// CloudBackend recognizes text through the cloud OCR service.
type CloudBackend struct {
	client integration.OCRClient
}

func NewCloudBackend(client integration.OCRClient) *CloudBackend {
	return &CloudBackend{client: client}
}

func (b *CloudBackend) Name() string { return "cloud" }

func (b *CloudBackend) Recognize(ctx context.Context, image []byte, filename string) (string, float64, error) {
	text, err := b.client.Recognize(ctx, image, filename)
	if err != nil {
		return "", 0, err
	}
	return text, cloudConfidence, nil
}
