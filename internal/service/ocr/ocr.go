// Package ocr extracts text from answer-sheet scans. Backends are tried in
// order; when every backend fails the chain yields empty text with zero
// confidence so the grading pipeline can continue.
package ocr

import (
	"context"

	"github.com/rs/zerolog"
)

// Backend recognizes text from one scan image.
type Backend interface {
	Name() string
	Recognize(ctx context.Context, image []byte, filename string) (text string, confidence float64, err error)
}

// Chain runs backends in order of preference and returns the first success.
type Chain struct {
	backends []Backend
	logger   zerolog.Logger
}

func NewChain(logger zerolog.Logger, backends ...Backend) *Chain {
	return &Chain{backends: backends, logger: logger}
}

// Recognize never returns an error: a fully failed chain produces ("", 0.0)
// and the sheet keeps an empty extracted text.
func (c *Chain) Recognize(ctx context.Context, image []byte, filename string) (string, float64) {
	for _, b := range c.backends {
		text, confidence, err := b.Recognize(ctx, image, filename)
		if err != nil {
			c.logger.Warn().Err(err).Str("backend", b.Name()).Msg("OCR backend failed")
			continue
		}
		c.logger.Info().Str("backend", b.Name()).Float64("confidence", confidence).Msg("Text recognized")
		return text, confidence
	}

	c.logger.Error().Str("filename", filename).Msg("All OCR backends failed")
	return "", 0.0
}
