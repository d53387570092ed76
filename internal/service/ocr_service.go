package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/repository"
	"github.com/gradix/gradix/internal/service/ocr"
	"github.com/gradix/gradix/internal/service/storage"
)

type OCRService interface {
	Run(ctx context.Context, sheetID string) (*models.ExtractedText, error)
	GetBySheetID(ctx context.Context, sheetID string) (*models.ExtractedText, error)
}

type ocrService struct {
	sheets repository.SheetRepository
	texts  repository.TextRepository
	store  storage.Storage
	chain  *ocr.Chain
	logger zerolog.Logger
}

func NewOCRService(
	sheets repository.SheetRepository,
	texts repository.TextRepository,
	store storage.Storage,
	chain *ocr.Chain,
	logger zerolog.Logger,
) OCRService {
	return &ocrService{
		sheets: sheets,
		texts:  texts,
		store:  store,
		chain:  chain,
		logger: logger,
	}
}

// Run recognizes the sheet's scan and upserts its extracted text. Re-running
// overwrites the previous text; the sheet status never changes here, so a
// Graded sheet stays Graded until re-evaluated.
func (s *ocrService) Run(ctx context.Context, sheetID string) (*models.ExtractedText, error) {
	sheet, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	if sheet == nil {
		return nil, ErrSheetNotFound
	}

	data, err := s.store.Download(ctx, sheet.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageError, err)
	}

	raw, confidence := s.chain.Recognize(ctx, data, sheet.FilePath)

	text := &models.ExtractedText{
		ID:         uuid.New().String(),
		SheetID:    sheetID,
		RawText:    raw,
		CleanedTxt: cleanText(raw),
		Confidence: confidence,
	}

	if err := s.texts.Upsert(ctx, text); err != nil {
		return nil, fmt.Errorf("failed to store extracted text: %w", err)
	}

	s.logger.Info().
		Str("sheet_id", sheetID).
		Str("text_id", text.ID).
		Float64("confidence", confidence).
		Int("chars", len(raw)).
		Msg("Sheet text extracted")

	return text, nil
}

func (s *ocrService) GetBySheetID(ctx context.Context, sheetID string) (*models.ExtractedText, error) {
	sheet, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	if sheet == nil {
		return nil, ErrSheetNotFound
	}

	text, err := s.texts.GetBySheetID(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get extracted text: %w", err)
	}
	if text == nil {
		return nil, ErrTextNotFound
	}
	return text, nil
}

func cleanText(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
