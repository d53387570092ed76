package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/repository"
	"github.com/gradix/gradix/internal/service/integration"
)

type PreprocessService interface {
	Run(ctx context.Context, sheetID string) (*models.ExtractedText, error)
}

type preprocessService struct {
	sheets  repository.SheetRepository
	texts   repository.TextRepository
	grammar integration.GrammarClient
	logger  zerolog.Logger
}

func NewPreprocessService(
	sheets repository.SheetRepository,
	texts repository.TextRepository,
	grammar integration.GrammarClient,
	logger zerolog.Logger,
) PreprocessService {
	return &preprocessService{
		sheets:  sheets,
		texts:   texts,
		grammar: grammar,
		logger:  logger,
	}
}

// Run passes the cleaned text through grammar correction and rewrites it in
// place. Correction is best-effort: on any failure the stored text stays as
// it was.
func (s *preprocessService) Run(ctx context.Context, sheetID string) (*models.ExtractedText, error) {
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

	if !s.grammar.Configured() {
		s.logger.Info().Str("sheet_id", sheetID).Msg("Grammar service not configured, keeping text as is")
		return text, nil
	}

	corrected, err := s.grammar.Correct(ctx, text.CleanedTxt)
	if err != nil {
		s.logger.Warn().Err(err).Str("sheet_id", sheetID).Msg("Grammar correction failed, keeping text as is")
		return text, nil
	}

	corrected = strings.TrimSpace(corrected)
	if corrected == "" || corrected == text.CleanedTxt {
		return text, nil
	}

	if err := s.texts.UpdateCleanedText(ctx, text.ID, corrected); err != nil {
		return nil, fmt.Errorf("failed to update cleaned text: %w", err)
	}
	text.CleanedTxt = corrected

	s.logger.Info().
		Str("sheet_id", sheetID).
		Str("text_id", text.ID).
		Msg("Cleaned text rewritten after grammar correction")

	return text, nil
}
