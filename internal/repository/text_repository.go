package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
)

type TextRepository interface {
	// Upsert keeps the extracted text 1:1 with its sheet: re-running OCR
	// overwrites the previous row and keeps the original text_id.
	Upsert(ctx context.Context, text *models.ExtractedText) error
	GetBySheetID(ctx context.Context, sheetID string) (*models.ExtractedText, error)
	GetByID(ctx context.Context, id string) (*models.ExtractedText, error)
	UpdateCleanedText(ctx context.Context, id, cleanedText string) error
}

type textRepository struct {
	*PostgresRepository
}

func NewTextRepository(db *sql.DB, logger zerolog.Logger) TextRepository {
	return &textRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *textRepository) Upsert(ctx context.Context, text *models.ExtractedText) error {
	query := `
		INSERT INTO extracted_text (text_id, sheet_id, raw_text, cleaned_text, extraction_confidence)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sheet_id) DO UPDATE SET
			raw_text = EXCLUDED.raw_text,
			cleaned_text = EXCLUDED.cleaned_text,
			extraction_confidence = EXCLUDED.extraction_confidence
		RETURNING text_id
	`

	return r.db.QueryRowContext(ctx, query,
		text.ID,
		text.SheetID,
		text.RawText,
		text.CleanedTxt,
		text.Confidence,
	).Scan(&text.ID)
}

func (r *textRepository) GetBySheetID(ctx context.Context, sheetID string) (*models.ExtractedText, error) {
	query := `
		SELECT text_id, sheet_id, raw_text, cleaned_text, extraction_confidence
		FROM extracted_text
		WHERE sheet_id = $1
	`

	return r.getOne(ctx, query, sheetID)
}

func (r *textRepository) GetByID(ctx context.Context, id string) (*models.ExtractedText, error) {
	query := `
		SELECT text_id, sheet_id, raw_text, cleaned_text, extraction_confidence
		FROM extracted_text
		WHERE text_id = $1
	`

	return r.getOne(ctx, query, id)
}

func (r *textRepository) UpdateCleanedText(ctx context.Context, id, cleanedText string) error {
	query := `UPDATE extracted_text SET cleaned_text = $1 WHERE text_id = $2`
	_, err := r.db.ExecContext(ctx, query, cleanedText, id)
	return err
}

func (r *textRepository) getOne(ctx context.Context, query, arg string) (*models.ExtractedText, error) {
	text := &models.ExtractedText{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&text.ID,
		&text.SheetID,
		&text.RawText,
		&text.CleanedTxt,
		&text.Confidence,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return text, nil
}
