package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
)

type SheetRepository interface {
	Create(ctx context.Context, sheet *models.AnswerSheet) error
	GetByID(ctx context.Context, id string) (*models.AnswerSheet, error)
	GetAll(ctx context.Context, examID, studentID, status string) ([]models.AnswerSheet, error)
	GetByStudentAndExam(ctx context.Context, studentID, examID string) ([]models.AnswerSheet, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error
	Delete(ctx context.Context, id string) error
	BeginTx(ctx context.Context) (*sql.Tx, error)
}

type sheetRepository struct {
	*PostgresRepository
}

func NewSheetRepository(db *sql.DB, logger zerolog.Logger) SheetRepository {
	return &sheetRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *sheetRepository) Create(ctx context.Context, sheet *models.AnswerSheet) error {
	query := `
		INSERT INTO answer_sheets (sheet_id, student_id, exam_id, file_path, status, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		sheet.ID,
		sheet.StudentID,
		sheet.ExamID,
		sheet.FilePath,
		sheet.Status,
		sheet.UploadDate,
	)

	return err
}

func (r *sheetRepository) GetByID(ctx context.Context, id string) (*models.AnswerSheet, error) {
	query := `
		SELECT sheet_id, student_id, exam_id, file_path, status, upload_date
		FROM answer_sheets
		WHERE sheet_id = $1
	`

	sheet := &models.AnswerSheet{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sheet.ID,
		&sheet.StudentID,
		&sheet.ExamID,
		&sheet.FilePath,
		&sheet.Status,
		&sheet.UploadDate,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return sheet, nil
}

func (r *sheetRepository) GetAll(ctx context.Context, examID, studentID, status string) ([]models.AnswerSheet, error) {
	query := `
		SELECT sheet_id, student_id, exam_id, file_path, status, upload_date
		FROM answer_sheets
		WHERE ($1 = '' OR exam_id = $1)
		  AND ($2 = '' OR student_id = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY upload_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, examID, studentID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSheets(rows)
}

func (r *sheetRepository) GetByStudentAndExam(ctx context.Context, studentID, examID string) ([]models.AnswerSheet, error) {
	query := `
		SELECT sheet_id, student_id, exam_id, file_path, status, upload_date
		FROM answer_sheets
		WHERE student_id = $1 AND exam_id = $2
		ORDER BY upload_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSheets(rows)
}

func (r *sheetRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE answer_sheets SET status = $1 WHERE sheet_id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *sheetRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	query := `UPDATE answer_sheets SET status = $1 WHERE sheet_id = $2`
	_, err := tx.ExecContext(ctx, query, status, id)
	return err
}

func (r *sheetRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM answer_sheets WHERE sheet_id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func scanSheets(rows *sql.Rows) ([]models.AnswerSheet, error) {
	var sheets []models.AnswerSheet
	for rows.Next() {
		var sheet models.AnswerSheet
		if err := rows.Scan(
			&sheet.ID,
			&sheet.StudentID,
			&sheet.ExamID,
			&sheet.FilePath,
			&sheet.Status,
			&sheet.UploadDate,
		); err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, rows.Err()
}
