package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
)

type ReportRepository interface {
	// Upsert caches one report per (student, exam); regeneration overwrites.
	Upsert(ctx context.Context, report *models.Report) error
	GetByStudentAndExam(ctx context.Context, studentID, examID string) (*models.Report, error)
	Delete(ctx context.Context, studentID, examID string) error
}

type reportRepository struct {
	*PostgresRepository
}

func NewReportRepository(db *sql.DB, logger zerolog.Logger) ReportRepository {
	return &reportRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *reportRepository) Upsert(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (report_id, student_id, exam_id, total_score, remarks, generated_on)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, exam_id) DO UPDATE SET
			total_score = EXCLUDED.total_score,
			remarks = EXCLUDED.remarks,
			generated_on = EXCLUDED.generated_on
		RETURNING report_id
	`

	return r.db.QueryRowContext(ctx, query,
		report.ID,
		report.StudentID,
		report.ExamID,
		report.TotalScore,
		report.Remarks,
		report.GeneratedOn,
	).Scan(&report.ID)
}

func (r *reportRepository) GetByStudentAndExam(ctx context.Context, studentID, examID string) (*models.Report, error) {
	query := `
		SELECT report_id, student_id, exam_id, total_score, remarks, generated_on
		FROM reports
		WHERE student_id = $1 AND exam_id = $2
	`

	report := &models.Report{}
	err := r.db.QueryRowContext(ctx, query, studentID, examID).Scan(
		&report.ID,
		&report.StudentID,
		&report.ExamID,
		&report.TotalScore,
		&report.Remarks,
		&report.GeneratedOn,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (r *reportRepository) Delete(ctx context.Context, studentID, examID string) error {
	query := `DELETE FROM reports WHERE student_id = $1 AND exam_id = $2`
	_, err := r.db.ExecContext(ctx, query, studentID, examID)
	return err
}
