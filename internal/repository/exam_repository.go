package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
)

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam, questions []models.ExamQuestion) error
	GetByID(ctx context.Context, id string) (*models.Exam, error)
	GetQuestions(ctx context.Context, examID string) ([]models.ExamQuestion, error)
	GetAll(ctx context.Context) ([]models.Exam, error)
	DeleteCascade(ctx context.Context, id string) error
}

type examRepository struct {
	*PostgresRepository
}

func NewExamRepository(db *sql.DB, logger zerolog.Logger) ExamRepository {
	return &examRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *examRepository) Create(ctx context.Context, exam *models.Exam, questions []models.ExamQuestion) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	examQuery := `
		INSERT INTO exams (exam_id, subject, max_marks, rubric_details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, examQuery,
		exam.ID,
		exam.Subject,
		exam.MaxMarks,
		exam.RubricDetails,
		exam.CreatedAt,
	); err != nil {
		return err
	}

	questionQuery := `
		INSERT INTO exam_questions (id, exam_id, question_no, question_text, answer_text, marks)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, q := range questions {
		if _, err := tx.ExecContext(ctx, questionQuery,
			q.ID,
			q.ExamID,
			q.QuestionNo,
			q.QuestionText,
			q.AnswerText,
			q.Marks,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *examRepository) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	query := `
		SELECT exam_id, subject, max_marks, rubric_details, created_at
		FROM exams
		WHERE exam_id = $1
	`

	exam := &models.Exam{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&exam.ID,
		&exam.Subject,
		&exam.MaxMarks,
		&exam.RubricDetails,
		&exam.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return exam, nil
}

func (r *examRepository) GetQuestions(ctx context.Context, examID string) ([]models.ExamQuestion, error) {
	query := `
		SELECT id, exam_id, question_no, question_text, answer_text, marks
		FROM exam_questions
		WHERE exam_id = $1
		ORDER BY question_no
	`

	rows, err := r.db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.ExamQuestion
	for rows.Next() {
		var q models.ExamQuestion
		if err := rows.Scan(
			&q.ID,
			&q.ExamID,
			&q.QuestionNo,
			&q.QuestionText,
			&q.AnswerText,
			&q.Marks,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

func (r *examRepository) GetAll(ctx context.Context) ([]models.Exam, error) {
	query := `
		SELECT exam_id, subject, max_marks, rubric_details, created_at
		FROM exams
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []models.Exam
	for rows.Next() {
		var exam models.Exam
		if err := rows.Scan(
			&exam.ID,
			&exam.Subject,
			&exam.MaxMarks,
			&exam.RubricDetails,
			&exam.CreatedAt,
		); err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}

	return exams, rows.Err()
}

// DeleteCascade removes an exam with everything derived from it: reports,
// answer sheets (texts, evaluations and question scores go via FK cascade)
// and rubric questions.
func (r *examRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	steps := []string{
		`DELETE FROM reports WHERE exam_id = $1`,
		`DELETE FROM answer_sheets WHERE exam_id = $1`,
		`DELETE FROM exams WHERE exam_id = $1`,
	}
	for _, query := range steps {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("cascade delete failed: %w", err)
		}
	}

	return tx.Commit()
}
