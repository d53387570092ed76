package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
)

type EvaluationRepository interface {
	GetByTextID(ctx context.Context, textID string) (*models.Evaluation, error)
	GetQuestionScores(ctx context.Context, evalID string) ([]models.QuestionEvaluation, error)
	GetExamScores(ctx context.Context, examID string) ([]float64, error)

	// Tx-scoped writers: an evaluation, its question rows and the sheet
	// status flip commit together or not at all.
	UpsertTx(ctx context.Context, tx *sql.Tx, eval *models.Evaluation) error
	UpsertQuestionScoresTx(ctx context.Context, tx *sql.Tx, scores []models.QuestionEvaluation) error
	ReplaceQuestionScoresTx(ctx context.Context, tx *sql.Tx, evalID string, scores []models.QuestionEvaluation) error
	UpdateScoreTx(ctx context.Context, tx *sql.Tx, evalID string, score float64, feedback *string) error

	BeginTx(ctx context.Context) (*sql.Tx, error)
}

type evaluationRepository struct {
	*PostgresRepository
}

func NewEvaluationRepository(db *sql.DB, logger zerolog.Logger) EvaluationRepository {
	return &evaluationRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *evaluationRepository) GetByTextID(ctx context.Context, textID string) (*models.Evaluation, error) {
	query := `
		SELECT eval_id, text_id, model_answer_ref, score, feedback, evaluated_on
		FROM evaluations
		WHERE text_id = $1
	`

	eval := &models.Evaluation{}
	err := r.db.QueryRowContext(ctx, query, textID).Scan(
		&eval.ID,
		&eval.TextID,
		&eval.ModelAnswerRef,
		&eval.Score,
		&eval.Feedback,
		&eval.EvaluatedOn,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return eval, nil
}

func (r *evaluationRepository) GetQuestionScores(ctx context.Context, evalID string) ([]models.QuestionEvaluation, error) {
	query := `
		SELECT id, eval_id, question_no, score, feedback
		FROM question_evaluations
		WHERE eval_id = $1
		ORDER BY question_no
	`

	rows, err := r.db.QueryContext(ctx, query, evalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.QuestionEvaluation
	for rows.Next() {
		var q models.QuestionEvaluation
		if err := rows.Scan(&q.ID, &q.EvalID, &q.QuestionNo, &q.Score, &q.Feedback); err != nil {
			return nil, err
		}
		scores = append(scores, q)
	}

	return scores, rows.Err()
}

// GetExamScores returns the totals of graded and reviewed sheets of one exam,
// for class-level analytics.
func (r *evaluationRepository) GetExamScores(ctx context.Context, examID string) ([]float64, error) {
	query := `
		SELECT e.score
		FROM evaluations e
		JOIN extracted_text t ON t.text_id = e.text_id
		JOIN answer_sheets s ON s.sheet_id = t.sheet_id
		WHERE s.exam_id = $1 AND s.status IN ('Graded', 'Reviewed')
	`

	rows, err := r.db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}

	return scores, rows.Err()
}

// UpsertTx writes an evaluation keyed by its unique text_id. Concurrent
// evaluations of the same sheet resolve last-writer-wins; the original
// eval_id survives re-evaluation.
func (r *evaluationRepository) UpsertTx(ctx context.Context, tx *sql.Tx, eval *models.Evaluation) error {
	query := `
		INSERT INTO evaluations (eval_id, text_id, model_answer_ref, score, feedback, evaluated_on)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (text_id) DO UPDATE SET
			model_answer_ref = EXCLUDED.model_answer_ref,
			score = EXCLUDED.score,
			feedback = EXCLUDED.feedback,
			evaluated_on = EXCLUDED.evaluated_on
		RETURNING eval_id
	`

	return tx.QueryRowContext(ctx, query,
		eval.ID,
		eval.TextID,
		eval.ModelAnswerRef,
		eval.Score,
		eval.Feedback,
		eval.EvaluatedOn,
	).Scan(&eval.ID)
}

// UpsertQuestionScoresTx overwrites matching (eval_id, question_no) rows and
// inserts the rest. Rows for question numbers absent from the batch stay.
func (r *evaluationRepository) UpsertQuestionScoresTx(ctx context.Context, tx *sql.Tx, scores []models.QuestionEvaluation) error {
	query := `
		INSERT INTO question_evaluations (id, eval_id, question_no, score, feedback)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (eval_id, question_no) DO UPDATE SET
			score = EXCLUDED.score,
			feedback = EXCLUDED.feedback
	`

	for _, q := range scores {
		if _, err := tx.ExecContext(ctx, query, q.ID, q.EvalID, q.QuestionNo, q.Score, q.Feedback); err != nil {
			return err
		}
	}

	return nil
}

// ReplaceQuestionScoresTx drops every question row of the evaluation before
// writing the batch. Used when the exam defines its question set, so stale
// numbers from an earlier segmentation cannot survive.
func (r *evaluationRepository) ReplaceQuestionScoresTx(ctx context.Context, tx *sql.Tx, evalID string, scores []models.QuestionEvaluation) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM question_evaluations WHERE eval_id = $1`, evalID); err != nil {
		return err
	}

	return r.UpsertQuestionScoresTx(ctx, tx, scores)
}

func (r *evaluationRepository) UpdateScoreTx(ctx context.Context, tx *sql.Tx, evalID string, score float64, feedback *string) error {
	query := `
		UPDATE evaluations
		SET score = $1, feedback = COALESCE($2, feedback), evaluated_on = NOW()
		WHERE eval_id = $3
	`

	_, err := tx.ExecContext(ctx, query, score, feedback, evalID)
	return err
}
