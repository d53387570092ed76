package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/repository"
)

// RoutingKeySheetGraded is published after an evaluation lands.
const RoutingKeySheetGraded = "sheet.graded"

type EvaluationService interface {
	Evaluate(ctx context.Context, sheetID string) (*models.Evaluation, []models.QuestionEvaluation, error)
	GetBySheetID(ctx context.Context, sheetID string) (*models.Evaluation, []models.QuestionEvaluation, error)
}

type evaluationService struct {
	sheets     repository.SheetRepository
	texts      repository.TextRepository
	exams      repository.ExamRepository
	evals      repository.EvaluationRepository
	reconciler *Reconciler
	publisher  repository.RabbitMQRepository // nil when async pipeline is disabled
	exchange   string
	logger     zerolog.Logger
}

func NewEvaluationService(
	sheets repository.SheetRepository,
	texts repository.TextRepository,
	exams repository.ExamRepository,
	evals repository.EvaluationRepository,
	reconciler *Reconciler,
	publisher repository.RabbitMQRepository,
	exchange string,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		sheets:     sheets,
		texts:      texts,
		exams:      exams,
		evals:      evals,
		reconciler: reconciler,
		publisher:  publisher,
		exchange:   exchange,
		logger:     logger,
	}
}

// Evaluate scores a sheet against its exam rubric and lands the evaluation,
// its question rows and the Graded status in one transaction. Pending and
// Graded sheets may be (re)evaluated; Reviewed sheets are immutable.
func (s *evaluationService) Evaluate(ctx context.Context, sheetID string) (*models.Evaluation, []models.QuestionEvaluation, error) {
	sheet, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	if sheet == nil {
		return nil, nil, ErrSheetNotFound
	}
	if !models.CanEvaluate(sheet.Status) {
		return nil, nil, fmt.Errorf("%w: cannot evaluate a %s sheet", ErrInvalidTransition, sheet.Status)
	}

	text, err := s.texts.GetBySheetID(ctx, sheetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get extracted text: %w", err)
	}
	if text == nil {
		return nil, nil, ErrTextNotFound
	}

	questions, err := s.exams.GetQuestions(ctx, sheet.ExamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get exam questions: %w", err)
	}

	result, err := s.reconciler.Grade(ctx, text.RawText, questions)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrScoringError, err)
	}

	eval := &models.Evaluation{
		ID:             uuid.New().String(),
		TextID:         text.ID,
		ModelAnswerRef: sheet.ExamID,
		Score:          result.Total,
		Feedback:       &result.Feedback,
		EvaluatedOn:    time.Now().UTC(),
	}

	tx, err := s.evals.BeginTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// On re-evaluation the upsert keeps the existing eval_id, so question
	// rows attach to the right evaluation either way.
	if err := s.evals.UpsertTx(ctx, tx, eval); err != nil {
		return nil, nil, fmt.Errorf("failed to store evaluation: %w", err)
	}

	scores := make([]models.QuestionEvaluation, 0, len(result.Questions))
	for _, q := range result.Questions {
		var feedback *string
		if q.Feedback != "" {
			f := q.Feedback
			feedback = &f
		}
		scores = append(scores, models.QuestionEvaluation{
			ID:         uuid.New().String(),
			EvalID:     eval.ID,
			QuestionNo: q.QuestionNo,
			Score:      q.Score,
			Feedback:   feedback,
		})
	}

	// When the exam defines its question set the old rows are replaced
	// wholesale, so numbers from a stale segmentation cannot linger.
	if len(questions) > 0 {
		err = s.evals.ReplaceQuestionScoresTx(ctx, tx, eval.ID, scores)
	} else {
		err = s.evals.UpsertQuestionScoresTx(ctx, tx, scores)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store question scores: %w", err)
	}

	if err := s.sheets.UpdateStatusTx(ctx, tx, sheetID, models.SheetStatusGraded.String()); err != nil {
		return nil, nil, fmt.Errorf("failed to update sheet status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit evaluation: %w", err)
	}

	s.logger.Info().
		Str("sheet_id", sheetID).
		Str("eval_id", eval.ID).
		Str("source", result.Source).
		Float64("score", eval.Score).
		Msg("Sheet evaluated")

	s.publishGraded(ctx, sheetID, eval)

	return eval, scores, nil
}

func (s *evaluationService) GetBySheetID(ctx context.Context, sheetID string) (*models.Evaluation, []models.QuestionEvaluation, error) {
	text, err := s.texts.GetBySheetID(ctx, sheetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get extracted text: %w", err)
	}
	if text == nil {
		return nil, nil, ErrTextNotFound
	}

	eval, err := s.evals.GetByTextID(ctx, text.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	if eval == nil {
		return nil, nil, ErrEvaluationNotFound
	}

	scores, err := s.evals.GetQuestionScores(ctx, eval.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get question scores: %w", err)
	}

	return eval, scores, nil
}

func (s *evaluationService) publishGraded(ctx context.Context, sheetID string, eval *models.Evaluation) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(models.SheetGradedEvent{
		SheetID:     sheetID,
		EvalID:      eval.ID,
		Score:       eval.Score,
		Status:      models.SheetStatusGraded.String(),
		EvaluatedAt: eval.EvaluatedOn,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("sheet_id", sheetID).Msg("Failed to marshal graded event")
		return
	}

	if err := s.publisher.Publish(ctx, s.exchange, RoutingKeySheetGraded, body); err != nil {
		s.logger.Warn().Err(err).Str("sheet_id", sheetID).Msg("Failed to publish graded event")
	}
}
