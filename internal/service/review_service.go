package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/repository"
	"github.com/gradix/gradix/internal/service/scoring"
)

type ReviewService interface {
	GetBundle(ctx context.Context, sheetID string) (*models.ReviewBundle, error)
	Override(ctx context.Context, sheetID string, req models.OverrideReviewRequest) (*models.Evaluation, error)
}

type reviewService struct {
	sheets  repository.SheetRepository
	texts   repository.TextRepository
	evals   repository.EvaluationRepository
	reports repository.ReportRepository
	logger  zerolog.Logger
}

func NewReviewService(
	sheets repository.SheetRepository,
	texts repository.TextRepository,
	evals repository.EvaluationRepository,
	reports repository.ReportRepository,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		sheets:  sheets,
		texts:   texts,
		evals:   evals,
		reports: reports,
		logger:  logger,
	}
}

// GetBundle collects everything a reviewer needs side by side: the sheet,
// its recognized text and the machine evaluation.
func (s *reviewService) GetBundle(ctx context.Context, sheetID string) (*models.ReviewBundle, error) {
	sheet, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	if sheet == nil {
		return nil, ErrSheetNotFound
	}
	if !models.IsReviewable(sheet.Status) {
		return nil, fmt.Errorf("%w: sheet is %s, nothing to review yet", ErrInvalidTransition, sheet.Status)
	}

	text, err := s.texts.GetBySheetID(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get extracted text: %w", err)
	}
	if text == nil {
		return nil, ErrTextNotFound
	}

	eval, err := s.evals.GetByTextID(ctx, text.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	if eval == nil {
		return nil, ErrEvaluationNotFound
	}

	scores, err := s.evals.GetQuestionScores(ctx, eval.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question scores: %w", err)
	}

	return &models.ReviewBundle{
		Sheet:          *sheet,
		ExtractedText:  *text,
		Evaluation:     *eval,
		QuestionScores: scores,
	}, nil
}

// Override applies a reviewer's corrections and moves the sheet to Reviewed.
// Only Graded sheets qualify; a Reviewed sheet stays final. The cached
// report for the student/exam pair is dropped since its input changed.
func (s *reviewService) Override(ctx context.Context, sheetID string, req models.OverrideReviewRequest) (*models.Evaluation, error) {
	if req.Score == nil && len(req.Questions) == 0 {
		return nil, fmt.Errorf("%w: override needs a score or question corrections", ErrEmptyField)
	}

	sheet, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	if sheet == nil {
		return nil, ErrSheetNotFound
	}
	if !models.CanReview(sheet.Status) {
		return nil, fmt.Errorf("%w: cannot review a %s sheet", ErrInvalidTransition, sheet.Status)
	}

	text, err := s.texts.GetBySheetID(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get extracted text: %w", err)
	}
	if text == nil {
		return nil, ErrTextNotFound
	}

	eval, err := s.evals.GetByTextID(ctx, text.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	if eval == nil {
		return nil, ErrEvaluationNotFound
	}

	existing, err := s.evals.GetQuestionScores(ctx, eval.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question scores: %w", err)
	}

	overrides := mergeQuestionOverrides(eval.ID, existing, req.Questions)

	total := eval.Score
	switch {
	case req.Score != nil:
		total = scoring.Round2(*req.Score)
	case len(req.Questions) > 0:
		// No explicit total: recompute from the corrected question rows.
		var sum float64
		for _, q := range overrides {
			sum += q.Score
		}
		total = scoring.Round2(sum)
	}

	tx, err := s.evals.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.evals.UpdateScoreTx(ctx, tx, eval.ID, total, req.Feedback); err != nil {
		return nil, fmt.Errorf("failed to apply override: %w", err)
	}

	if len(req.Questions) > 0 {
		if err := s.evals.UpsertQuestionScoresTx(ctx, tx, overrides); err != nil {
			return nil, fmt.Errorf("failed to apply question overrides: %w", err)
		}
	}

	if err := s.sheets.UpdateStatusTx(ctx, tx, sheetID, models.SheetStatusReviewed.String()); err != nil {
		return nil, fmt.Errorf("failed to update sheet status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}

	if err := s.reports.Delete(ctx, sheet.StudentID, sheet.ExamID); err != nil {
		s.logger.Warn().Err(err).
			Str("student_id", sheet.StudentID).
			Str("exam_id", sheet.ExamID).
			Msg("Failed to invalidate cached report")
	}

	eval.Score = total
	if req.Feedback != nil {
		eval.Feedback = req.Feedback
	}

	s.logger.Info().
		Str("sheet_id", sheetID).
		Str("eval_id", eval.ID).
		Float64("score", total).
		Msg("Sheet reviewed")

	return eval, nil
}

// mergeQuestionOverrides rewrites existing rows touched by the reviewer and
// adds rows for question numbers the evaluation did not have.
func mergeQuestionOverrides(evalID string, existing []models.QuestionEvaluation, reqs []models.QuestionScoreOverride) []models.QuestionEvaluation {
	byNo := make(map[int]models.QuestionEvaluation, len(existing))
	order := make([]int, 0, len(existing))
	for _, q := range existing {
		byNo[q.QuestionNo] = q
		order = append(order, q.QuestionNo)
	}

	for _, o := range reqs {
		if q, ok := byNo[o.QuestionNo]; ok {
			q.Score = o.Score
			if o.Feedback != nil {
				q.Feedback = o.Feedback
			}
			byNo[o.QuestionNo] = q
			continue
		}
		byNo[o.QuestionNo] = models.QuestionEvaluation{
			ID:         uuid.New().String(),
			EvalID:     evalID,
			QuestionNo: o.QuestionNo,
			Score:      o.Score,
			Feedback:   o.Feedback,
		}
		order = append(order, o.QuestionNo)
	}

	merged := make([]models.QuestionEvaluation, 0, len(byNo))
	for _, no := range order {
		merged = append(merged, byNo[no])
	}
	return merged
}
