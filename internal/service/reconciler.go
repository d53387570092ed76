package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/service/scoring"
	"github.com/gradix/gradix/internal/service/segment"
)

// Reconciler aligns recognized answers with the exam rubric and picks the
// scoring backend. The remote scorer is tried only when the exam defines
// questions; any remote failure falls back to the heuristic over the same
// items, so grading never hard-fails on a flaky grading service.
type Reconciler struct {
	remote   scoring.Scorer // nil when no grading service is configured
	fallback scoring.Scorer
	logger   zerolog.Logger
}

func NewReconciler(remote, fallback scoring.Scorer, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		remote:   remote,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *Reconciler) Grade(ctx context.Context, rawText string, questions []models.ExamQuestion) (*scoring.Result, error) {
	items := buildRubricItems(rawText, questions)

	if !anyAnswered(items) {
		return unansweredResult(items), nil
	}

	if r.remote != nil && len(questions) > 0 {
		result, err := r.remote.Score(ctx, items)
		if err == nil {
			return result, nil
		}
		r.logger.Warn().Err(err).Msg("Remote scoring failed, falling back to heuristic")
	}

	return r.fallback.Score(ctx, items)
}

// buildRubricItems segments the raw recognized text and lines it up with the
// rubric. With a rubric, items follow exam-question order and questions the
// student skipped become explicit unanswered entries; without one, the
// segments speak for themselves.
func buildRubricItems(rawText string, questions []models.ExamQuestion) []scoring.RubricItem {
	segments := segment.Split(rawText)

	if len(questions) == 0 {
		items := make([]scoring.RubricItem, 0, len(segments))
		for _, seg := range segments {
			items = append(items, scoring.RubricItem{
				QuestionNo:    seg.QuestionNo,
				StudentAnswer: seg.Answer,
				Answered:      true,
			})
		}
		return items
	}

	byNo := segment.ByNumber(segments)
	items := make([]scoring.RubricItem, 0, len(questions))
	for _, q := range questions {
		item := scoring.RubricItem{
			QuestionNo:   q.QuestionNo,
			QuestionText: q.QuestionText,
			ModelAnswer:  q.AnswerText,
			MaxMarks:     q.Marks,
		}
		if answer, ok := byNo[q.QuestionNo]; ok {
			item.StudentAnswer = answer
			item.Answered = true
		} else {
			item.StudentAnswer = scoring.UnansweredSentinel
		}
		items = append(items, item)
	}
	return items
}

func anyAnswered(items []scoring.RubricItem) bool {
	for _, item := range items {
		if item.Answered {
			return true
		}
	}
	return false
}

// unansweredResult covers blank or unreadable sheets: every rubric question
// scores zero and no backend is consulted.
func unansweredResult(items []scoring.RubricItem) *scoring.Result {
	questions := make([]scoring.QuestionScore, 0, len(items))
	for _, item := range items {
		questions = append(questions, scoring.QuestionScore{
			QuestionNo: item.QuestionNo,
			Feedback:   "Unanswered",
		})
	}

	return &scoring.Result{
		Total:     0.0,
		Feedback:  "No answers recognized in the extracted text",
		Questions: questions,
		Source:    scoring.SourceHeuristic,
	}
}
