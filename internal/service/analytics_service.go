package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/repository"
	"github.com/gradix/gradix/internal/service/scoring"
)

type AnalyticsService interface {
	ExamAnalytics(ctx context.Context, examID string) (*models.ExamAnalytics, error)
}

type analyticsService struct {
	exams  repository.ExamRepository
	sheets repository.SheetRepository
	evals  repository.EvaluationRepository
	logger zerolog.Logger
}

func NewAnalyticsService(
	exams repository.ExamRepository,
	sheets repository.SheetRepository,
	evals repository.EvaluationRepository,
	logger zerolog.Logger,
) AnalyticsService {
	return &analyticsService{
		exams:  exams,
		sheets: sheets,
		evals:  evals,
		logger: logger,
	}
}

// ExamAnalytics aggregates graded and reviewed scores of one exam into a
// class average and a quartile distribution over the exam's maximum marks.
func (s *analyticsService) ExamAnalytics(ctx context.Context, examID string) (*models.ExamAnalytics, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}

	sheets, err := s.sheets.GetAll(ctx, examID, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}

	scores, err := s.evals.GetExamScores(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam scores: %w", err)
	}

	analytics := &models.ExamAnalytics{
		ExamID:            examID,
		TotalSubmissions:  len(sheets),
		ScoreDistribution: distribute(scores, exam.MaxMarks),
	}

	if len(scores) > 0 {
		var sum float64
		for _, score := range scores {
			sum += score
		}
		avg := scoring.Round2(sum / float64(len(scores)))
		analytics.ClassAverage = &avg
	}

	return analytics, nil
}

func distribute(scores []float64, maxMarks int) map[string]int {
	buckets := map[string]int{
		"0-25":   0,
		"26-50":  0,
		"51-75":  0,
		"76-100": 0,
	}

	if maxMarks <= 0 {
		return buckets
	}

	for _, score := range scores {
		pct := score / float64(maxMarks) * 100
		switch {
		case pct <= 25:
			buckets["0-25"]++
		case pct <= 50:
			buckets["26-50"]++
		case pct <= 75:
			buckets["51-75"]++
		default:
			buckets["76-100"]++
		}
	}

	return buckets
}
