package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/repository"
)

type ReportService interface {
	Get(ctx context.Context, studentID, examID string) (*models.Report, error)
}

type reportService struct {
	students repository.StudentRepository
	exams    repository.ExamRepository
	sheets   repository.SheetRepository
	texts    repository.TextRepository
	evals    repository.EvaluationRepository
	reports  repository.ReportRepository
	logger   zerolog.Logger
}

func NewReportService(
	students repository.StudentRepository,
	exams repository.ExamRepository,
	sheets repository.SheetRepository,
	texts repository.TextRepository,
	evals repository.EvaluationRepository,
	reports repository.ReportRepository,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		students: students,
		exams:    exams,
		sheets:   sheets,
		texts:    texts,
		evals:    evals,
		reports:  reports,
		logger:   logger,
	}
}

// Get returns the cached report for the student/exam pair, generating it on
// first access. Only Reviewed sheets contribute; with several attempts the
// best reviewed score counts. Reviews invalidate the cache, so a hit here is
// always current.
func (s *reportService) Get(ctx context.Context, studentID, examID string) (*models.Report, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}

	cached, err := s.reports.GetByStudentAndExam(ctx, studentID, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cached report: %w", err)
	}
	if cached != nil {
		return cached, nil
	}

	return s.generate(ctx, studentID, examID)
}

func (s *reportService) generate(ctx context.Context, studentID, examID string) (*models.Report, error) {
	sheets, err := s.sheets.GetByStudentAndExam(ctx, studentID, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}

	var best *float64
	var reviewed int
	for _, sheet := range sheets {
		if sheet.Status != models.SheetStatusReviewed.String() {
			continue
		}

		text, err := s.texts.GetBySheetID(ctx, sheet.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get extracted text: %w", err)
		}
		if text == nil {
			continue
		}

		eval, err := s.evals.GetByTextID(ctx, text.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get evaluation: %w", err)
		}
		if eval == nil {
			continue
		}

		reviewed++
		if best == nil || eval.Score > *best {
			score := eval.Score
			best = &score
		}
	}

	if best == nil {
		return nil, ErrReportNotReady
	}

	remarks := fmt.Sprintf("Best of %d reviewed sheet(s)", reviewed)
	report := &models.Report{
		ID:          uuid.New().String(),
		StudentID:   studentID,
		ExamID:      examID,
		TotalScore:  *best,
		Remarks:     &remarks,
		GeneratedOn: time.Now().UTC(),
	}

	if err := s.reports.Upsert(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to cache report: %w", err)
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("exam_id", examID).
		Float64("total_score", report.TotalScore).
		Int("reviewed_sheets", reviewed).
		Msg("Report generated")

	return report, nil
}
