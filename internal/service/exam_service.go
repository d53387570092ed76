package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/repository"
)

type ExamService interface {
	Create(ctx context.Context, req models.CreateExamRequest) (*models.ExamWithQuestions, error)
	GetByID(ctx context.Context, id string) (*models.ExamWithQuestions, error)
	GetAll(ctx context.Context) ([]models.Exam, error)
	Delete(ctx context.Context, id string) error
}

type examService struct {
	exams  repository.ExamRepository
	logger zerolog.Logger
}

func NewExamService(exams repository.ExamRepository, logger zerolog.Logger) ExamService {
	return &examService{
		exams:  exams,
		logger: logger,
	}
}

func (s *examService) Create(ctx context.Context, req models.CreateExamRequest) (*models.ExamWithQuestions, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrEmptyField)
	}

	examID := uuid.New().String()
	questions := parseQuestions(examID, req.Questions)

	maxMarks := 100
	if req.MaxMarks != nil {
		maxMarks = *req.MaxMarks
	} else if sum, ok := sumMarks(questions); ok {
		maxMarks = sum
	}

	rubric := req.RubricDetails
	if rubric == nil && len(questions) > 0 {
		assembled := assembleRubric(questions)
		rubric = &assembled
	}

	exam := &models.Exam{
		ID:            examID,
		Subject:       strings.TrimSpace(req.Subject),
		MaxMarks:      maxMarks,
		RubricDetails: rubric,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.exams.Create(ctx, exam, questions); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info().
		Str("exam_id", exam.ID).
		Str("subject", exam.Subject).
		Int("questions", len(questions)).
		Msg("Exam created")

	return &models.ExamWithQuestions{Exam: *exam, Questions: questions}, nil
}

func (s *examService) GetByID(ctx context.Context, id string) (*models.ExamWithQuestions, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}

	questions, err := s.exams.GetQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam questions: %w", err)
	}

	return &models.ExamWithQuestions{Exam: *exam, Questions: questions}, nil
}

func (s *examService) GetAll(ctx context.Context) ([]models.Exam, error) {
	exams, err := s.exams.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}

func (s *examService) Delete(ctx context.Context, id string) error {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return ErrExamNotFound
	}

	if err := s.exams.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.Info().Str("exam_id", id).Msg("Exam deleted with all derived data")
	return nil
}

// parseQuestions accepts loosely-typed rubric items: question numbers and
// marks may come as JSON numbers, numeric strings or be missing. Items
// without question text are skipped; a missing number falls back to the
// item's position.
func parseQuestions(examID string, reqs []models.CreateQuestionRequest) []models.ExamQuestion {
	var questions []models.ExamQuestion
	seen := make(map[int]bool)

	for i, q := range reqs {
		text := strings.TrimSpace(q.QuestionText)
		if text == "" {
			continue
		}

		no, ok := parseIntValue(q.QuestionNo)
		if !ok || no <= 0 {
			no = i + 1
		}
		if seen[no] {
			continue
		}
		seen[no] = true

		var marks *float64
		if m, ok := parseFloatValue(q.Marks); ok && m >= 0 {
			marks = &m
		}

		questions = append(questions, models.ExamQuestion{
			ID:           uuid.New().String(),
			ExamID:       examID,
			QuestionNo:   no,
			QuestionText: text,
			AnswerText:   strings.TrimSpace(q.AnswerText),
			Marks:        marks,
		})
	}

	return questions
}

func parseIntValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func parseFloatValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func sumMarks(questions []models.ExamQuestion) (int, bool) {
	var sum float64
	var any bool
	for _, q := range questions {
		if q.Marks != nil {
			sum += *q.Marks
			any = true
		}
	}
	if !any {
		return 0, false
	}
	return int(sum), true
}

// assembleRubric renders the question list as the textual rubric stored on
// the exam, used as feedback context when no explicit rubric was given.
func assembleRubric(questions []models.ExamQuestion) string {
	var b strings.Builder
	for _, q := range questions {
		fmt.Fprintf(&b, "Q%d: %s\n", q.QuestionNo, q.QuestionText)
		if q.AnswerText != "" {
			fmt.Fprintf(&b, "Model answer: %s\n", q.AnswerText)
		}
		if q.Marks != nil {
			fmt.Fprintf(&b, "Marks: %g\n", *q.Marks)
		}
	}
	return strings.TrimSpace(b.String())
}
