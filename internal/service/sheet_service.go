package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/repository"
	"github.com/gradix/gradix/internal/service/storage"
)

// RoutingKeySheetUploaded is the routing key the grading worker listens on.
const RoutingKeySheetUploaded = "sheet.uploaded"

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

type SheetService interface {
	Upload(ctx context.Context, studentID, examID, filename string, data []byte) (*models.AnswerSheet, error)
	GetByID(ctx context.Context, id string) (*models.AnswerSheet, error)
	GetAll(ctx context.Context, examID, studentID, status string) ([]models.AnswerSheet, error)
	Delete(ctx context.Context, id string) error
}

type sheetService struct {
	sheets    repository.SheetRepository
	students  repository.StudentRepository
	exams     repository.ExamRepository
	store     storage.Storage
	publisher repository.RabbitMQRepository // nil when async grading is disabled
	exchange  string
	logger    zerolog.Logger
}

func NewSheetService(
	sheets repository.SheetRepository,
	students repository.StudentRepository,
	exams repository.ExamRepository,
	store storage.Storage,
	publisher repository.RabbitMQRepository,
	exchange string,
	logger zerolog.Logger,
) SheetService {
	return &sheetService{
		sheets:    sheets,
		students:  students,
		exams:     exams,
		store:     store,
		publisher: publisher,
		exchange:  exchange,
		logger:    logger,
	}
}

func (s *sheetService) Upload(ctx context.Context, studentID, examID, filename string, data []byte) (*models.AnswerSheet, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, ext)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", ErrEmptyField)
	}

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

	sheetID := uuid.New().String()
	key := fmt.Sprintf("sheets/%s%s", sheetID, ext)

	if err := s.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageError, err)
	}

	sheet := &models.AnswerSheet{
		ID:         sheetID,
		StudentID:  studentID,
		ExamID:     examID,
		FilePath:   key,
		Status:     models.SheetStatusPending.String(),
		UploadDate: time.Now().UTC(),
	}

	if err := s.sheets.Create(ctx, sheet); err != nil {
		// roll back the stored scan so the bucket does not accumulate
		// orphans
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Error().Err(delErr).Str("key", key).Msg("Failed to remove orphaned scan")
		}
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	s.logger.Info().
		Str("sheet_id", sheet.ID).
		Str("student_id", studentID).
		Str("exam_id", examID).
		Str("key", key).
		Msg("Answer sheet uploaded")

	s.publishUploaded(ctx, sheet)

	return sheet, nil
}

// publishUploaded hands the sheet to the async grading pipeline. Publishing
// is best-effort: the sheet stays Pending and can still be graded through
// the synchronous endpoints.
func (s *sheetService) publishUploaded(ctx context.Context, sheet *models.AnswerSheet) {
	if s.publisher == nil {
		return
	}

	event := models.SheetUploadedEvent{
		SheetID:    sheet.ID,
		StudentID:  sheet.StudentID,
		ExamID:     sheet.ExamID,
		FilePath:   sheet.FilePath,
		UploadedAt: sheet.UploadDate,
	}

	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Str("sheet_id", sheet.ID).Msg("Failed to marshal upload event")
		return
	}

	if err := s.publisher.Publish(ctx, s.exchange, RoutingKeySheetUploaded, body); err != nil {
		s.logger.Error().Err(err).Str("sheet_id", sheet.ID).Msg("Failed to publish upload event")
	}
}

func (s *sheetService) GetByID(ctx context.Context, id string) (*models.AnswerSheet, error) {
	sheet, err := s.sheets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	if sheet == nil {
		return nil, ErrSheetNotFound
	}
	return sheet, nil
}

func (s *sheetService) GetAll(ctx context.Context, examID, studentID, status string) ([]models.AnswerSheet, error) {
	if status != "" && !models.IsValidSheetStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrEmptyField, status)
	}

	sheets, err := s.sheets.GetAll(ctx, examID, studentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	return sheets, nil
}

func (s *sheetService) Delete(ctx context.Context, id string) error {
	sheet, err := s.sheets.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get sheet: %w", err)
	}
	if sheet == nil {
		return ErrSheetNotFound
	}

	if err := s.sheets.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete sheet: %w", err)
	}

	if err := s.store.Delete(ctx, sheet.FilePath); err != nil {
		s.logger.Warn().Err(err).Str("key", sheet.FilePath).Msg("Failed to delete stored scan")
	}

	return nil
}
