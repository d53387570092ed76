package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/repository"
)

type StudentService interface {
	Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error)
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetAll(ctx context.Context) ([]models.Student, error)
	Delete(ctx context.Context, id string) error
}

type studentService struct {
	students repository.StudentRepository
	logger   zerolog.Logger
}

func NewStudentService(students repository.StudentRepository, logger zerolog.Logger) StudentService {
	return &studentService{
		students: students,
		logger:   logger,
	}
}

func (s *studentService) Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.RollNo) == "" {
		return nil, fmt.Errorf("%w: name and roll_no are required", ErrEmptyField)
	}

	existing, err := s.students.GetByRollNo(ctx, req.RollNo)
	if err != nil {
		return nil, fmt.Errorf("failed to check roll number: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRollNo, req.RollNo)
	}

	student := &models.Student{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		RollNo:    strings.TrimSpace(req.RollNo),
		Course:    strings.TrimSpace(req.Course),
		Semester:  strings.TrimSpace(req.Semester),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info().
		Str("student_id", student.ID).
		Str("roll_no", student.RollNo).
		Msg("Student registered")

	return student, nil
}

func (s *studentService) GetByID(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

func (s *studentService) GetAll(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *studentService) Delete(ctx context.Context, id string) error {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return ErrStudentNotFound
	}
	return s.students.Delete(ctx, id)
}
