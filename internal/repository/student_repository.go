package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
)

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByRollNo(ctx context.Context, rollNo string) (*models.Student, error)
	GetAll(ctx context.Context) ([]models.Student, error)
	Delete(ctx context.Context, id string) error
}

type studentRepository struct {
	*PostgresRepository
}

func NewStudentRepository(db *sql.DB, logger zerolog.Logger) StudentRepository {
	return &studentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (student_id, name, roll_no, course, semester, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.Name,
		student.RollNo,
		student.Course,
		student.Semester,
		student.CreatedAt,
	)

	return err
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	query := `
		SELECT student_id, name, roll_no, course, semester, created_at
		FROM students
		WHERE student_id = $1
	`

	student := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&student.ID,
		&student.Name,
		&student.RollNo,
		&student.Course,
		&student.Semester,
		&student.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return student, nil
}

func (r *studentRepository) GetByRollNo(ctx context.Context, rollNo string) (*models.Student, error) {
	query := `
		SELECT student_id, name, roll_no, course, semester, created_at
		FROM students
		WHERE roll_no = $1
	`

	student := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, rollNo).Scan(
		&student.ID,
		&student.Name,
		&student.RollNo,
		&student.Course,
		&student.Semester,
		&student.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return student, nil
}

func (r *studentRepository) GetAll(ctx context.Context) ([]models.Student, error) {
	query := `
		SELECT student_id, name, roll_no, course, semester, created_at
		FROM students
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var student models.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.RollNo,
			&student.Course,
			&student.Semester,
			&student.CreatedAt,
		); err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	return students, rows.Err()
}

func (r *studentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM students WHERE student_id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
