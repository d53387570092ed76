package models

import "time"

// Report is a cached aggregate per (student, exam), generated lazily from
// Reviewed sheets and persisted.
type Report struct {
	ID          string    `json:"report_id" db:"report_id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	ExamID      string    `json:"exam_id" db:"exam_id"`
	TotalScore  float64   `json:"total_score" db:"total_score"`
	Remarks     *string   `json:"remarks,omitempty" db:"remarks"`
	GeneratedOn time.Time `json:"generated_on" db:"generated_on"`
}
