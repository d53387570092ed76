package models

import "time"

type AnswerSheet struct {
	ID         string    `json:"sheet_id" db:"sheet_id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	ExamID     string    `json:"exam_id" db:"exam_id"`
	FilePath   string    `json:"file_path" db:"file_path"`
	Status     string    `json:"status" db:"status"` // Pending, Graded, Reviewed
	UploadDate time.Time `json:"upload_date" db:"upload_date"`
}

type SheetStatus string

const (
	SheetStatusPending  SheetStatus = "Pending"
	SheetStatusGraded   SheetStatus = "Graded"
	SheetStatusReviewed SheetStatus = "Reviewed"
)

func (s SheetStatus) String() string {
	return string(s)
}

func IsValidSheetStatus(status string) bool {
	switch status {
	case "Pending", "Graded", "Reviewed":
		return true
	default:
		return false
	}
}

// CanEvaluate reports whether a sheet in the given status may be (re)scored.
// Reviewed sheets are immutable; there is no automatic backward transition.
func CanEvaluate(status string) bool {
	return status == SheetStatusPending.String() || status == SheetStatusGraded.String()
}

// CanReview reports whether a manual override is allowed from the given
// status. Only Graded sheets can be reviewed.
func CanReview(status string) bool {
	return status == SheetStatusGraded.String()
}

// IsReviewable reports whether the review bundle can be displayed.
func IsReviewable(status string) bool {
	return status == SheetStatusGraded.String() || status == SheetStatusReviewed.String()
}
