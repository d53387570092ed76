package models

import "time"

// SheetUploadedEvent is published after an answer sheet is stored; the
// grading worker consumes it and runs the OCR/evaluate pipeline.
type SheetUploadedEvent struct {
	SheetID    string    `json:"sheet_id"`
	StudentID  string    `json:"student_id"`
	ExamID     string    `json:"exam_id"`
	FilePath   string    `json:"file_path"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// SheetGradedEvent is published after the pipeline lands an evaluation.
type SheetGradedEvent struct {
	SheetID     string    `json:"sheet_id"`
	EvalID      string    `json:"eval_id"`
	Score       float64   `json:"score"`
	Status      string    `json:"status"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}
