package models

import "time"

type Exam struct {
	ID            string    `json:"exam_id" db:"exam_id"`
	Subject       string    `json:"subject" db:"subject"`
	MaxMarks      int       `json:"max_marks" db:"max_marks"`
	RubricDetails *string   `json:"rubric_details,omitempty" db:"rubric_details"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ExamQuestion is one rubric entry. Question numbers are unique within an
// exam but are not required to be contiguous.
type ExamQuestion struct {
	ID           string   `json:"id" db:"id"`
	ExamID       string   `json:"exam_id" db:"exam_id"`
	QuestionNo   int      `json:"question_no" db:"question_no"`
	QuestionText string   `json:"question_text" db:"question_text"`
	AnswerText   string   `json:"answer_text" db:"answer_text"`
	Marks        *float64 `json:"marks,omitempty" db:"marks"`
}

type ExamWithQuestions struct {
	Exam
	Questions []ExamQuestion `json:"questions"`
}
