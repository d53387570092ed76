package models

import "time"

// Evaluation is the overall grading result for one extracted text,
// 1:1 by text_id.
type Evaluation struct {
	ID             string    `json:"eval_id" db:"eval_id"`
	TextID         string    `json:"text_id" db:"text_id"`
	ModelAnswerRef string    `json:"model_answer_ref" db:"model_answer_ref"`
	Score          float64   `json:"score" db:"score"`
	Feedback       *string   `json:"feedback,omitempty" db:"feedback"`
	EvaluatedOn    time.Time `json:"evaluated_on" db:"evaluated_on"`
}

// QuestionEvaluation is one per-question score row, unique by
// (eval_id, question_no).
type QuestionEvaluation struct {
	ID         string  `json:"id" db:"id"`
	EvalID     string  `json:"eval_id" db:"eval_id"`
	QuestionNo int     `json:"question_no" db:"question_no"`
	Score      float64 `json:"score" db:"score"`
	Feedback   *string `json:"feedback,omitempty" db:"feedback"`
}
