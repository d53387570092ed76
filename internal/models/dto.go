package models

// CreateExamRequest carries the exam payload. Question numbers and marks are
// parsed tolerantly in the service layer; items without text are skipped.
type CreateExamRequest struct {
	Subject       string                  `json:"subject"`
	MaxMarks      *int                    `json:"max_marks"`
	RubricDetails *string                 `json:"rubric_details,omitempty"`
	Questions     []CreateQuestionRequest `json:"questions,omitempty"`
}

type CreateQuestionRequest struct {
	QuestionNo   interface{} `json:"question_no,omitempty"`
	QuestionText string      `json:"question_text"`
	AnswerText   string      `json:"answer_text"`
	Marks        interface{} `json:"marks,omitempty"`
}

type CreateStudentRequest struct {
	Name     string `json:"name"`
	RollNo   string `json:"roll_no"`
	Course   string `json:"course"`
	Semester string `json:"semester"`
}

type OverrideReviewRequest struct {
	Score     *float64                `json:"score"`
	Feedback  *string                 `json:"feedback,omitempty"`
	Questions []QuestionScoreOverride `json:"questions,omitempty"`
}

type QuestionScoreOverride struct {
	QuestionNo int     `json:"question_no"`
	Score      float64 `json:"score"`
	Feedback   *string `json:"feedback,omitempty"`
}

type ReviewBundle struct {
	Sheet          AnswerSheet          `json:"sheet"`
	ExtractedText  ExtractedText        `json:"extracted_text"`
	Evaluation     Evaluation           `json:"evaluation"`
	QuestionScores []QuestionEvaluation `json:"question_scores"`
}

type ExamAnalytics struct {
	ExamID            string         `json:"exam_id"`
	ClassAverage      *float64       `json:"class_average"`
	TotalSubmissions  int            `json:"total_submissions"`
	ScoreDistribution map[string]int `json:"score_distribution"`
}
