package service

import (
	"strings"
	"testing"

	"github.com/gradix/gradix/internal/models"
)

func TestParseQuestionsTolerantTypes(t *testing.T) {
	reqs := []models.CreateQuestionRequest{
		{QuestionNo: float64(1), QuestionText: "What is X?", AnswerText: "X is Y", Marks: float64(5)},
		{QuestionNo: "2", QuestionText: "Define Z", AnswerText: "Z is W", Marks: "2.5"},
		{QuestionText: "No number given", AnswerText: "positional fallback"},
		{QuestionNo: "junk", QuestionText: "Bad number", Marks: "not a number"},
	}

	questions := parseQuestions("exam-1", reqs)
	if len(questions) != 4 {
		t.Fatalf("parsed %d questions, want 4", len(questions))
	}

	if questions[0].QuestionNo != 1 || questions[0].Marks == nil || *questions[0].Marks != 5 {
		t.Errorf("question 0 = %+v", questions[0])
	}
	if questions[1].QuestionNo != 2 || questions[1].Marks == nil || *questions[1].Marks != 2.5 {
		t.Errorf("question 1 = %+v", questions[1])
	}
	// missing number falls back to the item's position
	if questions[2].QuestionNo != 3 {
		t.Errorf("question 2 number = %d, want positional 3", questions[2].QuestionNo)
	}
	if questions[3].QuestionNo != 4 || questions[3].Marks != nil {
		t.Errorf("question 3 = %+v, want positional number and nil marks", questions[3])
	}
}

func TestParseQuestionsSkipsEmptyAndDuplicates(t *testing.T) {
	reqs := []models.CreateQuestionRequest{
		{QuestionNo: float64(1), QuestionText: "First"},
		{QuestionNo: float64(1), QuestionText: "Duplicate number"},
		{QuestionNo: float64(2), QuestionText: "   "},
		{QuestionNo: float64(3), QuestionText: "Third"},
	}

	questions := parseQuestions("exam-1", reqs)
	if len(questions) != 2 {
		t.Fatalf("parsed %d questions, want 2", len(questions))
	}
	if questions[0].QuestionNo != 1 || questions[0].QuestionText != "First" {
		t.Errorf("question 0 = %+v", questions[0])
	}
	if questions[1].QuestionNo != 3 {
		t.Errorf("question 1 = %+v", questions[1])
	}
}

func TestAssembleRubric(t *testing.T) {
	questions := []models.ExamQuestion{
		{QuestionNo: 1, QuestionText: "What is X?", AnswerText: "X is Y", Marks: fptr(5)},
		{QuestionNo: 2, QuestionText: "Define Z"},
	}

	rubric := assembleRubric(questions)
	for _, want := range []string{"Q1: What is X?", "Model answer: X is Y", "Marks: 5", "Q2: Define Z"} {
		if !strings.Contains(rubric, want) {
			t.Errorf("rubric missing %q:\n%s", want, rubric)
		}
	}
}
