package scoring

import (
	"context"
	"strings"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestHeuristicBlendedTotal(t *testing.T) {
	s := NewHeuristicScorer()
	res, err := s.Score(context.Background(), []RubricItem{
		{QuestionNo: 1, StudentAnswer: "some answer", Answered: true},
	})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if res.Total != 0.83 {
		t.Errorf("Total = %v, want 0.83", res.Total)
	}
	if res.Source != SourceHeuristic {
		t.Errorf("Source = %q, want %q", res.Source, SourceHeuristic)
	}
	if !strings.HasPrefix(res.Feedback, "Heuristic evaluation:") {
		t.Errorf("Feedback = %q, want heuristic prefix", res.Feedback)
	}
}

func TestHeuristicUnansweredScoredZero(t *testing.T) {
	s := NewHeuristicScorer()
	res, err := s.Score(context.Background(), []RubricItem{
		{QuestionNo: 1, StudentAnswer: "answered", Answered: true},
		{QuestionNo: 2, StudentAnswer: UnansweredSentinel, Answered: false},
	})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("got %d question scores, want 2", len(res.Questions))
	}
	if res.Questions[0].Score != semanticSimilarity {
		t.Errorf("Q1 score = %v, want %v", res.Questions[0].Score, semanticSimilarity)
	}
	if res.Questions[1].Score != 0 {
		t.Errorf("Q2 score = %v, want 0", res.Questions[1].Score)
	}
	if res.Questions[1].Feedback != "Unanswered" {
		t.Errorf("Q2 feedback = %q, want Unanswered", res.Questions[1].Feedback)
	}
}

func TestHeuristicPreservesItemOrder(t *testing.T) {
	s := NewHeuristicScorer()
	items := []RubricItem{
		{QuestionNo: 3, Answered: true},
		{QuestionNo: 1, Answered: true},
		{QuestionNo: 2, Answered: false},
	}
	res, err := s.Score(context.Background(), items)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	for i, item := range items {
		if res.Questions[i].QuestionNo != item.QuestionNo {
			t.Errorf("position %d: QuestionNo = %d, want %d", i, res.Questions[i].QuestionNo, item.QuestionNo)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.826666, 0.83},
		{0.834, 0.83},
		{0.836, 0.84},
		{1.004, 1.0},
		{0, 0},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Errorf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
