package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/service/scoring"
)

type stubScorer struct {
	result *scoring.Result
	err    error
	items  []scoring.RubricItem
	calls  int
}

func (s *stubScorer) Score(_ context.Context, items []scoring.RubricItem) (*scoring.Result, error) {
	s.calls++
	s.items = items
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}

	questions := make([]scoring.QuestionScore, 0, len(items))
	var total float64
	for _, item := range items {
		q := scoring.QuestionScore{QuestionNo: item.QuestionNo}
		if item.Answered {
			q.Score = 1.0
			total += 1.0
		} else {
			q.Feedback = "Unanswered"
		}
		questions = append(questions, q)
	}
	return &scoring.Result{Total: total, Questions: questions, Source: scoring.SourceRemote}, nil
}

func fptr(v float64) *float64 { return &v }

func rubric(nos ...int) []models.ExamQuestion {
	questions := make([]models.ExamQuestion, 0, len(nos))
	for _, no := range nos {
		questions = append(questions, models.ExamQuestion{
			QuestionNo:   no,
			QuestionText: "question",
			AnswerText:   "model answer",
			Marks:        fptr(5),
		})
	}
	return questions
}

func TestReconcilerPrefersRemote(t *testing.T) {
	remote := &stubScorer{}
	fallback := &stubScorer{}
	r := NewReconciler(remote, fallback, zerolog.Nop())

	res, err := r.Grade(context.Background(), "1. answer one\n2. answer two", rubric(1, 2))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if res.Source != scoring.SourceRemote {
		t.Errorf("Source = %q, want remote", res.Source)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestReconcilerFallsBackOnRemoteFailure(t *testing.T) {
	remote := &stubScorer{err: errors.New("grading service down")}
	fallback := &stubScorer{result: &scoring.Result{Total: 0.83, Source: scoring.SourceHeuristic}}
	r := NewReconciler(remote, fallback, zerolog.Nop())

	res, err := r.Grade(context.Background(), "1. answer one", rubric(1))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if res.Source != scoring.SourceHeuristic {
		t.Errorf("Source = %q, want heuristic after remote failure", res.Source)
	}
	if remote.calls != 1 || fallback.calls != 1 {
		t.Errorf("remote calls = %d, fallback calls = %d; want 1 and 1", remote.calls, fallback.calls)
	}
}

func TestReconcilerSkipsRemoteWithoutRubric(t *testing.T) {
	remote := &stubScorer{}
	fallback := &stubScorer{result: &scoring.Result{Total: 0.83, Source: scoring.SourceHeuristic}}
	r := NewReconciler(remote, fallback, zerolog.Nop())

	if _, err := r.Grade(context.Background(), "1. free-form answer", nil); err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if remote.calls != 0 {
		t.Errorf("remote called %d times without a rubric, want 0", remote.calls)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback called %d times, want 1", fallback.calls)
	}
}

func TestReconcilerAlignsItemsToExamOrder(t *testing.T) {
	remote := &stubScorer{}
	r := NewReconciler(remote, &stubScorer{}, zerolog.Nop())

	// Q2 is missing from the student's text.
	text := "3. third answer\n1. first answer"
	if _, err := r.Grade(context.Background(), text, rubric(1, 2, 3)); err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}

	if len(remote.items) != 3 {
		t.Fatalf("remote received %d items, want 3", len(remote.items))
	}
	for i, wantNo := range []int{1, 2, 3} {
		if remote.items[i].QuestionNo != wantNo {
			t.Errorf("item %d QuestionNo = %d, want %d", i, remote.items[i].QuestionNo, wantNo)
		}
	}
	if remote.items[0].StudentAnswer != "first answer" || !remote.items[0].Answered {
		t.Errorf("item 0 = %+v, want answered", remote.items[0])
	}
	if remote.items[1].Answered || remote.items[1].StudentAnswer != scoring.UnansweredSentinel {
		t.Errorf("item 1 = %+v, want unanswered sentinel", remote.items[1])
	}
}

func TestReconcilerEmptyTextWithRubric(t *testing.T) {
	remote := &stubScorer{}
	fallback := &stubScorer{}
	r := NewReconciler(remote, fallback, zerolog.Nop())

	res, err := r.Grade(context.Background(), "", rubric(1, 2))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}

	if remote.calls != 0 || fallback.calls != 0 {
		t.Errorf("backends consulted for a blank sheet: remote=%d fallback=%d", remote.calls, fallback.calls)
	}
	if res.Total != 0.0 {
		t.Errorf("Total = %v, want 0.0", res.Total)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("got %d question scores, want 2", len(res.Questions))
	}
	for _, q := range res.Questions {
		if q.Score != 0 || q.Feedback != "Unanswered" {
			t.Errorf("question %d = %+v, want zero/Unanswered", q.QuestionNo, q)
		}
	}
}

func TestReconcilerEmptyTextWithoutRubric(t *testing.T) {
	remote := &stubScorer{}
	fallback := &stubScorer{}
	r := NewReconciler(remote, fallback, zerolog.Nop())

	res, err := r.Grade(context.Background(), "   \n ", nil)
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}

	if remote.calls != 0 || fallback.calls != 0 {
		t.Errorf("backends consulted for a blank sheet: remote=%d fallback=%d", remote.calls, fallback.calls)
	}
	if res.Total != 0.0 {
		t.Errorf("Total = %v, want 0.0", res.Total)
	}
	if len(res.Questions) != 0 {
		t.Errorf("got %d question scores, want none without a rubric", len(res.Questions))
	}
}

func TestReconcilerUnlabeledTextWithoutRubric(t *testing.T) {
	fallback := &stubScorer{result: &scoring.Result{Total: 0.83, Source: scoring.SourceHeuristic}}
	r := NewReconciler(nil, fallback, zerolog.Nop())

	if _, err := r.Grade(context.Background(), "a single unlabeled paragraph", nil); err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}

	if len(fallback.items) != 1 {
		t.Fatalf("fallback received %d items, want 1", len(fallback.items))
	}
	if fallback.items[0].QuestionNo != 1 || !fallback.items[0].Answered {
		t.Errorf("item = %+v, want single answered item numbered 1", fallback.items[0])
	}
}
