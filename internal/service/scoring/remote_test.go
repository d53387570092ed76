package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestScorer(url string) *RemoteScorer {
	return NewRemoteScorer(url, "test-key", 2*time.Second, 0, 0, zerolog.Nop())
}

func TestRemoteScorerNotConfigured(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		apiKey  string
	}{
		{"no endpoint", "", "key"},
		{"no key", "http://localhost:9999", ""},
		{"neither", "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewRemoteScorer(c.baseURL, c.apiKey, time.Second, 0, 0, zerolog.Nop())
			_, err := s.Score(context.Background(), []RubricItem{{QuestionNo: 1, Answered: true}})
			if !errors.Is(err, ErrScorerNotConfigured) {
				t.Errorf("err = %v, want ErrScorerNotConfigured", err)
			}
		})
	}
}

func TestRemoteScorerSendsBearerKeyAndRubric(t *testing.T) {
	var gotAuth string
	var gotReq remoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"questions":   []map[string]interface{}{{"question_no": 1, "score": 4.5, "feedback": "good"}},
			"total_score": 4.5,
		})
	}))
	defer srv.Close()

	s := newTestScorer(srv.URL)
	res, err := s.Score(context.Background(), []RubricItem{
		{QuestionNo: 1, QuestionText: "Define osmosis", ModelAnswer: "Movement of water", MaxMarks: fptr(5), StudentAnswer: "Water moves", Answered: true},
	})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer key", gotAuth)
	}
	if len(gotReq.Questions) != 1 || gotReq.Questions[0].QuestionText != "Define osmosis" {
		t.Errorf("request payload = %+v", gotReq.Questions)
	}
	if res.Total != 4.5 {
		t.Errorf("Total = %v, want 4.5", res.Total)
	}
	if res.Questions[0].Score != 4.5 || res.Questions[0].Feedback != "good" {
		t.Errorf("Q1 = %+v", res.Questions[0])
	}
	if res.Source != SourceRemote {
		t.Errorf("Source = %q, want %q", res.Source, SourceRemote)
	}
}

func TestRemoteScorerTolerantResponseParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// question_no as string, missing score, out-of-range score,
		// and one item with a junk question number
		json.NewEncoder(w).Encode(map[string]interface{}{
			"questions": []map[string]interface{}{
				{"question_no": "1", "score": 12.0, "feedback": "over the top"},
				{"question_no": 2.0, "feedback": "no score given"},
				{"question_no": "3a", "score": 2.0},
				{"question_no": "junk", "score": 9.0},
			},
		})
	}))
	defer srv.Close()

	s := newTestScorer(srv.URL)
	res, err := s.Score(context.Background(), []RubricItem{
		{QuestionNo: 1, MaxMarks: fptr(5), StudentAnswer: "a", Answered: true},
		{QuestionNo: 2, MaxMarks: fptr(5), StudentAnswer: "b", Answered: true},
		{QuestionNo: 3, MaxMarks: fptr(5), StudentAnswer: "c", Answered: true},
	})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if res.Questions[0].Score != 5 {
		t.Errorf("Q1 score = %v, want clamped 5", res.Questions[0].Score)
	}
	if res.Questions[1].Score != 0 {
		t.Errorf("Q2 score = %v, want 0 for missing score", res.Questions[1].Score)
	}
	if res.Questions[2].Score != 2 {
		t.Errorf("Q3 score = %v, want 2 from string question_no", res.Questions[2].Score)
	}
	// no total_score in the response: recomputed as the sum
	if res.Total != 7 {
		t.Errorf("Total = %v, want 7", res.Total)
	}
}

func TestRemoteScorerStringScoreFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a garbage score must zero that item only, not sink the response
		json.NewEncoder(w).Encode(map[string]interface{}{
			"questions": []map[string]interface{}{
				{"question_no": 1, "score": "not-a-number", "feedback": "??"},
				{"question_no": 2, "score": "3.5"},
				{"question_no": 3, "score": 4.0},
			},
		})
	}))
	defer srv.Close()

	s := newTestScorer(srv.URL)
	res, err := s.Score(context.Background(), []RubricItem{
		{QuestionNo: 1, MaxMarks: fptr(5), StudentAnswer: "a", Answered: true},
		{QuestionNo: 2, MaxMarks: fptr(5), StudentAnswer: "b", Answered: true},
		{QuestionNo: 3, MaxMarks: fptr(5), StudentAnswer: "c", Answered: true},
	})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if res.Questions[0].Score != 0 {
		t.Errorf("Q1 score = %v, want 0 for non-numeric score", res.Questions[0].Score)
	}
	if res.Questions[0].Feedback != "??" {
		t.Errorf("Q1 feedback = %q, want the item's feedback kept", res.Questions[0].Feedback)
	}
	if res.Questions[1].Score != 3.5 {
		t.Errorf("Q2 score = %v, want 3.5 from numeric string", res.Questions[1].Score)
	}
	if res.Questions[2].Score != 4 {
		t.Errorf("Q3 score = %v, want 4", res.Questions[2].Score)
	}
	if res.Total != 7.5 {
		t.Errorf("Total = %v, want 7.5", res.Total)
	}
}

func TestRemoteScorerUnansweredNotCredited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"questions": []map[string]interface{}{
				{"question_no": 1, "score": 3.0},
				{"question_no": 2, "score": 4.0, "feedback": "hallucinated"},
			},
		})
	}))
	defer srv.Close()

	s := newTestScorer(srv.URL)
	res, err := s.Score(context.Background(), []RubricItem{
		{QuestionNo: 1, MaxMarks: fptr(5), StudentAnswer: "a", Answered: true},
		{QuestionNo: 2, MaxMarks: fptr(5), StudentAnswer: UnansweredSentinel, Answered: false},
	})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if res.Questions[1].Score != 0 || res.Questions[1].Feedback != "Unanswered" {
		t.Errorf("unanswered item = %+v, want zero score", res.Questions[1])
	}
	if res.Total != 3 {
		t.Errorf("Total = %v, want 3", res.Total)
	}
}

func TestRemoteScorerRetriesThenFails(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewRemoteScorer(srv.URL, "test-key", time.Second, 2, time.Millisecond, zerolog.Nop())
	_, err := s.Score(context.Background(), []RubricItem{{QuestionNo: 1, Answered: true}})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls != 3 {
		t.Errorf("server called %d times, want 3", calls)
	}
}
