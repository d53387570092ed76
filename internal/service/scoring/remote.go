package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrScorerNotConfigured is returned before any I/O when the grading service
// endpoint or API key is absent.
var ErrScorerNotConfigured = errors.New("remote scorer is not configured")

type remoteRequest struct {
	Questions []remoteRequestItem `json:"questions"`
}

type remoteRequestItem struct {
	QuestionNo    int      `json:"question_no"`
	QuestionText  string   `json:"question_text"`
	ModelAnswer   string   `json:"model_answer"`
	MaxMarks      *float64 `json:"max_marks,omitempty"`
	StudentAnswer string   `json:"student_answer"`
}

type remoteResponse struct {
	Questions  []remoteResponseItem `json:"questions"`
	TotalScore *float64             `json:"total_score"`
	Feedback   string               `json:"feedback"`
}

// remoteResponseItem tolerates loose typing from the grading service:
// question_no and score may arrive as numbers or strings, or be missing.
type remoteResponseItem struct {
	QuestionNo interface{} `json:"question_no"`
	Score      interface{} `json:"score"`
	Feedback   string      `json:"feedback"`
}

// RemoteScorer calls an external LLM grading service over HTTP.
type RemoteScorer struct {
	baseURL    string
	apiKey     string
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewRemoteScorer(baseURL, apiKey string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) *RemoteScorer {
	return &RemoteScorer{
		baseURL:    baseURL,
		apiKey:     apiKey,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Configured reports whether the scorer has an endpoint and a key.
func (s *RemoteScorer) Configured() bool {
	return s.baseURL != "" && s.apiKey != ""
}

func (s *RemoteScorer) Score(ctx context.Context, items []RubricItem) (*Result, error) {
	if !s.Configured() {
		return nil, ErrScorerNotConfigured
	}

	reqBody := remoteRequest{Questions: make([]remoteRequestItem, 0, len(items))}
	for _, item := range items {
		reqBody.Questions = append(reqBody.Questions, remoteRequestItem{
			QuestionNo:    item.QuestionNo,
			QuestionText:  item.QuestionText,
			ModelAnswer:   item.ModelAnswer,
			MaxMarks:      item.MaxMarks,
			StudentAnswer: item.StudentAnswer,
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scoring request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/grade", s.baseURL)

	var parsed *remoteResponse
	var lastErr error
	for i := 0; i <= s.retryCount; i++ {
		if i > 0 {
			s.logger.Warn().Int("attempt", i).Msg("Retrying remote scoring call")
			time.Sleep(s.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.apiKey)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to call grading service: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
				resp.Body.Close()
				lastErr = fmt.Errorf("failed to decode grading response: %w", err)
				parsed = nil
				continue
			}
			resp.Body.Close()
			break
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("grading service returned status %d: %s", resp.StatusCode, string(body))
	}

	if parsed == nil {
		return nil, fmt.Errorf("failed to score after %d attempts: %w", s.retryCount+1, lastErr)
	}

	return s.reconcile(items, parsed), nil
}

// reconcile maps the loosely-typed service response back onto the input
// items, clamping scores to each question's marks.
func (s *RemoteScorer) reconcile(items []RubricItem, resp *remoteResponse) *Result {
	byNo := make(map[int]remoteResponseItem, len(resp.Questions))
	for _, q := range resp.Questions {
		no, ok := parseQuestionNo(q.QuestionNo)
		if !ok {
			s.logger.Warn().Interface("question_no", q.QuestionNo).Msg("Discarding grading item with unusable question number")
			continue
		}
		byNo[no] = q
	}

	questions := make([]QuestionScore, 0, len(items))
	var sum float64
	for _, item := range items {
		q := QuestionScore{QuestionNo: item.QuestionNo}
		if item.Answered {
			if got, ok := byNo[item.QuestionNo]; ok {
				q.Score = clamp(parseScore(got.Score), item.MaxMarks)
				q.Feedback = got.Feedback
			}
		} else {
			q.Feedback = "Unanswered"
		}
		questions = append(questions, q)
		sum += q.Score
	}

	total := Round2(sum)
	if resp.TotalScore != nil {
		total = Round2(*resp.TotalScore)
	}

	feedback := "AI evaluation"
	if resp.Feedback != "" {
		feedback = "AI evaluation: " + resp.Feedback
	}

	return &Result{
		Total:     total,
		Feedback:  feedback,
		Questions: questions,
		Source:    SourceRemote,
	}
}

// parseQuestionNo accepts JSON numbers and strings with leading digits
// ("3", "3a", "Q3" is rejected); anything else is discarded.
func parseQuestionNo(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		trimmed := strings.TrimSpace(n)
		i := 0
		for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
			i++
		}
		if i == 0 {
			return 0, false
		}
		no, err := strconv.Atoi(trimmed[:i])
		if err != nil {
			return 0, false
		}
		return no, true
	default:
		return 0, false
	}
}

// parseScore accepts JSON numbers and numeric strings; missing or
// non-numeric scores count as zero.
func parseScore(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func clamp(score float64, maxMarks *float64) float64 {
	if score < 0 {
		return 0
	}
	if maxMarks != nil && score > *maxMarks {
		return *maxMarks
	}
	return score
}
