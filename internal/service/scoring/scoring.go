// Package scoring holds the rubric scoring backends: a remote grading
// service client and a deterministic heuristic fallback.
package scoring

import (
	"context"
	"math"
)

// UnansweredSentinel stands in for a student answer that was not found in the
// segmented text. Backends must score such items as zero.
const UnansweredSentinel = "[UNANSWERED]"

// Source values recorded on a Result.
const (
	SourceRemote    = "remote"
	SourceHeuristic = "heuristic"
)

// RubricItem pairs one exam question with the student's answer for it.
type RubricItem struct {
	QuestionNo    int
	QuestionText  string
	ModelAnswer   string
	MaxMarks      *float64
	StudentAnswer string
	Answered      bool
}

// QuestionScore is a backend's verdict on a single rubric item.
type QuestionScore struct {
	QuestionNo int
	Score      float64
	Feedback   string
}

// Result is a full scoring outcome for one answer sheet.
type Result struct {
	Total     float64
	Feedback  string
	Questions []QuestionScore
	Source    string
}

// Scorer grades a set of rubric items. Implementations must keep the output
// in the same order as the input items.
type Scorer interface {
	Score(ctx context.Context, items []RubricItem) (*Result, error)
}

// Round2 rounds to two decimal places, the precision scores are stored at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
