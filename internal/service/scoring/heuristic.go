package scoring

import (
	"context"
	"fmt"
	"strings"
)

// Component estimates used when no grading service is reachable. The blend is
// their unweighted mean.
const (
	semanticSimilarity = 0.78
	keywordCoverage    = 0.80
	grammarQuality     = 0.90
)

// HeuristicScorer grades with fixed component estimates. It never fails and
// serves as the fallback when the remote scorer is unavailable.
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

func (s *HeuristicScorer) Score(_ context.Context, items []RubricItem) (*Result, error) {
	blended := Round2((semanticSimilarity + keywordCoverage + grammarQuality) / 3)

	questions := make([]QuestionScore, 0, len(items))
	var subScores []string
	for _, item := range items {
		q := QuestionScore{QuestionNo: item.QuestionNo}
		if item.Answered {
			q.Score = semanticSimilarity
			q.Feedback = fmt.Sprintf("Estimated semantic similarity %.2f", semanticSimilarity)
		} else {
			q.Feedback = "Unanswered"
		}
		questions = append(questions, q)
		subScores = append(subScores, fmt.Sprintf("Q%d: %.2f", item.QuestionNo, q.Score))
	}

	feedback := fmt.Sprintf(
		"Heuristic evaluation: semantic similarity %.2f, keyword coverage %.2f, grammar quality %.2f",
		semanticSimilarity, keywordCoverage, grammarQuality,
	)
	if len(subScores) > 0 {
		feedback += "; " + strings.Join(subScores, ", ")
	}

	return &Result{
		Total:     blended,
		Feedback:  feedback,
		Questions: questions,
		Source:    SourceHeuristic,
	}, nil
}
