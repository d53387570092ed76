// Package segment splits recognized answer-sheet text into numbered
// question/answer segments used for per-question evaluation and review.
package segment

import (
	"regexp"
	"strconv"
	"strings"
)

// Segment is one (question number, answer text) pair extracted from raw
// recognized text.
type Segment struct {
	QuestionNo int
	Answer     string
}

// Answers are expected to be numbered at line starts, e.g.
//
//	1. First answer text...
//	2) Second answer text...
var labelPattern = regexp.MustCompile(`(?m)^\s*(\d+)[).\s]+`)

// Split cuts text into ordered segments. A segment runs from just after its
// numeric label to the start of the next label (or end of text). Segments
// whose trimmed text is empty are dropped. If no labels are found, the whole
// trimmed text becomes a single segment numbered 1. Blank input yields nil.
func Split(text string) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	matches := labelPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Segment{{QuestionNo: 1, Answer: strings.TrimSpace(text)}}
	}

	var segments []Segment
	for i, m := range matches {
		qNo, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}

		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		answer := strings.TrimSpace(text[start:end])
		if answer == "" {
			continue
		}

		segments = append(segments, Segment{QuestionNo: qNo, Answer: answer})
	}

	return segments
}

// ByNumber indexes segments by question number. When the OCR output repeats
// a number, the first occurrence wins.
func ByNumber(segments []Segment) map[int]string {
	byNo := make(map[int]string, len(segments))
	for _, s := range segments {
		if _, ok := byNo[s.QuestionNo]; !ok {
			byNo[s.QuestionNo] = s.Answer
		}
	}
	return byNo
}
