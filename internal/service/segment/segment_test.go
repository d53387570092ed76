package segment

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitBlankInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t \n"} {
		if got := Split(text); len(got) != 0 {
			t.Fatalf("Split(%q) = %v, want empty", text, got)
		}
	}
}

func TestSplitNoLabels(t *testing.T) {
	text := "  The mitochondria is the powerhouse of the cell.  "
	got := Split(text)
	if len(got) != 1 {
		t.Fatalf("Split returned %d segments, want 1", len(got))
	}
	if got[0].QuestionNo != 1 {
		t.Errorf("QuestionNo = %d, want 1", got[0].QuestionNo)
	}
	if got[0].Answer != strings.TrimSpace(text) {
		t.Errorf("Answer = %q, want trimmed input", got[0].Answer)
	}
}

func TestSplitNumbered(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []Segment
	}{
		{
			name: "dot separators",
			text: "1. Paris is the capital.\n2. It has a population of 2 million.",
			want: []Segment{
				{1, "Paris is the capital."},
				{2, "It has a population of 2 million."},
			},
		},
		{
			name: "mixed separators",
			text: "1. First answer\n2) Second answer\n3 Third answer",
			want: []Segment{
				{1, "First answer"},
				{2, "Second answer"},
				{3, "Third answer"},
			},
		},
		{
			name: "leading whitespace before labels",
			text: "  1. alpha\n\t2. beta",
			want: []Segment{
				{1, "alpha"},
				{2, "beta"},
			},
		},
		{
			name: "multi-line answers",
			text: "1. first line\nsecond line\n2. next answer",
			want: []Segment{
				{1, "first line\nsecond line"},
				{2, "next answer"},
			},
		},
		{
			name: "empty segment dropped",
			text: "1. real answer\n2.\n3. another answer",
			want: []Segment{
				{1, "real answer"},
				{3, "another answer"},
			},
		},
		{
			name: "non-contiguous numbering preserved",
			text: "2. second\n5. fifth",
			want: []Segment{
				{2, "second"},
				{5, "fifth"},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Split(c.text)
			if len(got) != len(c.want) {
				t.Fatalf("Split returned %d segments, want %d: %v", len(got), len(c.want), got)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("segment %d = %+v, want %+v", i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestSplitIdempotentOnRejoin(t *testing.T) {
	text := "1. Paris is the capital.\n2) Second answer here\n4 Fourth answer"
	first := Split(text)

	var b strings.Builder
	for _, s := range first {
		fmt.Fprintf(&b, "%d. %s\n", s.QuestionNo, s.Answer)
	}

	second := Split(b.String())
	if len(second) != len(first) {
		t.Fatalf("re-split returned %d segments, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("segment %d changed after rejoin: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestByNumberFirstOccurrenceWins(t *testing.T) {
	segs := []Segment{{1, "first"}, {2, "second"}, {1, "duplicate"}}
	byNo := ByNumber(segs)
	if len(byNo) != 2 {
		t.Fatalf("ByNumber returned %d entries, want 2", len(byNo))
	}
	if byNo[1] != "first" {
		t.Errorf("byNo[1] = %q, want %q", byNo[1], "first")
	}
}
