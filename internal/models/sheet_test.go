package models

import "testing"

func TestSheetLifecycle(t *testing.T) {
	cases := []struct {
		status       string
		canEvaluate  bool
		canReview    bool
		isReviewable bool
	}{
		{"Pending", true, false, false},
		{"Graded", true, true, true},
		{"Reviewed", false, false, true},
	}

	for _, c := range cases {
		t.Run(c.status, func(t *testing.T) {
			if got := CanEvaluate(c.status); got != c.canEvaluate {
				t.Errorf("CanEvaluate(%s) = %v, want %v", c.status, got, c.canEvaluate)
			}
			if got := CanReview(c.status); got != c.canReview {
				t.Errorf("CanReview(%s) = %v, want %v", c.status, got, c.canReview)
			}
			if got := IsReviewable(c.status); got != c.isReviewable {
				t.Errorf("IsReviewable(%s) = %v, want %v", c.status, got, c.isReviewable)
			}
		})
	}
}

func TestIsValidSheetStatus(t *testing.T) {
	for _, valid := range []string{"Pending", "Graded", "Reviewed"} {
		if !IsValidSheetStatus(valid) {
			t.Errorf("IsValidSheetStatus(%s) = false, want true", valid)
		}
	}
	for _, invalid := range []string{"", "pending", "Done", "graded "} {
		if IsValidSheetStatus(invalid) {
			t.Errorf("IsValidSheetStatus(%q) = true, want false", invalid)
		}
	}
}
