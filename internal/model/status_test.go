package model

import "testing"

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"pending", "in_progress", "completed", "failed"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Fatalf("ParseStatus(%q) error: %v", valid, err)
		}
	}
	if _, err := ParseStatus("skipped"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusFailed, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusFailed, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusFailed, StatusInProgress, false},
		{StatusFailed, StatusPending, false},
		{StatusInProgress, StatusPending, false},
	}

	for _, tc := range cases {
		if got := IsTransitionAllowed(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("IsTransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	if IsTerminal(StatusPending) || IsTerminal(StatusInProgress) {
		t.Fatalf("pending/in_progress must not be terminal")
	}
	if !IsTerminal(StatusCompleted) || !IsTerminal(StatusFailed) {
		t.Fatalf("completed/failed must be terminal")
	}
}
