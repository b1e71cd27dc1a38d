package domain

import (
	"testing"
	"time"
)

func TestDueDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		priority int
		docType  string
		want     time.Duration
	}{
		{5, "legal", time.Hour},
		{5, "report", 3 * time.Hour},
		{4, "invoice", 5*time.Hour + 36*time.Minute},
		{3, "technical", 28*time.Hour + 48*time.Minute},
		{1, "report", 252 * time.Hour},
		{2, "unknown", 72 * time.Hour},
		{0, "hr", 72 * time.Hour},
	}
	for _, tc := range cases {
		got := DueDate(tc.priority, tc.docType, now)
		if want := now.Add(tc.want); !got.Equal(want) {
			t.Errorf("DueDate(%d, %q) = %s, want %s", tc.priority, tc.docType, got, want)
		}
	}
}

func TestDefaultTeam(t *testing.T) {
	if got := DefaultTeam("contract"); got != "legal-team" {
		t.Fatalf("DefaultTeam(contract) = %s", got)
	}
	if got := DefaultTeam("mystery"); got != "admin-team" {
		t.Fatalf("DefaultTeam(mystery) = %s", got)
	}
}

func TestAssignmentTransitions(t *testing.T) {
	cases := []struct {
		from, to AssignmentStatus
		want     bool
	}{
		{AssignmentAssigned, AssignmentInProgress, true},
		{AssignmentAssigned, AssignmentCompleted, true},
		{AssignmentAssigned, AssignmentOverdue, true},
		{AssignmentInProgress, AssignmentCompleted, true},
		{AssignmentInProgress, AssignmentOverdue, true},
		{AssignmentCompleted, AssignmentInProgress, false},
		{AssignmentOverdue, AssignmentCompleted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
