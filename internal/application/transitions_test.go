package application_test

import (
	"testing"

	"findr/backend/internal/application"
)

var allStatuses = []application.Status{
	application.StatusPending,
	application.StatusShortlisted,
	application.StatusInterviewScheduled,
	application.StatusHired,
	application.StatusRejected,
	application.StatusWithdrawn,
}

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"pending", "shortlisted", "interview_scheduled", "hired", "rejected", "withdrawn"}
	for _, s := range valid {
		got, err := application.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"", "PENDING", "accepted", " pending"} {
		if _, err := application.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── EmployerTransitionAllowed — forward moves ──────────────────────────────

func TestEmployerTransitionAllowed_Forward(t *testing.T) {
	cases := []struct {
		from application.Status
		to   application.Status
	}{
		{application.StatusPending, application.StatusShortlisted},
		{application.StatusShortlisted, application.StatusInterviewScheduled},
		{application.StatusInterviewScheduled, application.StatusHired},
		// skipping stages forward is allowed
		{application.StatusPending, application.StatusInterviewScheduled},
		{application.StatusPending, application.StatusHired},
		{application.StatusShortlisted, application.StatusHired},
	}
	for _, c := range cases {
		if !application.EmployerTransitionAllowed(c.from, c.to) {
			t.Errorf("EmployerTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

// ── EmployerTransitionAllowed — rejection from any non-terminal state ──────

func TestEmployerTransitionAllowed_ToRejected(t *testing.T) {
	nonTerminals := []application.Status{
		application.StatusPending,
		application.StatusShortlisted,
		application.StatusInterviewScheduled,
	}
	for _, from := range nonTerminals {
		if !application.EmployerTransitionAllowed(from, application.StatusRejected) {
			t.Errorf("EmployerTransitionAllowed(%s → rejected) should be true", from)
		}
	}
}

// ── EmployerTransitionAllowed — terminal states have no outgoing moves ─────

func TestEmployerTransitionAllowed_FromTerminal(t *testing.T) {
	terminals := []application.Status{
		application.StatusHired,
		application.StatusRejected,
		application.StatusWithdrawn,
	}
	for _, from := range terminals {
		for _, to := range allStatuses {
			if application.EmployerTransitionAllowed(from, to) {
				t.Errorf("EmployerTransitionAllowed(%s → %s) should be false (terminal)", from, to)
			}
		}
	}
}

// ── EmployerTransitionAllowed — backwards and self moves are forbidden ─────

func TestEmployerTransitionAllowed_Backwards(t *testing.T) {
	cases := []struct {
		from application.Status
		to   application.Status
	}{
		{application.StatusShortlisted, application.StatusPending},
		{application.StatusInterviewScheduled, application.StatusShortlisted},
		{application.StatusInterviewScheduled, application.StatusPending},
	}
	for _, c := range cases {
		if application.EmployerTransitionAllowed(c.from, c.to) {
			t.Errorf("EmployerTransitionAllowed(%s → %s) should be false (backwards)", c.from, c.to)
		}
	}
}

func TestEmployerTransitionAllowed_Self(t *testing.T) {
	for _, s := range allStatuses {
		if application.EmployerTransitionAllowed(s, s) {
			t.Errorf("EmployerTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}

// ── EmployerTransitionAllowed — withdrawn is never an employer target ──────

func TestEmployerTransitionAllowed_ToWithdrawn(t *testing.T) {
	for _, from := range allStatuses {
		if application.EmployerTransitionAllowed(from, application.StatusWithdrawn) {
			t.Errorf("EmployerTransitionAllowed(%s → withdrawn) should be false", from)
		}
	}
}

// ── CanWithdraw ────────────────────────────────────────────────────────────

func TestCanWithdraw(t *testing.T) {
	cases := []struct {
		from application.Status
		want bool
	}{
		{application.StatusPending, true},
		{application.StatusShortlisted, true},
		{application.StatusInterviewScheduled, true},
		{application.StatusHired, false},
		{application.StatusRejected, false},
		{application.StatusWithdrawn, false},
	}
	for _, c := range cases {
		if got := application.CanWithdraw(c.from); got != c.want {
			t.Errorf("CanWithdraw(%s) = %v, want %v", c.from, got, c.want)
		}
	}
}

// ── IsTerminal / IsHired ───────────────────────────────────────────────────

func TestIsTerminal(t *testing.T) {
	want := map[application.Status]bool{
		application.StatusPending:            false,
		application.StatusShortlisted:        false,
		application.StatusInterviewScheduled: false,
		application.StatusHired:              true,
		application.StatusRejected:           true,
		application.StatusWithdrawn:          true,
	}
	for s, w := range want {
		if got := application.IsTerminal(s); got != w {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, w)
		}
	}
}

func TestIsHired_StrictEquality(t *testing.T) {
	for _, s := range allStatuses {
		want := s == application.StatusHired
		if got := application.IsHired(s); got != want {
			t.Errorf("IsHired(%s) = %v, want %v", s, got, want)
		}
	}
}
