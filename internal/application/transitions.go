// Package application implements the job-application lifecycle: the status
// state machine, the create/transition/withdraw/rate operations with their
// counter side effects, and the HTTP handlers.
//
// Valid status graph:
//
//	PENDING ──► SHORTLISTED ──► INTERVIEW_SCHEDULED ──► HIRED
//	    │             │                   │
//	    └─────────────┴───────────────────┴──► REJECTED
//
// Employers may skip forward stages (e.g. hire straight from pending) but
// never move backwards or out of a terminal state. WITHDRAWN is reachable
// only through the applicant-initiated withdraw operation, from any
// non-terminal state. HIRED, REJECTED and WITHDRAWN are terminal.
package application

import "fmt"

// Status values mirror the status column in PostgreSQL.
type Status string

const (
	StatusPending            Status = "pending"
	StatusShortlisted        Status = "shortlisted"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusHired              Status = "hired"
	StatusRejected           Status = "rejected"
	StatusWithdrawn          Status = "withdrawn"
)

// stageRank orders the forward pipeline. Terminal-by-rejection and withdrawn
// are not stages.
var stageRank = map[Status]int{
	StatusPending:            0,
	StatusShortlisted:        1,
	StatusInterviewScheduled: 2,
	StatusHired:              3,
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusShortlisted, StatusInterviewScheduled,
		StatusHired, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTerminal returns true for states with no outgoing transitions.
func IsTerminal(s Status) bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

// EmployerTransitionAllowed returns true when an employer may move an
// application from → to. Rejection is allowed from any non-terminal state;
// stage moves must be strictly forward. Withdrawn is never an employer
// target.
func EmployerTransitionAllowed(from, to Status) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StatusRejected {
		return true
	}
	fromRank, ok := stageRank[from]
	if !ok {
		return false
	}
	toRank, ok := stageRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// CanWithdraw returns true when the applicant may withdraw an application in
// the given state.
func CanWithdraw(from Status) bool {
	return !IsTerminal(from)
}

// IsHired returns true when status is hired (triggers the hire notification).
func IsHired(s Status) bool { return s == StatusHired }
