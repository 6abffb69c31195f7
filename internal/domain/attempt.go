package domain

import "time"

// ContactAttempt is an append-only log entry. Rows are never updated or deleted
// except through deletion of the owning case.
type ContactAttempt struct {
	ID          string
	CaseID      string
	MemberID    string
	Outcome     Outcome
	Channel     Channel
	Notes       string
	AttemptedBy string
	CreatedAt   time.Time
}
