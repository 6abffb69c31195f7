// Package notify tells the outreach team when a case escalates to a higher
// criticality tier.
package notify

import (
	"context"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
)

// DefaultSubjectPrefix is followed by the congregation id.
const DefaultSubjectPrefix = "discipulado.escalations."

// Escalation is published when a contact attempt raises a case's tier.
type Escalation struct {
	CongregationID       string             `json:"congregation_id"`
	CaseID               string             `json:"case_id"`
	MemberID             string             `json:"member_id"`
	MemberName           string             `json:"member_name,omitempty"`
	From                 domain.Criticality `json:"from"`
	To                   domain.Criticality `json:"to"`
	Outcome              domain.Outcome     `json:"outcome,omitempty"`
	NegativeContactCount int                `json:"negative_contact_count"`
	DaysToConfra         *int               `json:"days_to_confra,omitempty"`
	AssignedTo           string             `json:"assigned_to,omitempty"`
	At                   time.Time          `json:"at"`
}

// NewEscalation describes c after it moved up from prev.
func NewEscalation(c *domain.Case, prev domain.Criticality, outcome domain.Outcome, at time.Time) Escalation {
	return Escalation{
		CongregationID:       c.CongregationID,
		CaseID:               c.ID,
		MemberID:             c.MemberID,
		From:                 prev,
		To:                   c.Criticality,
		Outcome:              outcome,
		NegativeContactCount: c.NegativeContactCount,
		DaysToConfra:         c.DaysToConfra,
		AssignedTo:           c.AssignedTo,
		At:                   at.UTC(),
	}
}

// Notifier delivers escalations.
type Notifier interface {
	NotifyEscalation(ctx context.Context, e Escalation) error
	Close() error
}
