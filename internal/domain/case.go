package domain

import (
	"fmt"
	"time"
)

// Case is one person under follow-up, from first contact through the end of
// discipleship. Criticality and DaysToConfra are a materialized copy of
// values derived by triage.Recompute; they are never edited by hand.
type Case struct {
	ID             string
	MemberID       string
	CongregationID string

	Phase  Phase
	Status CaseStatus

	Criticality           Criticality
	NegativeContactCount  int
	LastNegativeContactAt *time.Time
	DaysToConfra          *int

	AssignedTo string

	ConfraternizacaoID           string
	ConfraternizacaoConfirmada   bool
	ConfraternizacaoConfirmadaEm *time.Time

	TurnoOrigem   string
	ModuloAtualID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Derived is the pair of fields recomputed after every write.
type Derived struct {
	DaysToConfra *int
	Criticality  Criticality
}

// NewCase returns a case entering the acolhimento funnel.
func NewCase(id, congregationID, memberID string, now time.Time) *Case {
	return &Case{
		ID:             id,
		MemberID:       memberID,
		CongregationID: congregationID,
		Phase:          PhaseAcolhimento,
		Status:         StatusPendenteMatricula,
		Criticality:    CriticalityBaixa,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ApplyDerived stores a freshly computed (days, criticality) pair.
func (c *Case) ApplyDerived(d Derived) {
	c.DaysToConfra = d.DaysToConfra
	c.Criticality = d.Criticality
}

// InAcolhimentoQueue reports whether the case belongs in the outreach queue.
// Confirmed cases are considered handled.
func (c *Case) InAcolhimentoQueue() bool {
	return c.Phase == PhaseAcolhimento && !c.ConfraternizacaoConfirmada
}

// StartDiscipulado moves an acolhimento case into discipleship with its first module.
func (c *Case) StartDiscipulado(firstModuleID string, now time.Time) error {
	if firstModuleID == "" {
		return fmt.Errorf("start discipulado: first module: %w", ErrInvalidValue)
	}
	if c.Phase != PhaseAcolhimento {
		return transitionErr("start discipulado", c, "case already left acolhimento")
	}
	c.Phase = PhaseDiscipulado
	c.ModuloAtualID = firstModuleID
	if c.Status == "" || c.Status == StatusPendenteMatricula {
		c.Status = StatusEmDiscipulado
	}
	c.UpdatedAt = now
	return nil
}

func (c *Case) Pause(now time.Time) error {
	if c.Status != StatusEmDiscipulado {
		return transitionErr("pause", c, "only cases em_discipulado can be paused")
	}
	c.Status = StatusPausado
	c.UpdatedAt = now
	return nil
}

func (c *Case) Reactivate(now time.Time) error {
	if c.Status != StatusPausado {
		return transitionErr("reactivate", c, "only paused cases can be reactivated")
	}
	c.Status = StatusEmDiscipulado
	c.UpdatedAt = now
	return nil
}

// Conclude finishes discipleship. The case must have started discipulado,
// every enrolled module must be concluido and at least one must be enrolled.
func (c *Case) Conclude(summary ProgressSummary, now time.Time) error {
	if c.Status == StatusConcluido {
		return transitionErr("conclude", c, "case already concluded")
	}
	if c.Phase == PhaseAcolhimento {
		return transitionErr("conclude", c, "case has not started discipulado")
	}
	if !summary.Complete() {
		return &IncompleteModulesError{Done: summary.Done, Total: summary.Total}
	}
	c.Status = StatusConcluido
	c.Phase = PhasePosDiscipulado
	c.UpdatedAt = now
	return nil
}

// ReopenIfConcluded puts a concluded case back into discipleship. It is
// applied whenever enrolled work stops being fully concluded.
func (c *Case) ReopenIfConcluded(now time.Time) bool {
	if c.Status != StatusConcluido {
		return false
	}
	c.Status = StatusEmDiscipulado
	c.Phase = PhaseDiscipulado
	c.UpdatedAt = now
	return true
}

// ConfirmConfraternizacao links the case to an event and marks it confirmed.
func (c *Case) ConfirmConfraternizacao(eventID string, now time.Time) error {
	if eventID == "" {
		return fmt.Errorf("confirm confraternizacao: event: %w", ErrInvalidValue)
	}
	if c.ConfraternizacaoConfirmada && c.ConfraternizacaoID == eventID {
		return nil
	}
	c.ConfraternizacaoID = eventID
	c.ConfraternizacaoConfirmada = true
	c.ConfraternizacaoConfirmadaEm = &now
	c.UpdatedAt = now
	return nil
}

// RevokeConfraternizacao clears the confirmation but keeps the event link.
func (c *Case) RevokeConfraternizacao(now time.Time) error {
	if !c.ConfraternizacaoConfirmada {
		return transitionErr("revoke confraternizacao", c, "case is not confirmed")
	}
	c.ConfraternizacaoConfirmada = false
	c.ConfraternizacaoConfirmadaEm = nil
	c.UpdatedAt = now
	return nil
}

// ApplyAttempt folds one contact attempt into the counters.
func (c *Case) ApplyAttempt(outcome Outcome, now time.Time) error {
	if !outcome.Valid() {
		return fmt.Errorf("apply attempt: outcome %q: %w", outcome, ErrInvalidValue)
	}
	if outcome.IsNegative() {
		c.NegativeContactCount++
		c.LastNegativeContactAt = &now
	}
	c.UpdatedAt = now
	return nil
}

// ResetContacts is the only path that lowers NegativeContactCount.
func (c *Case) ResetContacts(now time.Time) {
	c.NegativeContactCount = 0
	c.LastNegativeContactAt = nil
	c.UpdatedAt = now
}

// Assign sets (or clears, with "") the responsible party.
func (c *Case) Assign(assignee string, now time.Time) {
	c.AssignedTo = assignee
	c.UpdatedAt = now
}

// DaysWithoutContact is floor((now - UpdatedAt) / 24h), never negative.
func (c *Case) DaysWithoutContact(now time.Time) int {
	d := int(now.Sub(c.UpdatedAt) / (24 * time.Hour))
	if d < 0 {
		return 0
	}
	return d
}
