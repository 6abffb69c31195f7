package testutil

import (
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/google/uuid"
)

// fixtureNow is truncated to the second so values survive an RFC3339
// round trip through the store unchanged.
func fixtureNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Member options
type MemberOption func(*domain.Member)

func WithOrigem(o string) MemberOption {
	return func(m *domain.Member) {
		m.Origem = o
	}
}

func WithPhone(p string) MemberOption {
	return func(m *domain.Member) {
		m.Phone = p
	}
}

func NewTestMember(congregationID, name string, opts ...MemberOption) *domain.Member {
	now := fixtureNow()
	m := &domain.Member{
		ID:             uuid.New().String(),
		CongregationID: congregationID,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Case options
type CaseOption func(*domain.Case)

func WithPhase(p domain.Phase) CaseOption {
	return func(c *domain.Case) {
		c.Phase = p
	}
}

func WithCaseStatus(s domain.CaseStatus) CaseOption {
	return func(c *domain.Case) {
		c.Status = s
	}
}

func WithCriticality(cr domain.Criticality) CaseOption {
	return func(c *domain.Case) {
		c.Criticality = cr
	}
}

func WithNegativeContacts(n int) CaseOption {
	return func(c *domain.Case) {
		c.NegativeContactCount = n
	}
}

func WithDaysToConfra(d int) CaseOption {
	return func(c *domain.Case) {
		c.DaysToConfra = &d
	}
}

func WithConfra(eventID string) CaseOption {
	return func(c *domain.Case) {
		c.ConfraternizacaoID = eventID
	}
}

func WithConfirmed(eventID string) CaseOption {
	return func(c *domain.Case) {
		at := c.UpdatedAt
		c.ConfraternizacaoID = eventID
		c.ConfraternizacaoConfirmada = true
		c.ConfraternizacaoConfirmadaEm = &at
	}
}

func WithTurnoOrigem(t string) CaseOption {
	return func(c *domain.Case) {
		c.TurnoOrigem = t
	}
}

func WithAssignee(a string) CaseOption {
	return func(c *domain.Case) {
		c.AssignedTo = a
	}
}

func WithCurrentModule(moduleID string) CaseOption {
	return func(c *domain.Case) {
		c.ModuloAtualID = moduleID
	}
}

func WithCaseUpdatedAt(t time.Time) CaseOption {
	return func(c *domain.Case) {
		c.UpdatedAt = t
	}
}

func NewTestCase(congregationID, memberID string, opts ...CaseOption) *domain.Case {
	c := domain.NewCase(uuid.New().String(), congregationID, memberID, fixtureNow())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Module options
type ModuleOption func(*domain.Module)

func WithSortOrder(n int) ModuleOption {
	return func(m *domain.Module) {
		m.SortOrder = n
	}
}

func WithInactive() ModuleOption {
	return func(m *domain.Module) {
		m.Active = false
	}
}

func NewTestModule(congregationID, title string, opts ...ModuleOption) *domain.Module {
	now := fixtureNow()
	m := &domain.Module{
		ID:             uuid.New().String(),
		CongregationID: congregationID,
		Title:          title,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Progress options
type ProgressOption func(*domain.ModuleProgress)

func WithProgressStatus(s domain.ProgressStatus) ProgressOption {
	return func(p *domain.ModuleProgress) {
		p.Status = s
		if s == domain.ProgressConcluido {
			at := p.UpdatedAt
			p.CompletedAt = &at
			p.CompletedBy = "fixture"
		}
	}
}

func WithTurno(t string) ProgressOption {
	return func(p *domain.ModuleProgress) {
		p.Turno = t
	}
}

func NewTestProgress(caseID, moduleID string, opts ...ProgressOption) *domain.ModuleProgress {
	now := fixtureNow()
	p := &domain.ModuleProgress{
		ID:        uuid.New().String(),
		CaseID:    caseID,
		ModuleID:  moduleID,
		Status:    domain.ProgressNaoIniciado,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Confraternização options
type EventOption func(*domain.Confraternizacao)

func WithActive() EventOption {
	return func(e *domain.Confraternizacao) {
		e.Active = true
	}
}

// NewTestEvent creates a confraternização on the given calendar date.
func NewTestEvent(congregationID, title string, date time.Time, opts ...EventOption) *domain.Confraternizacao {
	now := fixtureNow()
	y, mo, d := date.Date()
	e := &domain.Confraternizacao{
		ID:             uuid.New().String(),
		CongregationID: congregationID,
		Title:          title,
		EventDate:      time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
