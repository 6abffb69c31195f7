package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
)

// Every query is scoped by congregation id. A row that exists in another
// congregation is reported as ErrNotFound.

// CaseFilter narrows case listings. Zero values match everything.
type CaseFilter struct {
	Phase      domain.Phase
	Status     domain.CaseStatus
	AssignedTo string
}

// CaseWithMember is a case joined with the member fields the queue views show.
type CaseWithMember struct {
	Case         domain.Case
	MemberName   string
	MemberOrigem string
}

type MemberRepo interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByID(ctx context.Context, congregationID, id string) (*domain.Member, error)
	List(ctx context.Context, congregationID string) ([]*domain.Member, error)
}

type CaseRepo interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, congregationID, id string) (*domain.Case, error)
	List(ctx context.Context, congregationID string, f CaseFilter) ([]*domain.Case, error)
	ListWithMembers(ctx context.Context, congregationID string, f CaseFilter) ([]CaseWithMember, error)
	Update(ctx context.Context, c *domain.Case) error
	Delete(ctx context.Context, congregationID, id string) error
}

type AttemptRepo interface {
	Create(ctx context.Context, a *domain.ContactAttempt) error
	ListByCase(ctx context.Context, congregationID, caseID string) ([]*domain.ContactAttempt, error)
}

type ModuleRepo interface {
	Create(ctx context.Context, m *domain.Module) error
	GetByID(ctx context.Context, congregationID, id string) (*domain.Module, error)
	List(ctx context.Context, congregationID string, activeOnly bool) ([]*domain.Module, error)
	Update(ctx context.Context, m *domain.Module) error
}

type ProgressRepo interface {
	Create(ctx context.Context, p *domain.ModuleProgress) error
	GetByID(ctx context.Context, congregationID, id string) (*domain.ModuleProgress, error)
	GetByCaseModule(ctx context.Context, congregationID, caseID, moduleID string) (*domain.ModuleProgress, error)
	ListByCase(ctx context.Context, congregationID, caseID string) ([]*domain.ModuleProgress, error)
	ListByCongregation(ctx context.Context, congregationID string) ([]*domain.ModuleProgress, error)
	Update(ctx context.Context, p *domain.ModuleProgress) error
}

type EventRepo interface {
	Create(ctx context.Context, e *domain.Confraternizacao) error
	GetByID(ctx context.Context, congregationID, id string) (*domain.Confraternizacao, error)
	List(ctx context.Context, congregationID string) ([]*domain.Confraternizacao, error)
	// Active returns the active confraternização, or else the nearest one
	// dated on or after today.
	Active(ctx context.Context, congregationID string, today time.Time) (*domain.Confraternizacao, error)
	Update(ctx context.Context, e *domain.Confraternizacao) error
	DeactivateAll(ctx context.Context, congregationID string, now time.Time) error
}
