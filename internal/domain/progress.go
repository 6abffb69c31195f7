package domain

import (
	"fmt"
	"math"
	"time"
)

// Module is a discipleship curriculum unit owned by a congregation.
type Module struct {
	ID             string
	CongregationID string
	Title          string
	SortOrder      int
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ModuleProgress is a case's enrollment in one module. At most one row exists
// per (CaseID, ModuleID).
type ModuleProgress struct {
	ID          string
	CaseID      string
	ModuleID    string
	Status      ProgressStatus
	CompletedAt *time.Time
	CompletedBy string
	Notes       string
	Turno       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewModuleProgress builds an enrollment row, stamping completion when the
// initial status is already concluido.
func NewModuleProgress(id, caseID, moduleID string, status ProgressStatus, turno, actor string, now time.Time) (*ModuleProgress, error) {
	if status == "" {
		status = ProgressNaoIniciado
	}
	if !status.Valid() {
		return nil, fmt.Errorf("enroll: status %q: %w", status, ErrInvalidValue)
	}
	p := &ModuleProgress{
		ID:        id,
		CaseID:    caseID,
		ModuleID:  moduleID,
		Status:    status,
		Turno:     turno,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == ProgressConcluido {
		p.CompletedAt = &now
		p.CompletedBy = actor
	}
	return p, nil
}

// SetStatus moves the row to status and keeps completion metadata
// consistent: entering concluido stamps now+actor, leaving it clears both.
func (p *ModuleProgress) SetStatus(status ProgressStatus, actor string, now time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("set module status: %q: %w", status, ErrInvalidValue)
	}
	if status == p.Status {
		return nil
	}
	switch {
	case status == ProgressConcluido:
		p.CompletedAt = &now
		p.CompletedBy = actor
	case p.Status == ProgressConcluido:
		p.CompletedAt = nil
		p.CompletedBy = ""
	}
	p.Status = status
	p.UpdatedAt = now
	return nil
}

// ProgressSummary is the per-case aggregate, computed at read time only.
type ProgressSummary struct {
	Total   int
	Done    int
	Percent int
}

// Complete reports whether the case may be concluded.
func (s ProgressSummary) Complete() bool {
	return s.Total > 0 && s.Done == s.Total
}

// Summarize aggregates a case's progress rows.
func Summarize(rows []*ModuleProgress) ProgressSummary {
	s := ProgressSummary{Total: len(rows)}
	for _, r := range rows {
		if r.Status == ProgressConcluido {
			s.Done++
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Round(100 * float64(s.Done) / float64(s.Total)))
	}
	return s
}
