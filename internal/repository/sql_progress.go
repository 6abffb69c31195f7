package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
)

// SQLProgressRepo implements ProgressRepo. Rows are scoped to a congregation
// through their case.
type SQLProgressRepo struct {
	db db.DBTX
}

func NewSQLProgressRepo(conn db.DBTX) *SQLProgressRepo {
	return &SQLProgressRepo{db: conn}
}

const progressColumns = `p.id, p.case_id, p.module_id, p.status, p.completed_at, p.completed_by,
	p.notes, p.turno, p.created_at, p.updated_at`

const progressFrom = ` FROM module_progress p JOIN cases c ON c.id = p.case_id `

// Create fails with domain.ErrDuplicateEnrollment when the case is already
// enrolled in the module.
func (r *SQLProgressRepo) Create(ctx context.Context, p *domain.ModuleProgress) error {
	query := `INSERT INTO module_progress (id, case_id, module_id, status, completed_at, completed_by,
		notes, turno, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.CaseID,
		p.ModuleID,
		string(p.Status),
		nullableTimeToString(p.CompletedAt, timestampLayout),
		p.CompletedBy,
		p.Notes,
		p.Turno,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("case %s module %s: %w", p.CaseID, p.ModuleID, domain.ErrDuplicateEnrollment)
		}
		return storeErr("inserting module progress", err)
	}
	return nil
}

func (r *SQLProgressRepo) GetByID(ctx context.Context, congregationID, id string) (*domain.ModuleProgress, error) {
	query := `SELECT ` + progressColumns + progressFrom + `WHERE p.id = ? AND c.congregation_id = ?`
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, id, congregationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("module progress %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (r *SQLProgressRepo) GetByCaseModule(ctx context.Context, congregationID, caseID, moduleID string) (*domain.ModuleProgress, error) {
	query := `SELECT ` + progressColumns + progressFrom +
		`WHERE p.case_id = ? AND p.module_id = ? AND c.congregation_id = ?`
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, caseID, moduleID, congregationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("module progress for case %s module %s: %w", caseID, moduleID, ErrNotFound)
	}
	return p, err
}

func (r *SQLProgressRepo) ListByCase(ctx context.Context, congregationID, caseID string) ([]*domain.ModuleProgress, error) {
	query := `SELECT ` + progressColumns + progressFrom +
		`LEFT JOIN modules m ON m.id = p.module_id
		WHERE p.case_id = ? AND c.congregation_id = ?
		ORDER BY m.sort_order, p.created_at, p.id`
	return r.list(ctx, query, caseID, congregationID)
}

func (r *SQLProgressRepo) ListByCongregation(ctx context.Context, congregationID string) ([]*domain.ModuleProgress, error) {
	query := `SELECT ` + progressColumns + progressFrom +
		`WHERE c.congregation_id = ? ORDER BY p.case_id, p.created_at, p.id`
	return r.list(ctx, query, congregationID)
}

func (r *SQLProgressRepo) Update(ctx context.Context, p *domain.ModuleProgress) error {
	query := `UPDATE module_progress SET status = ?, completed_at = ?, completed_by = ?, notes = ?, turno = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(p.Status),
		nullableTimeToString(p.CompletedAt, timestampLayout),
		p.CompletedBy,
		p.Notes,
		p.Turno,
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return storeErr("updating module progress", err)
	}
	return expectOne(res, "module progress "+p.ID)
}

func (r *SQLProgressRepo) list(ctx context.Context, query string, args ...any) ([]*domain.ModuleProgress, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("listing module progress", err)
	}
	defer rows.Close()

	var out []*domain.ModuleProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating module progress", err)
	}
	return out, nil
}

func scanProgress(row scanner) (*domain.ModuleProgress, error) {
	var p domain.ModuleProgress
	var status, createdAt, updatedAt string
	var completedAt sql.NullString
	err := row.Scan(&p.ID, &p.CaseID, &p.ModuleID, &status, &completedAt, &p.CompletedBy,
		&p.Notes, &p.Turno, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storeErr("scanning module progress", err)
	}
	p.Status = domain.ProgressStatus(status)
	p.CompletedAt = parseNullableTime(completedAt, timestampLayout)
	if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
