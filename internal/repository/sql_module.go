package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
)

// SQLModuleRepo implements ModuleRepo over any DBTX.
type SQLModuleRepo struct {
	db db.DBTX
}

func NewSQLModuleRepo(conn db.DBTX) *SQLModuleRepo {
	return &SQLModuleRepo{db: conn}
}

const moduleColumns = `id, congregation_id, title, sort_order, active, created_at, updated_at`

func (r *SQLModuleRepo) Create(ctx context.Context, m *domain.Module) error {
	query := `INSERT INTO modules (` + moduleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.CongregationID,
		m.Title,
		m.SortOrder,
		boolToInt(m.Active),
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
	)
	if err != nil {
		return storeErr("inserting module", err)
	}
	return nil
}

func (r *SQLModuleRepo) GetByID(ctx context.Context, congregationID, id string) (*domain.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE id = ? AND congregation_id = ?`
	m, err := scanModule(r.db.QueryRowContext(ctx, query, id, congregationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("module %s: %w", id, ErrNotFound)
	}
	return m, err
}

func (r *SQLModuleRepo) List(ctx context.Context, congregationID string, activeOnly bool) ([]*domain.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE congregation_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY sort_order, title, id`

	rows, err := r.db.QueryContext(ctx, query, congregationID)
	if err != nil {
		return nil, storeErr("listing modules", err)
	}
	defer rows.Close()

	var modules []*domain.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating modules", err)
	}
	return modules, nil
}

func (r *SQLModuleRepo) Update(ctx context.Context, m *domain.Module) error {
	query := `UPDATE modules SET title = ?, sort_order = ?, active = ?, updated_at = ?
		WHERE id = ? AND congregation_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		m.Title, m.SortOrder, boolToInt(m.Active), formatTime(m.UpdatedAt), m.ID, m.CongregationID)
	if err != nil {
		return storeErr("updating module", err)
	}
	return expectOne(res, "module "+m.ID)
}

func scanModule(row scanner) (*domain.Module, error) {
	var m domain.Module
	var active int
	var createdAt, updatedAt string
	err := row.Scan(&m.ID, &m.CongregationID, &m.Title, &m.SortOrder, &active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storeErr("scanning module", err)
	}
	m.Active = intToBool(active)
	if m.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
