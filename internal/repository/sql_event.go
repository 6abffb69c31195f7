package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
)

// SQLEventRepo implements EventRepo for confraternizações.
type SQLEventRepo struct {
	db db.DBTX
}

func NewSQLEventRepo(conn db.DBTX) *SQLEventRepo {
	return &SQLEventRepo{db: conn}
}

const eventColumns = `id, congregation_id, title, event_date, active, created_at, updated_at`

func (r *SQLEventRepo) Create(ctx context.Context, e *domain.Confraternizacao) error {
	query := `INSERT INTO confraternizacoes (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.CongregationID,
		e.Title,
		e.EventDate.Format(dateLayout),
		boolToInt(e.Active),
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
	)
	if err != nil {
		return storeErr("inserting confraternizacao", err)
	}
	return nil
}

func (r *SQLEventRepo) GetByID(ctx context.Context, congregationID, id string) (*domain.Confraternizacao, error) {
	query := `SELECT ` + eventColumns + ` FROM confraternizacoes WHERE id = ? AND congregation_id = ?`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id, congregationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("confraternizacao %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (r *SQLEventRepo) List(ctx context.Context, congregationID string) ([]*domain.Confraternizacao, error) {
	query := `SELECT ` + eventColumns + ` FROM confraternizacoes WHERE congregation_id = ? ORDER BY event_date DESC, id`
	rows, err := r.db.QueryContext(ctx, query, congregationID)
	if err != nil {
		return nil, storeErr("listing confraternizacoes", err)
	}
	defer rows.Close()

	var events []*domain.Confraternizacao
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating confraternizacoes", err)
	}
	return events, nil
}

func (r *SQLEventRepo) Active(ctx context.Context, congregationID string, today time.Time) (*domain.Confraternizacao, error) {
	query := `SELECT ` + eventColumns + ` FROM confraternizacoes
		WHERE congregation_id = ? AND (active = 1 OR event_date >= ?)
		ORDER BY active DESC, event_date ASC, id ASC
		LIMIT 1`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, congregationID, today.Format(dateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active confraternizacao: %w", ErrNotFound)
	}
	return e, err
}

func (r *SQLEventRepo) Update(ctx context.Context, e *domain.Confraternizacao) error {
	query := `UPDATE confraternizacoes SET title = ?, event_date = ?, active = ?, updated_at = ?
		WHERE id = ? AND congregation_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.Title, e.EventDate.Format(dateLayout), boolToInt(e.Active), formatTime(e.UpdatedAt), e.ID, e.CongregationID)
	if err != nil {
		return storeErr("updating confraternizacao", err)
	}
	return expectOne(res, "confraternizacao "+e.ID)
}

func (r *SQLEventRepo) DeactivateAll(ctx context.Context, congregationID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE confraternizacoes SET active = 0, updated_at = ? WHERE congregation_id = ? AND active = 1`,
		formatTime(now), congregationID)
	if err != nil {
		return storeErr("deactivating confraternizacoes", err)
	}
	return nil
}

func scanEvent(row scanner) (*domain.Confraternizacao, error) {
	var e domain.Confraternizacao
	var eventDate, createdAt, updatedAt string
	var active int
	err := row.Scan(&e.ID, &e.CongregationID, &e.Title, &eventDate, &active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storeErr("scanning confraternizacao", err)
	}
	e.Active = intToBool(active)
	if e.EventDate, err = time.Parse(dateLayout, eventDate); err != nil {
		return nil, fmt.Errorf("parsing event_date: %w", err)
	}
	if e.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
