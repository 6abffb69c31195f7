package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
)

// SQLMemberRepo implements MemberRepo over any DBTX.
type SQLMemberRepo struct {
	db db.DBTX
}

func NewSQLMemberRepo(conn db.DBTX) *SQLMemberRepo {
	return &SQLMemberRepo{db: conn}
}

const memberColumns = `id, congregation_id, name, phone, origem, created_at, updated_at`

func (r *SQLMemberRepo) Create(ctx context.Context, m *domain.Member) error {
	query := `INSERT INTO members (` + memberColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.CongregationID,
		m.Name,
		m.Phone,
		m.Origem,
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
	)
	if err != nil {
		return storeErr("inserting member", err)
	}
	return nil
}

func (r *SQLMemberRepo) GetByID(ctx context.Context, congregationID, id string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = ? AND congregation_id = ?`
	m, err := scanMember(r.db.QueryRowContext(ctx, query, id, congregationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", id, ErrNotFound)
	}
	return m, err
}

func (r *SQLMemberRepo) List(ctx context.Context, congregationID string) ([]*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE congregation_id = ? ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query, congregationID)
	if err != nil {
		return nil, storeErr("listing members", err)
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating members", err)
	}
	return members, nil
}

func scanMember(row scanner) (*domain.Member, error) {
	var m domain.Member
	var createdAt, updatedAt string
	err := row.Scan(&m.ID, &m.CongregationID, &m.Name, &m.Phone, &m.Origem, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storeErr("scanning member", err)
	}
	if m.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
