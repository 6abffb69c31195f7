package repository

import (
	"context"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
)

// SQLAttemptRepo implements AttemptRepo. Attempts are append-only: there is
// no update or delete path other than the case cascade.
type SQLAttemptRepo struct {
	db db.DBTX
}

func NewSQLAttemptRepo(conn db.DBTX) *SQLAttemptRepo {
	return &SQLAttemptRepo{db: conn}
}

func (r *SQLAttemptRepo) Create(ctx context.Context, a *domain.ContactAttempt) error {
	query := `INSERT INTO contact_attempts (id, case_id, member_id, outcome, channel, notes, attempted_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.CaseID,
		a.MemberID,
		string(a.Outcome),
		string(a.Channel),
		a.Notes,
		a.AttemptedBy,
		formatTime(a.CreatedAt),
	)
	if err != nil {
		return storeErr("inserting contact attempt", err)
	}
	return nil
}

// ListByCase returns the case's attempts, newest first.
func (r *SQLAttemptRepo) ListByCase(ctx context.Context, congregationID, caseID string) ([]*domain.ContactAttempt, error) {
	query := `SELECT a.id, a.case_id, a.member_id, a.outcome, a.channel, a.notes, a.attempted_by, a.created_at
		FROM contact_attempts a
		JOIN cases c ON c.id = a.case_id
		WHERE a.case_id = ? AND c.congregation_id = ?
		ORDER BY a.created_at DESC, a.id DESC`
	rows, err := r.db.QueryContext(ctx, query, caseID, congregationID)
	if err != nil {
		return nil, storeErr("listing contact attempts", err)
	}
	defer rows.Close()

	var attempts []*domain.ContactAttempt
	for rows.Next() {
		var a domain.ContactAttempt
		var outcome, channel, createdAt string
		if err := rows.Scan(&a.ID, &a.CaseID, &a.MemberID, &outcome, &channel, &a.Notes, &a.AttemptedBy, &createdAt); err != nil {
			return nil, storeErr("scanning contact attempt", err)
		}
		a.Outcome = domain.Outcome(outcome)
		a.Channel = domain.Channel(channel)
		if a.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating contact attempts", err)
	}
	return attempts, nil
}
