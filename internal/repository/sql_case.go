package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
)

// SQLCaseRepo implements CaseRepo over any DBTX.
type SQLCaseRepo struct {
	db db.DBTX
}

func NewSQLCaseRepo(conn db.DBTX) *SQLCaseRepo {
	return &SQLCaseRepo{db: conn}
}

const caseColumns = `c.id, c.member_id, c.congregation_id, c.phase, c.status, c.criticality,
	c.negative_contact_count, c.last_negative_contact_at, c.days_to_confra, c.assigned_to,
	c.confraternizacao_id, c.confraternizacao_confirmada, c.confraternizacao_confirmada_em,
	c.turno_origem, c.modulo_atual_id, c.created_at, c.updated_at`

func (r *SQLCaseRepo) Create(ctx context.Context, c *domain.Case) error {
	query := `INSERT INTO cases (id, member_id, congregation_id, phase, status, criticality,
		negative_contact_count, last_negative_contact_at, days_to_confra, assigned_to,
		confraternizacao_id, confraternizacao_confirmada, confraternizacao_confirmada_em,
		turno_origem, modulo_atual_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.MemberID,
		c.CongregationID,
		string(c.Phase),
		string(c.Status),
		string(c.Criticality),
		c.NegativeContactCount,
		nullableTimeToString(c.LastNegativeContactAt, timestampLayout),
		nullableIntToValue(c.DaysToConfra),
		c.AssignedTo,
		nullableString(c.ConfraternizacaoID),
		boolToInt(c.ConfraternizacaoConfirmada),
		nullableTimeToString(c.ConfraternizacaoConfirmadaEm, timestampLayout),
		c.TurnoOrigem,
		nullableString(c.ModuloAtualID),
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		return storeErr("inserting case", err)
	}
	return nil
}

func (r *SQLCaseRepo) GetByID(ctx context.Context, congregationID, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases c WHERE c.id = ? AND c.congregation_id = ?`
	c, err := scanCase(r.db.QueryRowContext(ctx, query, id, congregationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("case %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (r *SQLCaseRepo) List(ctx context.Context, congregationID string, f CaseFilter) ([]*domain.Case, error) {
	where, args := caseWhere(congregationID, f)
	query := `SELECT ` + caseColumns + ` FROM cases c WHERE ` + where + ` ORDER BY c.created_at, c.id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("listing cases", err)
	}
	defer rows.Close()

	var cases []*domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating cases", err)
	}
	return cases, nil
}

func (r *SQLCaseRepo) ListWithMembers(ctx context.Context, congregationID string, f CaseFilter) ([]CaseWithMember, error) {
	where, args := caseWhere(congregationID, f)
	query := `SELECT ` + caseColumns + `, m.name, m.origem
		FROM cases c
		JOIN members m ON m.id = c.member_id
		WHERE ` + where + ` ORDER BY c.created_at, c.id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("listing cases with members", err)
	}
	defer rows.Close()

	var out []CaseWithMember
	for rows.Next() {
		var name, origem string
		c, err := scanCase(rows, &name, &origem)
		if err != nil {
			return nil, err
		}
		out = append(out, CaseWithMember{Case: *c, MemberName: name, MemberOrigem: origem})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating cases with members", err)
	}
	return out, nil
}

// Update writes every mutable column in one statement, so derived fields and
// counters always land together.
func (r *SQLCaseRepo) Update(ctx context.Context, c *domain.Case) error {
	query := `UPDATE cases SET phase = ?, status = ?, criticality = ?,
		negative_contact_count = ?, last_negative_contact_at = ?, days_to_confra = ?,
		assigned_to = ?, confraternizacao_id = ?, confraternizacao_confirmada = ?,
		confraternizacao_confirmada_em = ?, turno_origem = ?, modulo_atual_id = ?, updated_at = ?
		WHERE id = ? AND congregation_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(c.Phase),
		string(c.Status),
		string(c.Criticality),
		c.NegativeContactCount,
		nullableTimeToString(c.LastNegativeContactAt, timestampLayout),
		nullableIntToValue(c.DaysToConfra),
		c.AssignedTo,
		nullableString(c.ConfraternizacaoID),
		boolToInt(c.ConfraternizacaoConfirmada),
		nullableTimeToString(c.ConfraternizacaoConfirmadaEm, timestampLayout),
		c.TurnoOrigem,
		nullableString(c.ModuloAtualID),
		formatTime(c.UpdatedAt),
		c.ID,
		c.CongregationID,
	)
	if err != nil {
		return storeErr("updating case", err)
	}
	return expectOne(res, "case "+c.ID)
}

func (r *SQLCaseRepo) Delete(ctx context.Context, congregationID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE id = ? AND congregation_id = ?`, id, congregationID)
	if err != nil {
		return storeErr("deleting case", err)
	}
	return expectOne(res, "case "+id)
}

func caseWhere(congregationID string, f CaseFilter) (string, []any) {
	clauses := []string{"c.congregation_id = ?"}
	args := []any{congregationID}
	if f.Phase != "" {
		clauses = append(clauses, "c.phase = ?")
		args = append(args, string(f.Phase))
	}
	if f.Status != "" {
		clauses = append(clauses, "c.status = ?")
		args = append(args, string(f.Status))
	}
	if f.AssignedTo != "" {
		clauses = append(clauses, "c.assigned_to = ?")
		args = append(args, f.AssignedTo)
	}
	return strings.Join(clauses, " AND "), args
}

// scanCase reads caseColumns followed by any extra destinations.
func scanCase(row scanner, extra ...any) (*domain.Case, error) {
	var c domain.Case
	var phase, status, criticality, createdAt, updatedAt string
	var lastNegative, confirmedAt, confraID, moduleID sql.NullString
	var days sql.NullInt64
	var confirmed int

	dest := []any{
		&c.ID, &c.MemberID, &c.CongregationID, &phase, &status, &criticality,
		&c.NegativeContactCount, &lastNegative, &days, &c.AssignedTo,
		&confraID, &confirmed, &confirmedAt,
		&c.TurnoOrigem, &moduleID, &createdAt, &updatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storeErr("scanning case", err)
	}

	c.Phase = domain.Phase(phase)
	c.Status = domain.CaseStatus(status)
	c.Criticality = domain.Criticality(criticality)
	c.LastNegativeContactAt = parseNullableTime(lastNegative, timestampLayout)
	c.DaysToConfra = nullableIntFromSQL(days)
	c.ConfraternizacaoID = confraID.String
	c.ConfraternizacaoConfirmada = intToBool(confirmed)
	c.ConfraternizacaoConfirmadaEm = parseNullableTime(confirmedAt, timestampLayout)
	c.ModuloAtualID = moduleID.String

	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
