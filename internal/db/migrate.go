package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// migration is one schema version. Statements run in order inside a single
// transaction together with the version bump.
type migration struct {
	version    int
	statements []string
}

// SchemaVersion is the version a freshly migrated store reports.
func SchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate brings the schema up to date. It runs once at startup; the applied
// version is recorded in schema_version so later opens skip finished steps.
func Migrate(db *sql.DB, dialect Dialect) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER NOT NULL,
		applied_at TEXT NOT NULL DEFAULT ''
	)`); err != nil {
		return fmt.Errorf("creating schema_version: %w", err)
	}

	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return err
	}

	uow := NewUnitOfWork(db, dialect)
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
			for i, stmt := range m.statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("statement %d: %w", i, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
				return fmt.Errorf("clearing schema_version: %w", err)
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_version (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)`, m.version)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}

// CurrentVersion returns the recorded schema version, 0 for an empty store.
func CurrentVersion(ctx context.Context, db DBTX) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema_version: %w", err)
	}
	return v, nil
}

var migrations = []migration{
	{version: 1, statements: []string{
		`CREATE TABLE IF NOT EXISTS members (
			id              TEXT PRIMARY KEY,
			congregation_id TEXT NOT NULL,
			name            TEXT NOT NULL,
			phone           TEXT NOT NULL DEFAULT '',
			origem          TEXT NOT NULL DEFAULT '',
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_members_congregation ON members(congregation_id)`,

		`CREATE TABLE IF NOT EXISTS confraternizacoes (
			id              TEXT PRIMARY KEY,
			congregation_id TEXT NOT NULL,
			title           TEXT NOT NULL,
			event_date      TEXT NOT NULL,
			active          INTEGER NOT NULL DEFAULT 0,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_confra_congregation_date ON confraternizacoes(congregation_id, event_date)`,

		`CREATE TABLE IF NOT EXISTS modules (
			id              TEXT PRIMARY KEY,
			congregation_id TEXT NOT NULL,
			title           TEXT NOT NULL,
			sort_order      INTEGER NOT NULL DEFAULT 0,
			active          INTEGER NOT NULL DEFAULT 1,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_modules_congregation ON modules(congregation_id, sort_order)`,

		`CREATE TABLE IF NOT EXISTS cases (
			id                             TEXT PRIMARY KEY,
			member_id                      TEXT NOT NULL REFERENCES members(id),
			congregation_id                TEXT NOT NULL,
			phase                          TEXT NOT NULL DEFAULT 'ACOLHIMENTO'
			                               CHECK(phase IN ('ACOLHIMENTO','DISCIPULADO','POS_DISCIPULADO')),
			status                         TEXT NOT NULL DEFAULT 'pendente_matricula'
			                               CHECK(status IN ('pendente_matricula','em_discipulado','pausado','concluido')),
			criticality                    TEXT NOT NULL DEFAULT 'BAIXA'
			                               CHECK(criticality IN ('BAIXA','MEDIA','ALTA','CRITICA')),
			negative_contact_count         INTEGER NOT NULL DEFAULT 0 CHECK(negative_contact_count >= 0),
			last_negative_contact_at       TEXT,
			days_to_confra                 INTEGER,
			assigned_to                    TEXT NOT NULL DEFAULT '',
			confraternizacao_id            TEXT REFERENCES confraternizacoes(id) ON DELETE SET NULL,
			confraternizacao_confirmada    INTEGER NOT NULL DEFAULT 0,
			confraternizacao_confirmada_em TEXT,
			turno_origem                   TEXT NOT NULL DEFAULT '',
			modulo_atual_id                TEXT REFERENCES modules(id),
			created_at                     TEXT NOT NULL,
			updated_at                     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_congregation_phase ON cases(congregation_id, phase)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_congregation_status ON cases(congregation_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_member ON cases(member_id)`,

		`CREATE TABLE IF NOT EXISTS contact_attempts (
			id           TEXT PRIMARY KEY,
			case_id      TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
			member_id    TEXT NOT NULL,
			outcome      TEXT NOT NULL
			             CHECK(outcome IN ('no_answer','wrong_number','refused','sem_resposta','contacted','scheduled_visit')),
			channel      TEXT NOT NULL DEFAULT 'outro'
			             CHECK(channel IN ('whatsapp','ligacao','visita','outro')),
			notes        TEXT NOT NULL DEFAULT '',
			attempted_by TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_case ON contact_attempts(case_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS module_progress (
			id           TEXT PRIMARY KEY,
			case_id      TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
			module_id    TEXT NOT NULL REFERENCES modules(id),
			status       TEXT NOT NULL DEFAULT 'nao_iniciado'
			             CHECK(status IN ('nao_iniciado','em_andamento','concluido')),
			completed_at TEXT,
			completed_by TEXT NOT NULL DEFAULT '',
			notes        TEXT NOT NULL DEFAULT '',
			turno        TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL,
			UNIQUE(case_id, module_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_case ON module_progress(case_id)`,
	}},
}
