package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospector/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	id         TEXT PRIMARY KEY,
	companies  TEXT NOT NULL,
	context    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	persons    TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_discovery_runs_status ON discovery_runs(status);
CREATE INDEX IF NOT EXISTS idx_discovery_runs_created_at ON discovery_runs(created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, companies []model.Company, sc model.SearchContext) (*model.DiscoveryRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	companiesJSON, err := json.Marshal(companies)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal companies")
	}
	contextJSON, err := json.Marshal(sc)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal context")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO discovery_runs (id, companies, context, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(companiesJSON), string(contextJSON), string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.DiscoveryRun{
		ID:        id,
		Companies: companies,
		Context:   sc,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, persons []model.Person) error {
	personsJSON, err := json.Marshal(persons)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal persons")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE discovery_runs SET persons = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(personsJSON), string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE discovery_runs SET error = ?, status = ?, updated_at = ? WHERE id = ?`,
		errMsg, string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.DiscoveryRun, error) {
	var (
		r             model.DiscoveryRun
		companiesJSON string
		contextJSON   string
		personsJSON   sql.NullString
		errMsg        sql.NullString
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, companies, context, status, persons, error, created_at, updated_at FROM discovery_runs WHERE id = ?`,
		runID,
	).Scan(&r.ID, &companiesJSON, &contextJSON, &r.Status, &personsJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}

	if err := scanRunJSON(&r, companiesJSON, contextJSON, personsJSON, errMsg); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.DiscoveryRun, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, companies, context, status, persons, error, created_at, updated_at FROM discovery_runs`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.DiscoveryRun
	for rows.Next() {
		var (
			r             model.DiscoveryRun
			companiesJSON string
			contextJSON   string
			personsJSON   sql.NullString
			errMsg        sql.NullString
		)
		if err := rows.Scan(&r.ID, &companiesJSON, &contextJSON, &r.Status, &personsJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if err := scanRunJSON(&r, companiesJSON, contextJSON, personsJSON, errMsg); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// scanRunJSON decodes the JSON-typed columns shared by GetRun and ListRuns.
func scanRunJSON(r *model.DiscoveryRun, companiesJSON, contextJSON string, personsJSON, errMsg sql.NullString) error {
	if err := json.Unmarshal([]byte(companiesJSON), &r.Companies); err != nil {
		return eris.Wrap(err, "sqlite: unmarshal companies")
	}
	if err := json.Unmarshal([]byte(contextJSON), &r.Context); err != nil {
		return eris.Wrap(err, "sqlite: unmarshal context")
	}
	if personsJSON.Valid && personsJSON.String != "" {
		if err := json.Unmarshal([]byte(personsJSON.String), &r.Persons); err != nil {
			return eris.Wrap(err, "sqlite: unmarshal persons")
		}
	}
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	return nil
}

// checkRowsAffected converts a zero-row update into a not-found error.
func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}
