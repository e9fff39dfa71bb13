package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO discovery_runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(),
		[]model.Company{{ID: "acme", Name: "Acme"}},
		model.SearchContext{TargetSeniority: "director"},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE discovery_runs SET persons`).
		WithArgs(pgxmock.AnyArg(), "complete", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", []model.Person{{ID: "p1", Name: "Jane"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE discovery_runs SET persons`).
		WithArgs(pgxmock.AnyArg(), "complete", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, companies, context, status, persons, error, created_at, updated_at FROM discovery_runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	run, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Nil(t, run)
	assert.Contains(t, err.Error(), "run not found")
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	companies, _ := json.Marshal([]model.Company{{ID: "acme", Name: "Acme"}})
	sc, _ := json.Marshal(model.SearchContext{TargetSeniority: "any"})
	persons, _ := json.Marshal([]model.Person{{ID: "p1", Name: "Jane", CompanyID: "acme"}})
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, companies, context, status, persons, error, created_at, updated_at FROM discovery_runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "companies", "context", "status", "persons", "error", "created_at", "updated_at"}).
			AddRow("run-1", companies, sc, model.RunStatusComplete, persons, (*string)(nil), now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.Len(t, run.Persons, 1)
	assert.Equal(t, "Jane", run.Persons[0].Name)
	assert.Empty(t, run.Error)
}

func TestPostgresStore_ListRuns_StatusFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	companies, _ := json.Marshal([]model.Company{{ID: "acme"}})
	sc, _ := json.Marshal(model.SearchContext{})
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, companies, context, status, persons, error, created_at, updated_at FROM discovery_runs WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("failed", 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "companies", "context", "status", "persons", "error", "created_at", "updated_at"}).
			AddRow("run-2", companies, sc, model.RunStatusFailed, []byte(nil), strPtr("apollo down"), now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "apollo down", runs[0].Error)
}

func strPtr(s string) *string { return &s }
