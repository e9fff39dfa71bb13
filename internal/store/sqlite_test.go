package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "prospector.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx,
		[]model.Company{{ID: "acme", Name: "Acme", Domain: "acme.com"}},
		model.SearchContext{TargetRoles: []string{"VP Sales"}, TargetSeniority: "director"},
	)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	require.Len(t, got.Companies, 1)
	assert.Equal(t, "acme.com", got.Companies[0].Domain)
	assert.Equal(t, "director", got.Context.TargetSeniority)
	assert.Empty(t, got.Persons)

	persons := []model.Person{
		{ID: "p1", Name: "Jane Doe", CompanyID: "acme", Title: "VP Sales", Seniority: model.SeniorityExecutive},
		{ID: "p2", Name: "John Roe", CompanyID: "acme", Title: "Account Manager", Seniority: model.SeniorityManager},
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, persons))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.Len(t, got.Persons, 2)
	assert.Equal(t, "Jane Doe", got.Persons[0].Name)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestSQLiteStore_FailRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []model.Company{{ID: "acme"}}, model.SearchContext{})
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, "all providers unavailable"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "all providers unavailable", got.Error)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")

	err = s.CompleteRun(ctx, "missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")

	err = s.FailRun(ctx, "missing", "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, []model.Company{{ID: "acme"}}, model.SearchContext{})
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, []model.Company{{ID: "globex"}}, model.SearchContext{})
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, first.ID, "timeout"))

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, first.ID, failed[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
