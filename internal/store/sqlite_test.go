package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charter-stone/analyst-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func albright() model.Institution {
	return model.Institution{Name: "Albright College", EIN: "23-1352615"}
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, albright())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "Albright College", got.Institution.Name)
	assert.Nil(t, got.Result)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, albright())
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusScoring))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusScoring, got.Status)
}

func TestSQLite_UpdateRunStatus_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.UpdateRunStatus(context.Background(), "missing", model.RunStatusScoring)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, albright())
	require.NoError(t, err)

	score := 90
	result := &model.RunResult{
		DistressLevel:  model.DistressElevated,
		CompositeScore: &score,
		UrgencyFlag:    model.UrgencyImmediate,
		ProfileVersion: model.SchemaVersionV2,
	}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, model.DistressElevated, got.Result.DistressLevel)
	require.NotNil(t, got.Result.CompositeScore)
	assert.Equal(t, 90, *got.Result.CompositeScore)
}

func TestSQLite_UpdateRunResult_ErrorMarksFailed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, albright())
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunResult(ctx, run.ID, &model.RunResult{Error: "fetch filing: not found"}))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateRun(ctx, albright())
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, model.Institution{Name: "Other U", EIN: "111111111"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, r1.ID, model.RunStatusComplete))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, r1.ID, complete[0].ID)

	byEIN, err := st.ListRuns(ctx, RunFilter{EIN: "23-1352615"})
	require.NoError(t, err)
	require.Len(t, byEIN, 1)
	assert.Equal(t, "Albright College", byEIN[0].Institution.Name)
}

func TestSQLite_SaveAndGetLatestProfile(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, albright())
	require.NoError(t, err)

	p1 := &model.Profile{
		Meta:        model.Meta{SchemaVersion: model.SchemaVersionV1},
		Institution: model.InstitutionRecord{Name: "Albright College", EIN: "23-1352615"},
		Signals:     model.ProfileSignals{DistressLevel: model.DistressElevated},
	}
	require.NoError(t, st.SaveProfile(ctx, run.ID, p1))

	p2 := p1.Clone()
	p2.ProfileVersion = model.SchemaVersionV2
	require.NoError(t, st.SaveProfile(ctx, run.ID, p2))

	got, err := st.GetLatestProfile(ctx, "231352615")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.SchemaVersionV2, got.ProfileVersion)
	assert.Equal(t, model.DistressElevated, got.Signals.DistressLevel)
}

func TestSQLite_GetLatestProfile_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)
	got, err := st.GetLatestProfile(context.Background(), "999999999")
	require.NoError(t, err)
	assert.Nil(t, got)
}
