//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/charter-stone/analyst-cli/internal/model"
)

func testCohort() []model.Institution {
	return []model.Institution{
		{Name: "Albright College", EIN: "231352615"},
		{Name: "Keystone College", EIN: "240795473"},
		{Name: "Cabrini University", EIN: "231352200"},
	}
}

func TestProcessCohort_AllSucceed(t *testing.T) {
	summary := processCohort(context.Background(), testCohort(), 0, 2, func(_ context.Context, inst model.Institution) (*model.RunResult, error) {
		return &model.RunResult{DistressLevel: model.DistressWatch}, nil
	})

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, "Albright College", summary.Results[0].Institution)
	assert.Equal(t, "watch", summary.Results[0].DistressLevel)
}

func TestProcessCohort_FailuresDoNotHalt(t *testing.T) {
	summary := processCohort(context.Background(), testCohort(), 0, 1, func(_ context.Context, inst model.Institution) (*model.RunResult, error) {
		if inst.Name == "Keystone College" {
			return nil, eris.New("filing fetch failed")
		}
		score := 90
		return &model.RunResult{
			DistressLevel:  model.DistressCritical,
			CompositeScore: &score,
			UrgencyFlag:    model.UrgencyImmediate,
		}, nil
	})

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Results[1].Error, "filing fetch failed")
	assert.Empty(t, summary.Results[1].DistressLevel)
	require.NotNil(t, summary.Results[2].CompositeScore)
	assert.Equal(t, 90, *summary.Results[2].CompositeScore)
	assert.Equal(t, "IMMEDIATE", summary.Results[2].UrgencyFlag)
}

func TestProcessCohort_LimitApplied(t *testing.T) {
	var calls int
	summary := processCohort(context.Background(), testCohort(), 2, 1, func(_ context.Context, _ model.Institution) (*model.RunResult, error) {
		calls++
		return &model.RunResult{DistressLevel: model.DistressStable}, nil
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, summary.Total)
}

func TestProcessCohort_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var launched int
	summary := processCohort(ctx, testCohort(), 0, 2, func(_ context.Context, _ model.Institution) (*model.RunResult, error) {
		launched++
		return &model.RunResult{DistressLevel: model.DistressStable}, nil
	})

	assert.Equal(t, 0, launched)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 3, summary.Skipped)
	for _, outcome := range summary.Results {
		assert.True(t, outcome.Skipped)
		assert.Empty(t, outcome.Error)
	}
}

func TestProcessCohort_CancelStopsLaunchingOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var launched []string
	summary := processCohort(ctx, testCohort(), 0, 1, func(runCtx context.Context, inst model.Institution) (*model.RunResult, error) {
		launched = append(launched, inst.Name)
		// Cancelling mid-institution must not abort this analysis.
		cancel()
		assert.NoError(t, runCtx.Err())
		return &model.RunResult{DistressLevel: model.DistressWatch}, nil
	})

	assert.Equal(t, []string{"Albright College"}, launched)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, "watch", summary.Results[0].DistressLevel)
	assert.True(t, summary.Results[1].Skipped)
	assert.True(t, summary.Results[2].Skipped)
}

func TestWriteSummary(t *testing.T) {
	score := 75
	summary := &batchSummary{
		Total:     2,
		Succeeded: 1,
		Failed:    1,
		Results: []batchOutcome{
			{Institution: "Albright College", EIN: "231352615", DistressLevel: "elevated", CompositeScore: &score, UrgencyFlag: "HIGH"},
			{Institution: "Keystone College", EIN: "240795473", Error: "filing fetch failed"},
		},
	}

	path := filepath.Join(t.TempDir(), "summary.yaml")
	require.NoError(t, writeSummary(path, summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded batchSummary
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.Total)
	assert.Equal(t, 1, decoded.Failed)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "elevated", decoded.Results[0].DistressLevel)
	require.NotNil(t, decoded.Results[0].CompositeScore)
	assert.Equal(t, 75, *decoded.Results[0].CompositeScore)
	assert.Equal(t, "filing fetch failed", decoded.Results[1].Error)
}
