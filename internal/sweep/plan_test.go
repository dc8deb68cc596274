package sweep

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cicverify/internal/golden"
)

func TestLoadPlan_YAML(t *testing.T) {
	plan, err := LoadPlan(filepath.Join("testdata", "plans", "orders.yaml"))
	require.NoError(t, err)

	assert.Equal(t, &Plan{
		Name:     "orders",
		Scenario: "impulse",
		Top:      "cic_decimator",
		Workdir:  filepath.Join("..", "deps", "testdata", "work"),
		OutDir:   filepath.Join("testdata", "plans", "out"),
		Ranges:   []Range{{Name: GenericOrder, From: 1, To: 4}},
		Fixed:    golden.Params{TapDelay: 1, Ratio: 4},
		Parallel: 2,
	}, plan)

	jobs, err := Jobs(plan)
	require.NoError(t, err)
	require.Len(t, jobs, 4)
	assert.Equal(t, filepath.Join(plan.OutDir, "job-0003"), jobs[3].Dir)
	assert.Equal(t, 4, jobs[3].Params.Order)
	assert.Equal(t, plan.Workdir, jobs[3].SourceDir)
}

func TestLoadPlan_CUE(t *testing.T) {
	plan, err := LoadPlan(filepath.Join("testdata", "plans", "grid.cue"))
	require.NoError(t, err)

	assert.Equal(t, "grid", plan.Name)
	assert.Equal(t, "step", plan.Scenario)
	assert.Equal(t, filepath.Join("testdata", "plans", "build"), plan.OutDir)
	assert.Equal(t, 0, plan.Parallel)
	assert.Equal(t, uint64(20000), plan.MaxTime)
	assert.Equal(t, golden.Params{Order: 3, TapDelay: 2}, plan.Fixed)
	assert.Equal(t, []Range{
		{Name: GenericRatio, Values: []int{2, 8, 4}},
		{Name: GenericCompensate, From: 0, To: 1},
	}, plan.Ranges)

	jobs, err := Jobs(plan)
	require.NoError(t, err)
	require.Len(t, jobs, 6)
	assert.Equal(t, "decimationRatio=8 compensate=1", jobs[5].Combination.String())
	assert.True(t, jobs[5].Params.Compensate)
	assert.Equal(t, filepath.Join(plan.OutDir, "build"), jobs[5].Dir)
}

func TestLoadPlan_Errors(t *testing.T) {
	tests := []struct {
		file string
	}{
		{"bad_ratio.cue"},
		{"unknown_field.yaml"},
		{"pdm_no_input.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadPlan(filepath.Join("testdata", "plans", tt.file))
			require.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestLoadPlan_UnsupportedFormat(t *testing.T) {
	_, err := LoadPlan(filepath.Join("..", "deps", "testdata", "work", "notes.txt"))
	require.ErrorIs(t, err, ErrInvalidPlan)
}

func TestLoadPlan_Missing(t *testing.T) {
	_, err := LoadPlan(filepath.Join("testdata", "plans", "absent.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidPlan)
}
