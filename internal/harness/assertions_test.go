package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cicverify/internal/golden"
)

var referenceResponse = &golden.Response{Impulse: 12, StepNearOrigin: 32, StepFinal: 64}

func TestCheckImpulse(t *testing.T) {
	tests := []struct {
		name    string
		samples []int64
		want    []*AssertionError
	}{
		{name: "aligned", samples: []int64{1, 12, 3, 0}},
		{name: "leading_zeros", samples: []int64{0, 0, 1, 12, 3}},
		{
			name:    "wrong_peak",
			samples: []int64{1, 11, 3},
			want: []*AssertionError{
				{Scenario: "impulse", Check: "impulse response", Index: 1, Expected: 12, Actual: 11},
			},
		},
		{
			name:    "wrong_unit_sample",
			samples: []int64{0, 2, 12},
			want: []*AssertionError{
				{Scenario: "impulse", Check: "unit sample", Index: 1, Expected: 1, Actual: 2},
			},
		},
		{
			name:    "truncated",
			samples: []int64{0, 1},
			want: []*AssertionError{
				{Scenario: "impulse", Check: "impulse response (missing)", Index: 2, Expected: 12, Actual: 2},
			},
		},
		{
			name:    "silent",
			samples: []int64{0, 0, 0},
			want: []*AssertionError{
				{Scenario: "impulse", Check: "impulse never observed", Index: NoIndex, Expected: 1, Actual: 0},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResult(ScenarioImpulse)
			r.Samples = tt.samples
			checkImpulse(r, referenceResponse)
			if tt.want == nil {
				assert.True(t, r.Pass)
				assert.Empty(t, r.Errors)
				return
			}
			assert.False(t, r.Pass)
			assert.Equal(t, tt.want, r.Errors)
		})
	}
}

func TestCheckStep(t *testing.T) {
	r := NewResult(ScenarioStep)
	r.Samples = []int64{0, 1, 32, 63, 64}
	checkStep(r, referenceResponse)
	assert.True(t, r.Pass)

	r = NewResult(ScenarioStep)
	r.Samples = []int64{1, 35, 63, 60}
	checkStep(r, referenceResponse)
	require.Len(t, r.Errors, 2)
	assert.Equal(t, "step: near-origin step at sample 1: expected 32, got 35", r.Errors[0].Error())
	assert.Equal(t, "step: final step at sample 3: expected 64, got 60", r.Errors[1].Error())
}

func TestCheckDeclared(t *testing.T) {
	r := NewResult(ScenarioStep)
	checkDeclared(r, golden.Params{Order: 3, TapDelay: 1, Ratio: 4}, golden.Params{Order: 3, TapDelay: 2, Ratio: 4})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "step: tap delay: expected 1, got 2", r.Errors[0].Error())
	assert.Equal(t, []string{"step: tap delay: expected 1, got 2"}, r.Failures())
}
