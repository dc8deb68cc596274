package sweep

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_DeclaredNestedOrder(t *testing.T) {
	got, err := Expand([]Range{
		{Name: "a", From: 1, To: 2},
		{Name: "b", Values: []int{3, 1, 2}},
	})
	require.NoError(t, err)

	want := []Combination{
		{{"a", 1}, {"b", 1}},
		{{"a", 1}, {"b", 2}},
		{{"a", 1}, {"b", 3}},
		{{"a", 2}, {"b", 1}},
		{{"a", 2}, {"b", 2}},
		{{"a", 2}, {"b", 3}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expand() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpand_Sizes(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
		want   int
	}{
		{name: "none", ranges: nil, want: 0},
		{name: "single", ranges: []Range{{Name: "order", From: 1, To: 7}}, want: 7},
		{name: "three_axes", ranges: []Range{
			{Name: "order", From: 1, To: 7},
			{Name: "tapDelay", From: 1, To: 2},
			{Name: "decimationRatio", From: 2, To: 65},
		}, want: 7 * 2 * 64},
		{name: "empty_axis", ranges: []Range{{Name: "order", From: 1, To: 3}, {Name: "tapDelay", From: 2, To: 1}}, want: 0},
		{name: "duplicate_values", ranges: []Range{{Name: "order", Values: []int{2, 2, 1}}}, want: 2},
		{name: "huge_axis_with_empty_axis", ranges: []Range{{Name: "a", From: math.MinInt, To: math.MaxInt}, {Name: "b", From: 2, To: 1}}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.ranges)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestExpand_InvalidRanges(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
	}{
		{name: "unnamed", ranges: []Range{{From: 1, To: 2}}},
		{name: "duplicate_name", ranges: []Range{{Name: "a", From: 1, To: 2}, {Name: "a", From: 1, To: 2}}},
		{name: "product_over_limit", ranges: []Range{{Name: "a", From: 1, To: 1 << 10}, {Name: "b", From: 0, To: 1 << 10}}},
		{name: "span_over_limit", ranges: []Range{{Name: "a", From: 0, To: maxCombinations}}},
		{name: "full_int_span", ranges: []Range{{Name: "a", From: math.MinInt, To: math.MaxInt}}},
		{name: "overflowing_product", ranges: []Range{
			{Name: "a", From: 1, To: 1 << 20},
			{Name: "b", From: 1, To: 1 << 20},
			{Name: "c", From: 1, To: 1 << 20},
			{Name: "d", From: 1, To: 1 << 20},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.ranges)
			assert.ErrorIs(t, err, ErrInvalidRange)
			assert.Nil(t, got)
		})
	}
}

func TestRange_Size(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want int
	}{
		{name: "empty_span", r: Range{From: 3, To: 2}, want: 0},
		{name: "single_point", r: Range{From: -4, To: -4}, want: 1},
		{name: "span_at_limit", r: Range{From: 1, To: maxCombinations}, want: maxCombinations},
		{name: "span_over_limit", r: Range{From: 0, To: maxCombinations}, want: maxCombinations + 1},
		{name: "full_int_span", r: Range{From: math.MinInt, To: math.MaxInt}, want: maxCombinations + 1},
		{name: "values_deduplicated", r: Range{Values: []int{5, 1, 5}}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.size())
		})
	}
}

func TestCombination_GetAndString(t *testing.T) {
	c := Combination{{"order", 3}, {"decimationRatio", 4}}
	v, ok := c.Get("decimationRatio")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	_, ok = c.Get("tapDelay")
	assert.False(t, ok)
	assert.Equal(t, "order=3 decimationRatio=4", c.String())
}
