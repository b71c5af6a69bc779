package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnglishEnumerate(t *testing.T) {
	tests := []struct {
		name     string
		items    []string
		conj     string
		expected string
	}{
		{"empty", nil, DefaultConjunction, ""},
		{"single", []string{"a"}, DefaultConjunction, "a"},
		{"pair", []string{"a", "b"}, DefaultConjunction, "a, and b"},
		{"triple", []string{"a", "b", "c"}, DefaultConjunction, "a, b, and c"},
		{"or", []string{"number", "string", "null"}, ", or ", "number, string, or null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnglishEnumerate(tt.items, tt.conj))
		})
	}
}

func TestGeometricMean(t *testing.T) {
	assert.InDelta(t, 2.0, GeometricMean([]float64{}, 2.0), 1e-9)
	assert.InDelta(t, 0.5, GeometricMean([]float64{0.5, 0.5}, 2.0), 1e-9)
	assert.InDelta(t, 2.0, GeometricMean([]float64{1, 4}, 0), 1e-9)
	assert.InDelta(t, 0.0, GeometricMean([]float64{0, 4}, 1), 1e-9)
	assert.True(t, math.IsInf(GeometricMean([]float64{0, math.Inf(1)}, 1), 1))
}

func TestGeometricMean_LongInput(t *testing.T) {
	large := make([]float64, 5000)
	small := make([]float64, 5000)

	for i := range large {
		large[i] = 3
		small[i] = 0.01
	}

	assert.InDelta(t, 3.0, GeometricMean(large, 0), 1e-9)
	assert.InDelta(t, 0.01, GeometricMean(small, 1), 1e-9)
}

func TestSliceHelpers(t *testing.T) {
	assert.True(t, IsEmpty([]int{}))
	assert.True(t, IsSingle([]int{1}))

	v, ok := First([]string{"x", "y"})
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = First([]string{})
	assert.False(t, ok)

	assert.Equal(t, []int{2, 4}, Map([]int{1, 2}, func(i int) int { return i * 2 }))
	assert.True(t, Any([]int{1, 2, 3}, func(i int) bool { return i == 2 }))
}
