package game

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		total    float64
		expected float64
	}{
		{
			name:     "raw score over total",
			score:    8,
			total:    10,
			expected: 80,
		},
		{
			name:     "score exceeds total clamps to 100",
			score:    15,
			total:    10,
			expected: 100,
		},
		{
			name:     "negative score clamps to 0",
			score:    -5,
			total:    10,
			expected: 0,
		},
		{
			name:     "no total treats score as percentage",
			score:    55,
			total:    math.NaN(),
			expected: 55,
		},
		{
			name:     "percentage over 100 clamps",
			score:    150,
			total:    math.NaN(),
			expected: 100,
		},
		{
			name:     "zero total treats score as percentage",
			score:    72,
			total:    0,
			expected: 72,
		},
		{
			name:     "negative total treats score as percentage",
			score:    40,
			total:    -3,
			expected: 40,
		},
		{
			name:     "NaN score is 0",
			score:    math.NaN(),
			total:    10,
			expected: 0,
		},
		{
			name:     "infinite score is 0",
			score:    math.Inf(1),
			total:    10,
			expected: 0,
		},
		{
			name:     "infinite total treats score as percentage",
			score:    30,
			total:    math.Inf(1),
			expected: 30,
		},
		{
			name:     "perfect score",
			score:    10,
			total:    10,
			expected: 100,
		},
		{
			name:     "fractional result",
			score:    1,
			total:    3,
			expected: 100.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.score, tt.total)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Normalize(%v, %v) = %v, want %v", tt.score, tt.total, result, tt.expected)
			}
		})
	}
}

func TestPointsPerGameIsFixed(t *testing.T) {
	// The award is a completion reward, independent of performance
	if PointsPerGame != 10 {
		t.Errorf("PointsPerGame = %d, want 10", PointsPerGame)
	}
}
