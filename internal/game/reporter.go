package game

import "math"

// PointsPerGame is the fixed award for finishing any game. Completion is
// rewarded, not performance, so the award does not scale with the score.
const PointsPerGame = 10

// Normalize converts a raw game result into a percentage in [0,100].
// Game components report results inconsistently: some send raw score/total,
// others send an already-normalized 0-100 value with no total. The rule is:
//   - a non-finite score normalizes to 0
//   - with a finite total > 0, the result is score/total*100, clamped
//   - otherwise the score is treated as a percentage itself and clamped
func Normalize(score, total float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	if !math.IsNaN(total) && !math.IsInf(total, 0) && total > 0 {
		return clampPercent(score / total * 100)
	}
	return clampPercent(score)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
