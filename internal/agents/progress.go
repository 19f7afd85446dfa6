package agents

import (
	"math"
	"time"
)

// ProgressCeiling is approached but never reached before completion
const ProgressCeiling = 95

// EstimateProgress maps elapsed time to a 0-100 estimate. It is
// non-decreasing in elapsed, stays below ProgressCeiling while running and
// returns 100 once done. scale is the time at which ~63% of the ceiling is
// reached.
func EstimateProgress(elapsed, scale time.Duration, done bool) int {
	if done {
		return 100
	}
	if elapsed <= 0 {
		return 0
	}
	if scale <= 0 {
		scale = time.Second
	}
	p := ProgressCeiling * (1 - math.Exp(-float64(elapsed)/float64(scale)))
	if p >= ProgressCeiling {
		return ProgressCeiling - 1
	}
	return int(p)
}

// ProgressScale is the typical latency of a call kind
func ProgressScale(kind Kind) time.Duration {
	switch kind {
	case KindIdeaDetails:
		return 12 * time.Second
	case KindAnalyze, KindClusterIdeas:
		return 6 * time.Second
	default:
		return 4 * time.Second
	}
}
