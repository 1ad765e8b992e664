// Package draw contains the lottery that staffs a cleaning week.
// This is part of the Functional Core - randomness is injected.
package draw

import "github.com/example/putzplan/internal/core/eligibility"

// Source yields uniformly distributed integers in [0, n).
// *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Result is the outcome of one draw.
type Result struct {
	Needed    int
	Drawn     []eligibility.Candidate
	Shortfall int
}

// Needed returns how many participants are missing from a week holding
// existing of target participants. Never negative.
func Needed(target, existing int) int {
	if existing >= target {
		return 0
	}
	return target - existing
}

// Draw samples min(needed, len(candidates)) candidates uniformly without
// replacement. A non-positive need yields an empty draw. Too few candidates
// is reported as Shortfall, never as an error. candidates is not modified.
func Draw(candidates []eligibility.Candidate, needed int, src Source) Result {
	if needed <= 0 {
		return Result{Needed: 0}
	}

	result := Result{Needed: needed}
	if len(candidates) < needed {
		result.Shortfall = needed - len(candidates)
	}

	k := min(needed, len(candidates))
	if k == 0 {
		return result
	}

	// Partial Fisher-Yates over a copy: the first k slots become the sample.
	pool := make([]eligibility.Candidate, len(candidates))
	copy(pool, candidates)
	for i := 0; i < k; i++ {
		j := i + src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	result.Drawn = pool[:k:k]
	return result
}
