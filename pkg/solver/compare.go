package solver

import "math"

// CostsEqual reports whether two distance buffers agree within an absolute
// tolerance. Two +Inf entries (both unreachable) count as equal; an +Inf
// entry never matches a finite one.
func CostsEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ai, bi := a[i], b[i]
		if math.IsInf(ai, 1) || math.IsInf(bi, 1) {
			if ai != bi {
				return false
			}
			continue
		}
		if math.Abs(ai-bi) > tol {
			return false
		}
	}
	return true
}
