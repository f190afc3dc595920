package collide

// Pair is the canonical key for one unordered collider pair: the lower ID is
// always first, so results for (A,B) and (B,A) collapse to one table entry.
type Pair struct {
	A, B uint32
}

// MakePair returns the canonical pair key for two collider IDs and reports
// whether the inputs were swapped to canonicalize. When they were, the
// stored contact normal must be negated to keep the "points from first to
// second" contract relative to the canonical order.
func MakePair(a, b uint32) (Pair, bool) {
	if a > b {
		return Pair{b, a}, true
	}
	return Pair{a, b}, false
}
