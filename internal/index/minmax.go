package index

// MinMax rescales scores to [0,1]. When every score is equal (including an
// empty or all-zero input) every rescaled score is 0.
func MinMax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	if hi == lo {
		return out
	}

	span := hi - lo
	for i, s := range scores {
		out[i] = (s - lo) / span
	}
	return out
}
