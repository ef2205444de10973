package draft

import (
	"math"
	"math/rand"
)

// epsilon is the square root of machine epsilon, used to keep weights and
// scarcity denominators strictly positive.
var epsilon = math.Sqrt(math.Nextafter(1, 2) - 1)

// weightedIndex draws an index with probability proportional to its weight.
// Every weight is shifted up by epsilon, plus the magnitude of the minimum
// weight when that minimum is not strictly positive, so all candidates keep
// a nonzero chance. Returns -1 for an empty slice.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}

	min := weights[0]
	for _, w := range weights[1:] {
		if w < min {
			min = w
		}
	}

	boost := epsilon
	if min <= 0 {
		boost += -min
	}

	total := 0.0
	for _, w := range weights {
		total += w + boost
	}

	r := rng.Float64() * total
	for i, w := range weights {
		r -= w + boost
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func pickPlayer(rng *rand.Rand, pool []PlayerID) PlayerID {
	return pool[rng.Intn(len(pool))]
}

func pickString(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}
