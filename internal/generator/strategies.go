package generator

import (
	"context"
	"math/rand"
)

// Shuffle deals the roster into the grid at random with no optimisation.
type Shuffle struct {
	Seed int64
}

func (g *Shuffle) Generate(ctx context.Context, req Request) Outcome {
	if err := req.Validate(); err != nil {
		return Failure(err)
	}
	if err := ctx.Err(); err != nil {
		return Failure(err)
	}
	t := seedTable(flatten(req.Roster), req.Rounds, req.Courts, newRNG(g.Seed))
	return Success(t.schedule())
}

// HillClimb starts from a shuffled grid and repeatedly applies the best of a
// random sample of slot swaps until no sampled swap lowers the score or the
// iteration budget runs out.
type HillClimb struct {
	Options
}

func (g *HillClimb) Generate(ctx context.Context, req Request) Outcome {
	if err := req.Validate(); err != nil {
		return Failure(err)
	}
	rng := newRNG(g.Seed)
	t := seedTable(flatten(req.Roster), req.Rounds, req.Courts, rng)

	for range g.Iterations {
		if err := ctx.Err(); err != nil {
			return Failure(err)
		}
		if !t.climb(g.Samples, rng) {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return Failure(err)
	}
	return Success(t.schedule())
}

// climb samples random swaps and applies the best improving one. It returns
// false when none of the samples improved on the current score.
func (t *table) climb(samples int, rng *rand.Rand) bool {
	current := t.score()
	best := current
	bestI, bestJ := -1, -1

	for range samples {
		i := rng.Intn(len(t.slots))
		j := rng.Intn(len(t.slots))
		if i == j {
			continue
		}
		t.swap(i, j)
		if s := t.score(); s < best {
			best = s
			bestI, bestJ = i, j
		}
		t.swap(i, j)
	}

	if bestI < 0 {
		return false
	}
	t.swap(bestI, bestJ)
	return true
}
