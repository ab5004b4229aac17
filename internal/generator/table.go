package generator

import (
	"math/rand"
	"time"

	"github.com/derekprior/doubles/internal/config"
	"github.com/derekprior/doubles/internal/schedule"
)

// member is a roster player tagged with the group it partners within.
type member struct {
	config.Player
	group int
}

// table is a flat rounds × courts × 4 grid of roster members. Slot index i
// maps to round i/(courts*4), court (i/4)%courts, position i%4.
type table struct {
	rounds int
	courts int
	slots  []member
}

func flatten(roster [][]config.Player) []member {
	var members []member
	for g, team := range roster {
		for _, p := range team {
			members = append(members, member{Player: p, group: g})
		}
	}
	return members
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// seedTable deals the shuffled roster into the grid in order, reshuffling
// every time the roster runs out.
func seedTable(members []member, rounds, courts int, rng *rand.Rand) *table {
	deck := make([]member, len(members))
	copy(deck, members)
	shuffle := func() {
		rng.Shuffle(len(deck), func(i, j int) {
			deck[i], deck[j] = deck[j], deck[i]
		})
	}
	shuffle()

	t := &table{
		rounds: rounds,
		courts: courts,
		slots:  make([]member, rounds*courts*schedule.SlotsPerGame),
	}
	next := 0
	for i := range t.slots {
		t.slots[i] = deck[next]
		next++
		if next == len(deck) {
			shuffle()
			next = 0
		}
	}
	return t
}

func (t *table) at(round, court, pos int) member {
	return t.slots[(round*t.courts+court)*schedule.SlotsPerGame+pos]
}

func (t *table) swap(i, j int) {
	t.slots[i], t.slots[j] = t.slots[j], t.slots[i]
}

func (t *table) schedule() schedule.Schedule {
	s := schedule.New(t.rounds, t.courts)
	for r := range s {
		for c := range s[r] {
			for p := range s[r][c] {
				s[r][c][p] = t.at(r, c, p).Name
			}
		}
	}
	return s
}
