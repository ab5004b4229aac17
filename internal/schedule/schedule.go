package schedule

import "fmt"

// SlotsPerGame is the number of player slots in a doubles game.
const SlotsPerGame = 4

// Empty marks an unfilled slot. It is never treated as a player.
const Empty = ""

// Game is one court's match: two pairs, slots 0-1 against slots 2-3.
type Game []string

// Round is the set of games played at the same time, one per court.
type Round []Game

// Schedule is the full grid of rounds × courts.
type Schedule []Round

// New returns an empty schedule with the given number of rounds and courts.
func New(rounds, courts int) Schedule {
	s := make(Schedule, rounds)
	for r := range s {
		s[r] = make(Round, courts)
		for c := range s[r] {
			s[r][c] = make(Game, SlotsPerGame)
		}
	}
	return s
}

// Contains reports whether name occupies a slot in the game.
func (g Game) Contains(name string) bool {
	for _, p := range g {
		if p == name {
			return true
		}
	}
	return false
}

// Partner returns the slot index of the partner of slot i.
func Partner(i int) int {
	return (i/2)*2 + (1 - i%2)
}

// String renders the game as "A, B vs C, D" with "-" for empty slots.
func (g Game) String() string {
	names := make([]string, SlotsPerGame)
	for i := range names {
		names[i] = "-"
		if i < len(g) && g[i] != Empty {
			names[i] = g[i]
		}
	}
	return fmt.Sprintf("%s, %s vs %s, %s", names[0], names[1], names[2], names[3])
}

// GamesWith counts the games in the round that include name.
func (r Round) GamesWith(name string) int {
	n := 0
	for _, g := range r {
		if g.Contains(name) {
			n++
		}
	}
	return n
}

// Players returns the distinct non-empty names in the order they first appear.
func (s Schedule) Players() []string {
	seen := make(map[string]bool)
	var players []string
	for _, round := range s {
		for _, game := range round {
			for _, p := range game {
				if p == Empty || seen[p] {
					continue
				}
				seen[p] = true
				players = append(players, p)
			}
		}
	}
	return players
}

// Appearances counts the slots each player fills across the schedule.
func (s Schedule) Appearances() map[string]int {
	counts := make(map[string]int)
	for _, round := range s {
		for _, game := range round {
			for _, p := range game {
				if p != Empty {
					counts[p]++
				}
			}
		}
	}
	return counts
}

// Courts returns the widest round's game count.
func (s Schedule) Courts() int {
	n := 0
	for _, round := range s {
		if len(round) > n {
			n = len(round)
		}
	}
	return n
}

// Clone returns a deep copy.
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for r, round := range s {
		out[r] = round.Clone()
	}
	return out
}

// Clone returns a deep copy of the round.
func (r Round) Clone() Round {
	out := make(Round, len(r))
	for c, game := range r {
		out[c] = append(Game(nil), game...)
	}
	return out
}
