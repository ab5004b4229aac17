package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/derekprior/doubles/internal/schedule"
)

// Unmet lists the players someone never shares a game with.
type Unmet struct {
	Player  string   `json:"player"`
	Missing []string `json:"missing"`
}

// SameRound records the first round in which a player is placed on more
// than one court.
type SameRound struct {
	Player string         `json:"player"`
	Round  int            `json:"round"`
	Games  schedule.Round `json:"games"`
}

// Consecutive records every round index that belongs to a run of two or
// more back-to-back rounds for a player.
type Consecutive struct {
	Player string `json:"player"`
	Rounds []int  `json:"rounds"`
}

// Result holds the findings of the three independent checks.
type Result struct {
	Unmet       []Unmet       `json:"unmet"`
	SameRound   []SameRound   `json:"same_round"`
	Consecutive []Consecutive `json:"consecutive"`
}

// Violation is a single human-readable finding.
type Violation struct {
	Type    string // "error" or "warning"
	Message string
}

// Validate runs every check against a schedule snapshot. It never fails.
func Validate(s schedule.Schedule) Result {
	players := s.Players()
	return Result{
		Unmet:       checkMeetings(s, players),
		SameRound:   checkSameRound(s, players),
		Consecutive: checkConsecutive(s, players),
	}
}

// OK reports whether the schedule has no findings at all.
func (r Result) OK() bool {
	return len(r.Unmet) == 0 && len(r.SameRound) == 0 && len(r.Consecutive) == 0
}

// Violations flattens the findings into messages. Same-round duplicates are
// errors since a player cannot be on two courts at once; the rest are
// fairness warnings.
func (r Result) Violations() []Violation {
	var violations []Violation
	for _, d := range r.SameRound {
		violations = append(violations, Violation{
			Type:    "error",
			Message: fmt.Sprintf("%s plays twice in round %d", d.Player, d.Round+1),
		})
	}
	for _, u := range SortUnmet(r.Unmet) {
		violations = append(violations, Violation{
			Type:    "warning",
			Message: fmt.Sprintf("%s doesn't meet %s", u.Player, strings.Join(u.Missing, ", ")),
		})
	}
	for _, c := range r.Consecutive {
		rounds := make([]string, len(c.Rounds))
		for i, idx := range c.Rounds {
			rounds[i] = fmt.Sprint(idx + 1)
		}
		violations = append(violations, Violation{
			Type:    "warning",
			Message: fmt.Sprintf("%s plays consecutive rounds %s", c.Player, strings.Join(rounds, ", ")),
		})
	}
	return violations
}

// Penalty ranks schedules for best-of-N selection; lower is better. A
// same-round duplicate outweighs any number of fairness findings.
func (r Result) Penalty() int {
	p := 1_000_000 * len(r.SameRound)
	for _, u := range r.Unmet {
		p += len(u.Missing)
	}
	for _, c := range r.Consecutive {
		p += len(c.Rounds)
	}
	return p
}

// SortUnmet returns a copy ordered by the number of missing opponents,
// largest first. Ties keep their original order.
func SortUnmet(unmet []Unmet) []Unmet {
	sorted := make([]Unmet, len(unmet))
	copy(sorted, unmet)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Missing) > len(sorted[j].Missing)
	})
	return sorted
}

func checkMeetings(s schedule.Schedule, players []string) []Unmet {
	var unmet []Unmet
	for _, player := range players {
		met := map[string]bool{player: true}
		for _, round := range s {
			for _, game := range round {
				if !game.Contains(player) {
					continue
				}
				for _, other := range game {
					met[other] = true
				}
			}
		}

		var missing []string
		for _, other := range players {
			if !met[other] {
				missing = append(missing, other)
			}
		}
		if len(missing) > 0 {
			unmet = append(unmet, Unmet{Player: player, Missing: missing})
		}
	}
	return unmet
}

// checkSameRound reports only the first offending round per player.
func checkSameRound(s schedule.Schedule, players []string) []SameRound {
	var dupes []SameRound
	for _, player := range players {
		for i, round := range s {
			if round.GamesWith(player) > 1 {
				dupes = append(dupes, SameRound{Player: player, Round: i, Games: round.Clone()})
				break
			}
		}
	}
	return dupes
}

func checkConsecutive(s schedule.Schedule, players []string) []Consecutive {
	var result []Consecutive
	for _, player := range players {
		var rounds []int
		for i, round := range s {
			if round.GamesWith(player) > 0 {
				rounds = append(rounds, i)
			}
		}
		if runs := consecutiveRuns(rounds); len(runs) > 0 {
			result = append(result, Consecutive{Player: player, Rounds: runs})
		}
	}
	return result
}

// consecutiveRuns flattens every maximal run of length >= 2 in an ascending
// list of round indices.
func consecutiveRuns(rounds []int) []int {
	var flat []int
	start := 0
	for i := 1; i <= len(rounds); i++ {
		if i < len(rounds) && rounds[i] == rounds[i-1]+1 {
			continue
		}
		if i-start > 1 {
			flat = append(flat, rounds[start:i]...)
		}
		start = i
	}
	return flat
}
