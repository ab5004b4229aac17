package generator

import (
	"math"

	"github.com/derekprior/doubles/internal/schedule"
)

// Penalty weights. Structural defects dwarf every fairness term so a swap
// that removes one always wins.
const (
	duplicatePenalty  = 1e14
	groupMixPenalty   = 1e15
	levelGapWeight    = 20
	competeThreshold  = 2
	weakGameBase      = 20
	weakPartnerBase   = 1.3
	repeatPartnerBase = 5
	repeatPlayerBase  = 3
)

type playerStats struct {
	withWeak       int
	weakPartnerGap float64
	partners       map[string]int
	sameGame       map[string]int
}

// score returns the cost of a table; lower is better.
func (t *table) score() float64 {
	var total float64
	perRound := t.courts * 4
	for r := 0; r < t.rounds; r++ {
		total += t.duplicateScore(r*perRound, (r+1)*perRound)
		for c := 0; c < t.courts; c++ {
			total += t.gameScore(r, c)
		}
	}
	return total + t.playerScore()
}

func (t *table) duplicateScore(start, end int) float64 {
	names := make(map[string]bool, end-start)
	for i := start; i < end; i++ {
		names[t.slots[i].Name] = true
	}
	return duplicatePenalty * float64((end-start)-len(names))
}

func (t *table) gameScore(round, court int) float64 {
	p := [4]member{t.at(round, court, 0), t.at(round, court, 1), t.at(round, court, 2), t.at(round, court, 3)}

	side1 := p[0].Level + p[1].Level
	side2 := p[2].Level + p[3].Level
	total := math.Abs(float64(side1-side2)) * levelGapWeight

	start := (round*t.courts + court) * 4
	total += t.duplicateScore(start, start+4)

	if p[0].group != p[1].group || p[2].group != p[3].group {
		total += groupMixPenalty
	}
	return total
}

func (t *table) playerScore() float64 {
	stats := make(map[string]*playerStats)
	get := func(name string) *playerStats {
		st, ok := stats[name]
		if !ok {
			st = &playerStats{partners: make(map[string]int), sameGame: make(map[string]int)}
			stats[name] = st
		}
		return st
	}

	for r := 0; r < t.rounds; r++ {
		for c := 0; c < t.courts; c++ {
			var avg float64
			for i := 0; i < 4; i++ {
				avg += float64(t.at(r, c, i).Level)
			}
			avg /= 4

			for i := 0; i < 4; i++ {
				player := t.at(r, c, i)
				partner := t.at(r, c, schedule.Partner(i))
				st := get(player.Name)

				if float64(player.Level) >= avg+competeThreshold {
					st.withWeak++
				}
				if player.Level > partner.Level {
					st.weakPartnerGap += math.Pow(weakPartnerBase, float64(player.Level-partner.Level))
				}
				st.partners[partner.Name]++
				for j := 0; j < 4; j++ {
					if j != i {
						st.sameGame[t.at(r, c, j).Name]++
					}
				}
			}
		}
	}

	var total float64
	for _, st := range stats {
		total += math.Pow(weakGameBase, float64(st.withWeak))
		total += st.weakPartnerGap
		for _, n := range st.partners {
			total += math.Pow(repeatPartnerBase, float64(n-1))
		}
		for _, n := range st.sameGame {
			total += math.Pow(repeatPlayerBase, float64(n-1))
		}
	}
	return total
}
