package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/derekprior/doubles/internal/config"
	"github.com/derekprior/doubles/internal/schedule"
	"github.com/derekprior/doubles/internal/validator"
)

func roster(n int) [][]config.Player {
	team := make([]config.Player, n)
	for i := range team {
		team[i] = config.Player{Name: fmt.Sprintf("P%02d", i+1), Level: 1 + i%5}
	}
	return [][]config.Player{team}
}

func testOptions() Options {
	return Options{Iterations: 60, Samples: 2000, Seed: 42}
}

func TestGet(t *testing.T) {
	t.Run("hill_climb", func(t *testing.T) {
		g, err := Get("hill_climb", testOptions())
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if _, ok := g.(*HillClimb); !ok {
			t.Errorf("Get(hill_climb) = %T", g)
		}
	})

	t.Run("shuffle", func(t *testing.T) {
		g, err := Get("shuffle", testOptions())
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if _, ok := g.(*Shuffle); !ok {
			t.Errorf("Get(shuffle) = %T", g)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := Get("round_robin", testOptions()); err == nil {
			t.Error("expected error for unknown strategy")
		}
	})
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{"no courts", Request{Roster: roster(8), Rounds: 2}, "courts must be at least 1"},
		{"no rounds", Request{Roster: roster(8), Courts: 2}, "rounds must be at least 1"},
		{"too few players", Request{Roster: roster(3), Courts: 1, Rounds: 1}, "at least 4 players"},
		{"blank name", Request{Roster: [][]config.Player{{{Name: ""}, {Name: "A"}, {Name: "B"}, {Name: "C"}}}, Courts: 1, Rounds: 1}, "no name"},
		{"duplicate", Request{Roster: [][]config.Player{{{Name: "A", Level: 1}, {Name: "A", Level: 1}, {Name: "B", Level: 1}, {Name: "C", Level: 1}}}, Courts: 1, Rounds: 1}, `"A" appears more than once`},
		{"level zero", Request{Roster: [][]config.Player{{{Name: "A"}, {Name: "B", Level: 1}, {Name: "C", Level: 1}, {Name: "D", Level: 1}}}, Courts: 1, Rounds: 1}, "level 0 out of range"},
		{"negative level", Request{Roster: [][]config.Player{{{Name: "A", Level: -3}, {Name: "B", Level: 1}, {Name: "C", Level: 1}, {Name: "D", Level: 1}}}, Courts: 1, Rounds: 1}, "out of range"},
		{"empty-slot marker as name", Request{Roster: [][]config.Player{{{Name: "-", Level: 1}, {Name: "B", Level: 1}, {Name: "C", Level: 1}, {Name: "D", Level: 1}}}, Courts: 1, Rounds: 1}, "marks an empty slot"},
		{"comma in name", Request{Roster: [][]config.Player{{{Name: "Smith, J", Level: 1}, {Name: "B", Level: 1}, {Name: "C", Level: 1}, {Name: "D", Level: 1}}}, Courts: 1, Rounds: 1}, "comma"},
		{"too many courts", Request{Roster: roster(8), Courts: schedule.MaxCourts + 1, Rounds: 1}, "too large"},
		{"too many rounds", Request{Roster: roster(8), Courts: 1, Rounds: schedule.MaxRounds + 1}, "too large"},
		{"too many slots", Request{Roster: roster(8), Courts: schedule.MaxCourts, Rounds: schedule.MaxRounds}, "slots"},
		{"overflowing courts", Request{Roster: roster(8), Courts: 1 << 62, Rounds: 2}, "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}

	t.Run("oversized grid is a sentinel", func(t *testing.T) {
		err := Request{Roster: roster(8), Courts: 1 << 62, Rounds: 2}.Validate()
		if !errors.Is(err, schedule.ErrGridTooLarge) {
			t.Errorf("error = %v, want ErrGridTooLarge", err)
		}
	})

	t.Run("insufficient players is a sentinel", func(t *testing.T) {
		err := Request{Roster: roster(2), Courts: 1, Rounds: 1}.Validate()
		if !errors.Is(err, ErrInsufficientPlayers) {
			t.Errorf("error = %v, want ErrInsufficientPlayers", err)
		}
	})
}

func TestShuffle(t *testing.T) {
	g := &Shuffle{Seed: 7}
	out := g.Generate(context.Background(), Request{Roster: roster(8), Courts: 2, Rounds: 4})
	if !out.OK() {
		t.Fatalf("Generate() failed: %s", out.Message)
	}

	t.Run("grid shape", func(t *testing.T) {
		if len(out.Result) != 4 {
			t.Fatalf("rounds = %d, want 4", len(out.Result))
		}
		for r, round := range out.Result {
			if len(round) != 2 {
				t.Errorf("round %d courts = %d, want 2", r, len(round))
			}
		}
	})

	t.Run("every slot filled", func(t *testing.T) {
		for _, round := range out.Result {
			for _, game := range round {
				for _, p := range game {
					if p == schedule.Empty {
						t.Fatal("found empty slot")
					}
				}
			}
		}
	})

	t.Run("roster dealt evenly", func(t *testing.T) {
		// 32 slots over 8 players, reshuffling on each pass through the deck.
		for name, n := range out.Result.Appearances() {
			if n != 4 {
				t.Errorf("%s appears %d times, want 4", name, n)
			}
		}
	})

	t.Run("same seed same grid", func(t *testing.T) {
		again := g.Generate(context.Background(), Request{Roster: roster(8), Courts: 2, Rounds: 4})
		if !reflect.DeepEqual(out.Result, again.Result) {
			t.Error("seeded shuffle is not reproducible")
		}
	})
}

func TestHillClimbRemovesSameRoundDuplicates(t *testing.T) {
	// Ten players over eight slots per round means the initial deal wraps
	// mid-round and can place someone on two courts at once.
	g := &HillClimb{Options: testOptions()}
	out := g.Generate(context.Background(), Request{Roster: roster(10), Courts: 2, Rounds: 5})
	if !out.OK() {
		t.Fatalf("Generate() failed: %s", out.Message)
	}

	result := validator.Validate(out.Result)
	if len(result.SameRound) != 0 {
		t.Errorf("same-round duplicates remain: %+v", result.SameRound)
	}
}

func TestHillClimbImprovesScore(t *testing.T) {
	req := Request{Roster: roster(12), Courts: 2, Rounds: 6}
	members := flatten(req.Roster)

	initial := seedTable(members, req.Rounds, req.Courts, newRNG(42))
	before := initial.score()

	g := &HillClimb{Options: testOptions()}
	out := g.Generate(context.Background(), req)
	if !out.OK() {
		t.Fatalf("Generate() failed: %s", out.Message)
	}

	after := tableFrom(t, out.Result, members).score()
	if after > before {
		t.Errorf("score after climbing = %v, want <= %v", after, before)
	}
}

func TestHillClimbKeepsPartnersInGroup(t *testing.T) {
	req := Request{
		Roster: [][]config.Player{
			{{Name: "A1", Level: 3}, {Name: "A2", Level: 4}, {Name: "A3", Level: 5}, {Name: "A4", Level: 6}},
			{{Name: "B1", Level: 3}, {Name: "B2", Level: 4}, {Name: "B3", Level: 5}, {Name: "B4", Level: 6}},
		},
		Courts: 2,
		Rounds: 3,
	}
	group := map[string]int{}
	for g, team := range req.Roster {
		for _, p := range team {
			group[p.Name] = g
		}
	}

	out := (&HillClimb{Options: testOptions()}).Generate(context.Background(), req)
	if !out.OK() {
		t.Fatalf("Generate() failed: %s", out.Message)
	}
	for r, round := range out.Result {
		for c, game := range round {
			if group[game[0]] != group[game[1]] || group[game[2]] != group[game[3]] {
				t.Errorf("round %d court %d mixes groups within a pair: %v", r, c, game)
			}
		}
	}
}

func TestHillClimbCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := (&HillClimb{Options: testOptions()}).Generate(ctx, Request{Roster: roster(8), Courts: 2, Rounds: 4})
	if out.OK() {
		t.Fatal("expected failure for cancelled context")
	}
	if !strings.Contains(out.Message, context.Canceled.Error()) {
		t.Errorf("message = %q, want context canceled", out.Message)
	}
}

func TestGenerateInvalidRequest(t *testing.T) {
	for _, g := range []Generator{&Shuffle{Seed: 1}, &HillClimb{Options: testOptions()}} {
		out := g.Generate(context.Background(), Request{Roster: roster(2), Courts: 1, Rounds: 1})
		if out.OK() {
			t.Errorf("%T: expected failure", g)
		}
		if out.Result != nil {
			t.Errorf("%T: failure carries a schedule", g)
		}
	}
}

func TestGenerateOversizedGridFails(t *testing.T) {
	for _, g := range []Generator{&Shuffle{Seed: 1}, &HillClimb{Options: testOptions()}} {
		out := g.Generate(context.Background(), Request{Roster: roster(4), Courts: 1 << 62, Rounds: 2})
		if out.OK() {
			t.Errorf("%T: expected failure", g)
		}
		if !strings.Contains(out.Message, "too large") {
			t.Errorf("%T: message = %q", g, out.Message)
		}
	}
}

func TestOutcomeJSON(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		out := Success(schedule.Schedule{{{"A", "B", "C", "D"}}})
		data, err := json.Marshal(out)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != `{"status":"success","result":[[["A","B","C","D"]]]}` {
			t.Errorf("json = %s", data)
		}
	})

	t.Run("failure", func(t *testing.T) {
		data, err := json.Marshal(Failure(errors.New("boom")))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != `{"status":"error","message":"boom"}` {
			t.Errorf("json = %s", data)
		}
	})

	t.Run("decode error without message", func(t *testing.T) {
		var out Outcome
		if err := json.Unmarshal([]byte(`{"status":"error"}`), &out); err != nil {
			t.Fatal(err)
		}
		if out.Message != "Unknown generation error" {
			t.Errorf("message = %q", out.Message)
		}
	})

	t.Run("decode rejects unknown status", func(t *testing.T) {
		var out Outcome
		if err := json.Unmarshal([]byte(`{"status":"pending"}`), &out); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("decode rejects success without result", func(t *testing.T) {
		var out Outcome
		if err := json.Unmarshal([]byte(`{"status":"success"}`), &out); err == nil {
			t.Error("expected error")
		}
	})
}

func tableFrom(t *testing.T, s schedule.Schedule, members []member) *table {
	t.Helper()
	byName := make(map[string]member)
	for _, m := range members {
		byName[m.Name] = m
	}
	tbl := &table{rounds: len(s), courts: s.Courts()}
	for _, round := range s {
		for _, game := range round {
			for _, p := range game {
				m, ok := byName[p]
				if !ok {
					t.Fatalf("unknown player %q in result", p)
				}
				tbl.slots = append(tbl.slots, m)
			}
		}
	}
	return tbl
}
