package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/derekprior/doubles/internal/config"
	"github.com/derekprior/doubles/internal/schedule"
)

// ErrInsufficientPlayers is returned when the roster cannot fill a game.
var ErrInsufficientPlayers = errors.New("at least 4 players are required")

// Request describes the grid to fill and who can fill it. Each roster group
// is a team whose members partner each other.
type Request struct {
	Roster [][]config.Player `json:"roster"`
	Courts int               `json:"courts"`
	Rounds int               `json:"rounds"`
}

// Validate checks the request shape before any generation work starts.
func (r Request) Validate() error {
	if r.Courts < 1 {
		return fmt.Errorf("courts must be at least 1, got %d", r.Courts)
	}
	if r.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", r.Rounds)
	}
	if err := schedule.CheckGrid(r.Courts, r.Rounds); err != nil {
		return err
	}
	n := 0
	seen := make(map[string]bool)
	for _, team := range r.Roster {
		for _, p := range team {
			if err := config.CheckPlayer(p); err != nil {
				return err
			}
			if seen[p.Name] {
				return fmt.Errorf("player %q appears more than once", p.Name)
			}
			seen[p.Name] = true
			n++
		}
	}
	if n < schedule.SlotsPerGame {
		return fmt.Errorf("%w, got %d", ErrInsufficientPlayers, n)
	}
	return nil
}

// Status tags an Outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Outcome is either a generated schedule or a failure message, never both.
type Outcome struct {
	Status  Status
	Result  schedule.Schedule
	Message string
}

// Success wraps a generated schedule.
func Success(s schedule.Schedule) Outcome {
	return Outcome{Status: StatusSuccess, Result: s}
}

// Failure wraps an error message.
func Failure(err error) Outcome {
	return Outcome{Status: StatusError, Message: err.Error()}
}

// OK reports whether the outcome carries a schedule.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

type wireOutcome struct {
	Status  Status            `json:"status"`
	Result  schedule.Schedule `json:"result,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireOutcome(o))
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var w wireOutcome
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Status {
	case StatusSuccess:
		if w.Result == nil {
			return fmt.Errorf("success outcome has no result")
		}
	case StatusError:
		if w.Message == "" {
			w.Message = "Unknown generation error"
		}
	default:
		return fmt.Errorf("unknown outcome status: %q", w.Status)
	}
	*o = Outcome(w)
	return nil
}

// Generator fills a schedule grid from a roster.
type Generator interface {
	Generate(ctx context.Context, req Request) Outcome
}

// Options tunes the search-based generators.
type Options struct {
	Iterations int
	Samples    int
	Seed       int64 // 0 picks a time-based seed
}

// OptionsFromConfig copies the generator section of a config.
func OptionsFromConfig(cfg config.Generator) Options {
	return Options{
		Iterations: cfg.Iterations,
		Samples:    cfg.Samples,
		Seed:       cfg.Seed,
	}
}

// Get returns a Generator by name.
func Get(name string, opts Options) (Generator, error) {
	switch name {
	case "hill_climb":
		return &HillClimb{Options: opts}, nil
	case "shuffle":
		return &Shuffle{Seed: opts.Seed}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}
