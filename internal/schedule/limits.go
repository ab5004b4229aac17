package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// Grid limits. Anything larger is refused before a grid is allocated.
const (
	MaxCourts = 100
	MaxRounds = 500
	MaxSlots  = 20000
)

var (
	ErrGridTooLarge = errors.New("schedule grid too large")
	ErrInvalidName  = errors.New("invalid player name")
)

// CheckGrid rejects grids that exceed the size limits. Lower bounds are the
// caller's concern.
func CheckGrid(courts, rounds int) error {
	if courts > MaxCourts {
		return fmt.Errorf("%w: %d courts, max %d", ErrGridTooLarge, courts, MaxCourts)
	}
	if rounds > MaxRounds {
		return fmt.Errorf("%w: %d rounds, max %d", ErrGridTooLarge, rounds, MaxRounds)
	}
	if slots := courts * rounds * SlotsPerGame; slots > MaxSlots {
		return fmt.Errorf("%w: %d slots, max %d", ErrGridTooLarge, slots, MaxSlots)
	}
	return nil
}

// CheckName reports whether name can be written as a "A, B vs C, D" cell
// and read back unchanged.
func CheckName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: player with no name", ErrInvalidName)
	case name != strings.TrimSpace(name):
		return fmt.Errorf("%w: player %q has leading or trailing whitespace", ErrInvalidName, name)
	case name == "-":
		return fmt.Errorf("%w: %q marks an empty slot", ErrInvalidName, name)
	case strings.Contains(name, ","):
		return fmt.Errorf("%w: player %q contains a comma", ErrInvalidName, name)
	}
	for _, word := range strings.Fields(name) {
		if word == "vs" {
			return fmt.Errorf("%w: player %q contains the word vs", ErrInvalidName, name)
		}
	}
	return nil
}
