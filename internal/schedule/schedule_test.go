package schedule

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	s := New(3, 2)

	if len(s) != 3 {
		t.Fatalf("rounds = %d, want 3", len(s))
	}
	for r, round := range s {
		if len(round) != 2 {
			t.Errorf("round %d courts = %d, want 2", r, len(round))
		}
		for c, game := range round {
			if len(game) != SlotsPerGame {
				t.Errorf("round %d court %d slots = %d, want %d", r, c, len(game), SlotsPerGame)
			}
		}
	}
	if players := s.Players(); len(players) != 0 {
		t.Errorf("empty schedule players = %v, want none", players)
	}
}

func TestPlayers(t *testing.T) {
	s := Schedule{
		{{"A", "B", "", "C"}, {"D", "A", "E", ""}},
		{{"C", "F", "B", "A"}},
	}

	got := s.Players()
	want := []string{"A", "B", "C", "D", "E", "F"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Players() = %v, want %v", got, want)
	}
}

func TestAppearances(t *testing.T) {
	s := Schedule{
		{{"A", "B", "C", "D"}, {"A", "", "", ""}},
		{{"A", "B", "", ""}},
	}

	got := s.Appearances()
	want := map[string]int{"A": 3, "B": 2, "C": 1, "D": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Appearances() = %v, want %v", got, want)
	}
}

func TestGameHelpers(t *testing.T) {
	g := Game{"A", "B", "", "D"}

	t.Run("contains", func(t *testing.T) {
		if !g.Contains("D") {
			t.Error("expected D in game")
		}
		if g.Contains("Z") {
			t.Error("did not expect Z in game")
		}
	})

	t.Run("string", func(t *testing.T) {
		if got := g.String(); got != "A, B vs -, D" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("short game string", func(t *testing.T) {
		if got := (Game{"A"}).String(); got != "A, - vs -, -" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("partner", func(t *testing.T) {
		want := []int{1, 0, 3, 2}
		for i, p := range want {
			if Partner(i) != p {
				t.Errorf("Partner(%d) = %d, want %d", i, Partner(i), p)
			}
		}
	})
}

func TestGamesWith(t *testing.T) {
	r := Round{{"A", "B", "C", "D"}, {"A", "E", "F", "G"}, {"H", "I", "J", "K"}}
	if n := r.GamesWith("A"); n != 2 {
		t.Errorf("GamesWith(A) = %d, want 2", n)
	}
	if n := r.GamesWith("H"); n != 1 {
		t.Errorf("GamesWith(H) = %d, want 1", n)
	}
}

func TestClone(t *testing.T) {
	s := Schedule{{{"A", "B", "C", "D"}}}
	c := s.Clone()
	c[0][0][0] = "Z"
	if s[0][0][0] != "A" {
		t.Error("Clone shares storage with original")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := Schedule{
		{{"A", "B", "C", "D"}, {"E", "F", "G", "H"}},
		{{"A", "E", "", ""}, {"", "", "", ""}},
	}
	path := filepath.Join(t.TempDir(), "schedule.json")

	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("round trip = %v, want %v", got, s)
	}
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "hello"},
		{"wrong shape", `{"rounds": 2}`},
		{"numbers", `[[[1,2,3,4]]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCheckName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Alice", false},
		{"Anne Marie", false},
		{"O'Neil-Smith", false},
		{"Vsevolod", false},
		{"Elvis", false},
		{"", true},
		{"   ", true},
		{" Bob", true},
		{"-", true},
		{"Smith, J", true},
		{"A,B", true},
		{"Ann vs Bo", true},
		{"vs", true},
		{"vs Bo", true},
		{"Ann vs", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("CheckName(%q) error = %v, want ErrInvalidName", tt.name, err)
			}
		})
	}
}

func TestCheckGrid(t *testing.T) {
	tests := []struct {
		courts, rounds int
		wantErr        bool
	}{
		{1, 1, false},
		{MaxCourts, 1, false},
		{1, MaxRounds, false},
		{10, MaxSlots / (10 * SlotsPerGame), false},
		{MaxCourts + 1, 1, true},
		{1, MaxRounds + 1, true},
		{10, MaxSlots/(10*SlotsPerGame) + 1, true},
		{1 << 62, 2, true},
	}
	for _, tt := range tests {
		err := CheckGrid(tt.courts, tt.rounds)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckGrid(%d, %d) error = %v, wantErr %v", tt.courts, tt.rounds, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrGridTooLarge) {
			t.Errorf("CheckGrid(%d, %d) error = %v, want ErrGridTooLarge", tt.courts, tt.rounds, err)
		}
	}
}
