package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/derekprior/doubles/internal/schedule"
)

const (
	MinLevel = 1
	MaxLevel = 20
)

// Gender is a player's gender; it accepts "male"/"female" or 0/1 in YAML.
type Gender int

const (
	Male Gender = iota
	Female
)

func (g Gender) String() string {
	if g == Female {
		return "female"
	}
	return "male"
}

func (g *Gender) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(value.Value) {
	case "male", "m", "0":
		*g = Male
	case "female", "f", "1":
		*g = Female
	default:
		return fmt.Errorf("invalid gender %q", value.Value)
	}
	return nil
}

type Player struct {
	Name   string `yaml:"name" json:"name"`
	Level  int    `yaml:"level" json:"level"`
	Gender Gender `yaml:"gender" json:"gender"`
}

// Group is a set of players who partner each other. A roster with a single
// group lets anyone partner anyone.
type Group struct {
	Name    string   `yaml:"name"`
	Players []Player `yaml:"players"`
}

type Generator struct {
	Strategy   string `yaml:"strategy"`
	Iterations int    `yaml:"iterations"`
	Samples    int    `yaml:"samples"`
	Seed       int64  `yaml:"seed"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Roster    []Group   `yaml:"roster"`
	Courts    int       `yaml:"courts"`
	Rounds    int       `yaml:"rounds"`
	Generator Generator `yaml:"generator"`
	Workers   int       `yaml:"workers"`
	Server    Server    `yaml:"server"`
}

// Defaults for fields left unset in the config file.
const (
	DefaultStrategy   = "hill_climb"
	DefaultIterations = 60
	DefaultSamples    = 10000
	DefaultWorkers    = 1
	DefaultAddr       = ":8080"
)

// AllPlayers returns every player across all groups.
func (c *Config) AllPlayers() []Player {
	var players []Player
	for _, g := range c.Roster {
		players = append(players, g.Players...)
	}
	return players
}

// Teams returns the roster as one player list per group.
func (c *Config) Teams() [][]Player {
	teams := make([][]Player, len(c.Roster))
	for i, g := range c.Roster {
		teams[i] = g.Players
	}
	return teams
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) applyDefaults() {
	if c.Generator.Strategy == "" {
		c.Generator.Strategy = DefaultStrategy
	}
	if c.Generator.Iterations == 0 {
		c.Generator.Iterations = DefaultIterations
	}
	if c.Generator.Samples == 0 {
		c.Generator.Samples = DefaultSamples
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// CheckPlayer validates a single roster entry: a name that survives every
// schedule format and a level in range.
func CheckPlayer(p Player) error {
	if err := schedule.CheckName(p.Name); err != nil {
		return err
	}
	if p.Level < MinLevel || p.Level > MaxLevel {
		return fmt.Errorf("player %q: level %d out of range %d-%d", p.Name, p.Level, MinLevel, MaxLevel)
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.Roster) == 0 {
		return fmt.Errorf("at least one roster group is required")
	}
	if c.Courts < 1 {
		return fmt.Errorf("courts must be at least 1, got %d", c.Courts)
	}
	if c.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", c.Rounds)
	}
	if err := schedule.CheckGrid(c.Courts, c.Rounds); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Generator.Iterations < 0 || c.Generator.Samples < 0 {
		return fmt.Errorf("generator iterations and samples must not be negative")
	}
	switch c.Generator.Strategy {
	case "hill_climb", "shuffle":
	default:
		return fmt.Errorf("unknown generator strategy: %q", c.Generator.Strategy)
	}

	// Player names must be unique across all groups
	seen := make(map[string]string)
	for _, g := range c.Roster {
		if len(g.Players) == 0 {
			return fmt.Errorf("group %q has no players", g.Name)
		}
		for _, p := range g.Players {
			if err := CheckPlayer(p); err != nil {
				return fmt.Errorf("group %q: %w", g.Name, err)
			}
			if prev, ok := seen[p.Name]; ok {
				return fmt.Errorf("player %q appears in both %q and %q groups", p.Name, prev, g.Name)
			}
			seen[p.Name] = g.Name
		}
	}

	return nil
}
