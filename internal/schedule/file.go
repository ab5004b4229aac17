package schedule

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseJSON decodes the nested-array paste format: [[["A","B","C","D"], ...], ...].
func ParseJSON(data []byte) (Schedule, error) {
	var s Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schedule: %w", err)
	}
	return s, nil
}

// LoadFile reads a JSON schedule from disk.
func LoadFile(path string) (Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schedule file: %w", err)
	}
	return ParseJSON(data)
}

// MarshalIndent encodes the schedule in the paste format.
func (s Schedule) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// SaveFile writes the schedule as JSON.
func (s Schedule) SaveFile(path string) error {
	data, err := s.MarshalIndent()
	if err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing schedule: %w", err)
	}
	return nil
}
