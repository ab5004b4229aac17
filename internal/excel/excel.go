package excel

import (
	"fmt"
	"strings"

	"github.com/derekprior/doubles/internal/schedule"
	"github.com/derekprior/doubles/internal/validator"
	"github.com/xuri/excelize/v2"
)

const (
	ScheduleSheet = "Schedule"
	PlayersSheet  = "Players"
	emptyCell     = "-"
)

// Generate creates a workbook with the schedule grid and a per-player summary.
// Games holding a same-round duplicate are filled red.
func Generate(s schedule.Schedule, result validator.Result) (*excelize.File, error) {
	if err := checkNames(s); err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	if err := writeScheduleSheet(f, s, result); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}

	if err := writePlayersSheet(f, s, result); err != nil {
		return nil, fmt.Errorf("writing players sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// checkNames refuses names that would not read back from a game cell.
func checkNames(s schedule.Schedule) error {
	for r, round := range s {
		for c, game := range round {
			for _, name := range game {
				if name == schedule.Empty {
					continue
				}
				if err := schedule.CheckName(name); err != nil {
					return fmt.Errorf("round %d court %d: %w", r+1, c+1, err)
				}
			}
		}
	}
	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}

func writeHeaders(f *excelize.File, sheet string, headers []string) error {
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	for i, h := range headers {
		if err := f.SetCellValue(sheet, cellRef(i+1, 1), h); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), style)
}

func writeScheduleSheet(f *excelize.File, s schedule.Schedule, result validator.Result) error {
	sheet := ScheduleSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	courts := s.Courts()
	headers := []string{"Round"}
	for c := 1; c <= courts; c++ {
		headers = append(headers, fmt.Sprintf("Court %d", c))
	}
	if err := writeHeaders(f, sheet, headers); err != nil {
		return err
	}

	gameStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 14, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	conflictStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	// (round, court) -> game contains a player listed twice in that round
	type cellKey struct{ round, court int }
	conflicts := make(map[cellKey]bool)
	for _, d := range result.SameRound {
		for c, game := range s[d.Round] {
			if game.Contains(d.Player) {
				conflicts[cellKey{d.Round, c}] = true
			}
		}
	}

	for r, round := range s {
		row := r + 2
		if err := f.SetCellValue(sheet, cellRef(1, row), fmt.Sprintf("Round %d", r+1)); err != nil {
			return err
		}
		for c, game := range round {
			col := c + 2
			if err := f.SetCellValue(sheet, cellRef(col, row), game.String()); err != nil {
				return err
			}
			style := gameStyle
			if conflicts[cellKey{r, c}] {
				style = conflictStyle
			}
			if err := f.SetCellStyle(sheet, cellRef(col, row), cellRef(col, row), style); err != nil {
				return err
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 12)
	if courts > 0 {
		f.SetColWidth(sheet, colLetter(2), colLetter(courts+1), 36)
	}
	return nil
}

func writePlayersSheet(f *excelize.File, s schedule.Schedule, result validator.Result) error {
	sheet := PlayersSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Player", "Games", "Doesn't Meet", "Consecutive Rounds"}
	if err := writeHeaders(f, sheet, headers); err != nil {
		return err
	}

	unmet := make(map[string][]string)
	for _, u := range result.Unmet {
		unmet[u.Player] = u.Missing
	}
	consecutive := make(map[string][]int)
	for _, c := range result.Consecutive {
		consecutive[c.Player] = c.Rounds
	}

	counts := s.Appearances()
	for i, player := range s.Players() {
		row := i + 2
		rounds := make([]string, len(consecutive[player]))
		for j, r := range consecutive[player] {
			rounds[j] = fmt.Sprint(r + 1)
		}
		values := []interface{}{
			player,
			counts[player],
			strings.Join(unmet[player], ", "),
			strings.Join(rounds, ", "),
		}
		if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 18, "B": 8, "C": 40, "D": 24}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

// ReadSchedule reads the Schedule sheet of a workbook written by Generate.
// Cells are parsed as "A, B vs C, D"; "-" is an empty slot.
func ReadSchedule(path string) (schedule.Schedule, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ScheduleSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ScheduleSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s sheet is empty", ScheduleSheet)
	}

	courts := len(rows[0]) - 1
	var s schedule.Schedule
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		round := make(schedule.Round, courts)
		for c := range round {
			cell := ""
			if c+1 < len(row) {
				cell = row[c+1]
			}
			game, err := parseGameCell(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d court %d: %w", i+1, c+1, err)
			}
			round[c] = game
		}
		s = append(s, round)
	}
	return s, nil
}

// parseGameCell parses "A, B vs C, D". A blank cell is an unfilled game.
func parseGameCell(cell string) (schedule.Game, error) {
	game := make(schedule.Game, schedule.SlotsPerGame)
	if strings.TrimSpace(cell) == "" {
		return game, nil
	}

	sides := strings.Split(cell, " vs ")
	if len(sides) != 2 {
		return nil, fmt.Errorf("invalid game %q", cell)
	}
	i := 0
	for _, side := range sides {
		pair := strings.Split(side, ", ")
		if len(pair) != 2 {
			return nil, fmt.Errorf("invalid pair %q in game %q", side, cell)
		}
		for _, name := range pair {
			name = strings.TrimSpace(name)
			if name != emptyCell {
				game[i] = name
			}
			i++
		}
	}
	return game, nil
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
