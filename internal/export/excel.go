package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Workbook renders the ranking and match history as an XLSX file with one
// sheet per concern.
func (s *Service) Workbook(ctx context.Context) ([]byte, error) {
	snap, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	ranking := "Ranking"
	history := "History"
	f.NewSheet(ranking)
	f.NewSheet(history)
	f.DeleteSheet("Sheet1")

	headers := []string{"Player", "Kind", "Matches", "Wins", "Draws", "Losses", "Points"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ranking, cell, h)
	}
	row := 2
	for _, p := range snap.Players {
		f.SetCellValue(ranking, fmt.Sprintf("A%d", row), p.Name)
		f.SetCellValue(ranking, fmt.Sprintf("B%d", row), string(p.Kind))
		f.SetCellValue(ranking, fmt.Sprintf("C%d", row), p.Stats.Matches)
		f.SetCellValue(ranking, fmt.Sprintf("D%d", row), p.Stats.Wins)
		f.SetCellValue(ranking, fmt.Sprintf("E%d", row), p.Stats.Draws)
		f.SetCellValue(ranking, fmt.Sprintf("F%d", row), p.Stats.Losses)
		f.SetCellValue(ranking, fmt.Sprintf("G%d", row), p.Stats.Points)
		row++
	}
	f.SetColWidth(ranking, "A", "A", 24)
	f.SetColWidth(ranking, "B", "G", 10)

	historyHeaders := []string{"Date", "Team A", "Score A", "Team B", "Score B", "Winner"}
	for i, h := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(history, cell, h)
	}
	row = 2
	for _, m := range snap.History {
		f.SetCellValue(history, fmt.Sprintf("A%d", row), m.Date.Format(time.RFC3339))
		f.SetCellValue(history, fmt.Sprintf("B%d", row), rosterNames(m.TeamA))
		f.SetCellValue(history, fmt.Sprintf("C%d", row), m.ScoreA)
		f.SetCellValue(history, fmt.Sprintf("D%d", row), rosterNames(m.TeamB))
		f.SetCellValue(history, fmt.Sprintf("E%d", row), m.ScoreB)
		f.SetCellValue(history, fmt.Sprintf("F%d", row), winnerLabel(m.Winner))
		row++
	}
	f.SetColWidth(history, "A", "A", 22)
	f.SetColWidth(history, "B", "F", 30)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
