// Package export produces portable snapshots of all persisted data and
// re-imports them after structural validation.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
	"github.com/peladahub/pelada-service/internal/service"
)

// SnapshotVersion tags exported payloads so future format changes stay
// detectable on import.
const SnapshotVersion = "1.0.0"

// Snapshot is the portable JSON projection of every entity kind.
type Snapshot struct {
	Version      string                   `json:"version"`
	ExportDate   time.Time                `json:"export_date"`
	Players      []model.Player           `json:"players"`
	Attendance   []model.AttendanceRecord `json:"attendance"`
	History      []model.MatchResult      `json:"history"`
	Settings     model.Settings           `json:"settings"`
	CurrentMatch *model.CurrentMatch      `json:"current_match"`
}

type Service struct {
	store repository.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(store repository.Store, logger zerolog.Logger) *Service {
	l := logger.With().Str("module", "export").Logger()
	return &Service{store: store, log: l, now: time.Now}
}

// SnapshotJSON serializes the full application state.
func (s *Service) SnapshotJSON(ctx context.Context) ([]byte, error) {
	snap, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(snap, "", "  ")
}

func (s *Service) collect(ctx context.Context) (Snapshot, error) {
	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	attendance, err := s.store.GetAttendance(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	match, err := s.store.GetCurrentMatch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Version:      SnapshotVersion,
		ExportDate:   s.now(),
		Players:      players,
		Attendance:   attendance,
		History:      history,
		Settings:     settings,
		CurrentMatch: match,
	}, nil
}

// PlayersCSV projects player stats into a spreadsheet-friendly table.
func (s *Service) PlayersCSV(ctx context.Context) ([]byte, error) {
	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Name", "Positions", "Kind", "Matches", "Wins", "Draws", "Losses", "Points"})
	for _, p := range players {
		positions := make([]string, len(p.Positions))
		for i, pos := range p.Positions {
			positions[i] = string(pos)
		}
		_ = w.Write([]string{
			p.Name,
			strings.Join(positions, "; "),
			string(p.Kind),
			fmt.Sprint(p.Stats.Matches),
			fmt.Sprint(p.Stats.Wins),
			fmt.Sprint(p.Stats.Draws),
			fmt.Sprint(p.Stats.Losses),
			fmt.Sprint(p.Stats.Points),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// HistoryCSV projects the match history.
func (s *Service) HistoryCSV(ctx context.Context) ([]byte, error) {
	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Date", "Team A", "Score A", "Team B", "Score B", "Winner"})
	for _, m := range history {
		_ = w.Write([]string{
			m.Date.Format(time.RFC3339),
			rosterNames(m.TeamA),
			fmt.Sprint(m.ScoreA),
			rosterNames(m.TeamB),
			fmt.Sprint(m.ScoreB),
			winnerLabel(m.Winner),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Import replaces all persisted state with a validated snapshot. Invalid
// payloads are rejected before anything is written.
func (s *Service) Import(ctx context.Context, data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return service.NewInvalidInputError([]service.FieldError{{Field: "payload", Message: "not valid JSON"}})
	}
	if ferrs := validateSnapshot(snap); len(ferrs) > 0 {
		return service.NewInvalidInputError(ferrs)
	}

	if err := s.store.SetPlayers(ctx, snap.Players); err != nil {
		return err
	}
	if err := s.store.SetAttendance(ctx, snap.Attendance); err != nil {
		return err
	}
	if err := s.store.SetHistory(ctx, snap.History); err != nil {
		return err
	}
	if snap.Settings != (model.Settings{}) {
		if err := s.store.SetSettings(ctx, snap.Settings); err != nil {
			return err
		}
	}
	if err := s.store.SetCurrentMatch(ctx, snap.CurrentMatch); err != nil {
		return err
	}
	s.log.Info().
		Int("players", len(snap.Players)).
		Int("history", len(snap.History)).
		Msg("snapshot imported")
	return nil
}

func validateSnapshot(snap Snapshot) []service.FieldError {
	var ferrs []service.FieldError
	if snap.Version == "" {
		ferrs = append(ferrs, service.FieldError{Field: "version", Message: "missing version tag"})
	}
	if snap.Players == nil {
		ferrs = append(ferrs, service.FieldError{Field: "players", Message: "must be a list"})
	}
	if snap.History == nil {
		ferrs = append(ferrs, service.FieldError{Field: "history", Message: "must be a list"})
	}
	for i, p := range snap.Players {
		if p.ID == "" || p.Name == "" || len(p.Positions) == 0 || p.Kind == "" {
			ferrs = append(ferrs, service.FieldError{
				Field:   fmt.Sprintf("players[%d]", i),
				Message: "must have id, name, positions and kind",
			})
		}
	}
	return ferrs
}

func rosterNames(players []model.Player) string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return strings.Join(names, "; ")
}

func winnerLabel(w model.Winner) string {
	switch w {
	case model.WinnerA:
		return "Team A"
	case model.WinnerB:
		return "Team B"
	default:
		return "Draw"
	}
}
