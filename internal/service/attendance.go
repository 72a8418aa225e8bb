package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

type attendanceService struct {
	store repository.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewAttendanceService wires check-in toggling and arrival ordering.
func NewAttendanceService(store repository.Store, logger zerolog.Logger) AttendanceService {
	l := logger.With().Str("module", "service").Str("component", "attendance").Logger()
	return &attendanceService{store: store, log: l, now: time.Now}
}

func (s *attendanceService) Toggle(ctx context.Context, playerID string) (bool, error) {
	if playerID == "" {
		return false, NewInvalidInputError([]FieldError{{Field: "player_id", Message: "must not be empty"}})
	}
	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return false, err
	}
	if !playerExists(players, playerID) {
		return false, repository.ErrNotFound
	}

	records, err := s.store.GetAttendance(ctx)
	if err != nil {
		return false, err
	}
	for i, rec := range records {
		if rec.PlayerID == playerID {
			records = append(records[:i], records[i+1:]...)
			if err := s.store.SetAttendance(ctx, records); err != nil {
				return false, err
			}
			s.log.Info().Str("player_id", playerID).Msg("player checked out")
			return false, nil
		}
	}

	records = append(records, model.AttendanceRecord{PlayerID: playerID, ArrivedAt: s.now()})
	if err := s.store.SetAttendance(ctx, records); err != nil {
		return false, err
	}
	s.log.Info().Str("player_id", playerID).Msg("player checked in")
	return true, nil
}

func (s *attendanceService) View(ctx context.Context) (AttendanceView, error) {
	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return AttendanceView{}, err
	}
	records, err := s.store.GetAttendance(ctx)
	if err != nil {
		return AttendanceView{}, err
	}
	return orderAttendance(players, records), nil
}

// orderAttendance is the pure ordering rule: present players ascending by
// arrival with stable ties, absent players by locale-collated name. Calling
// it twice on unchanged input yields identical sequences.
func orderAttendance(players []model.Player, records []model.AttendanceRecord) AttendanceView {
	arrivals := arrivalIndex(records)

	view := AttendanceView{Present: []model.Player{}, Absent: []model.Player{}}
	for _, p := range players {
		if _, ok := arrivals[p.ID]; ok {
			view.Present = append(view.Present, p)
		} else {
			view.Absent = append(view.Absent, p)
		}
	}

	sort.SliceStable(view.Present, func(i, j int) bool {
		return arrivals[view.Present[i].ID].Before(arrivals[view.Present[j].ID])
	})

	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(view.Absent, func(i, j int) bool {
		return col.CompareString(view.Absent[i].Name, view.Absent[j].Name) < 0
	})
	return view
}

func arrivalIndex(records []model.AttendanceRecord) map[string]time.Time {
	arrivals := make(map[string]time.Time, len(records))
	for _, rec := range records {
		arrivals[rec.PlayerID] = rec.ArrivedAt
	}
	return arrivals
}

func playerExists(players []model.Player, id string) bool {
	for _, p := range players {
		if p.ID == id {
			return true
		}
	}
	return false
}
