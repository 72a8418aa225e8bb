package service

import (
	"context"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

// fakeStore is an in-memory repository.Store for service tests. Optional
// error hooks let individual tests inject storage failures.
type fakeStore struct {
	players    []model.Player
	attendance []model.AttendanceRecord
	history    []model.MatchResult
	settings   *model.Settings
	match      *model.CurrentMatch

	failSetPlayers error
	failSetMatch   error
}

func newFakeStore() *fakeStore { return &fakeStore{} }

var _ repository.Store = (*fakeStore)(nil)

func (f *fakeStore) GetPlayers(context.Context) ([]model.Player, error) {
	return append([]model.Player{}, f.players...), nil
}

func (f *fakeStore) SetPlayers(_ context.Context, players []model.Player) error {
	if f.failSetPlayers != nil {
		return f.failSetPlayers
	}
	f.players = append([]model.Player{}, players...)
	return nil
}

func (f *fakeStore) GetAttendance(context.Context) ([]model.AttendanceRecord, error) {
	return append([]model.AttendanceRecord{}, f.attendance...), nil
}

func (f *fakeStore) SetAttendance(_ context.Context, records []model.AttendanceRecord) error {
	f.attendance = append([]model.AttendanceRecord{}, records...)
	return nil
}

func (f *fakeStore) GetHistory(context.Context) ([]model.MatchResult, error) {
	return append([]model.MatchResult{}, f.history...), nil
}

func (f *fakeStore) SetHistory(_ context.Context, history []model.MatchResult) error {
	f.history = append([]model.MatchResult{}, history...)
	return nil
}

func (f *fakeStore) GetSettings(context.Context) (model.Settings, error) {
	if f.settings == nil {
		return model.DefaultSettings(), nil
	}
	return *f.settings, nil
}

func (f *fakeStore) SetSettings(_ context.Context, settings model.Settings) error {
	f.settings = &settings
	return nil
}

func (f *fakeStore) GetCurrentMatch(context.Context) (*model.CurrentMatch, error) {
	if f.match == nil {
		return nil, nil
	}
	cp := *f.match
	return &cp, nil
}

func (f *fakeStore) SetCurrentMatch(_ context.Context, m *model.CurrentMatch) error {
	if f.failSetMatch != nil {
		return f.failSetMatch
	}
	if m == nil {
		f.match = nil
		return nil
	}
	cp := *m
	f.match = &cp
	return nil
}

func (f *fakeStore) Reset(context.Context) error {
	*f = fakeStore{}
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }
