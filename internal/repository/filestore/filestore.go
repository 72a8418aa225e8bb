// Package filestore persists each entity kind as a single JSON document on
// local disk. It mirrors the wholesale get/set contract of the store: a Set
// replaces the whole document, a Get of a missing or corrupt document yields
// the default value, never an error.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

// Store is a file-backed repository.Store. Writes go through a temp file and
// rename so a crash mid-write never leaves a truncated document behind.
type Store struct {
	dir string
	log zerolog.Logger
}

// New prepares the data directory and returns a file-backed store.
func New(dir string, logger zerolog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("filestore: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create data dir: %w", err)
	}
	l := logger.With().Str("module", "repository").Str("component", "filestore").Logger()
	return &Store{dir: dir, log: l}, nil
}

var _ repository.Store = (*Store)(nil)

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// read unmarshals the document for key into out. Missing and corrupt files
// both leave out untouched so the caller's default wins.
func (s *Store) read(key string, out any) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("key", key).Msg("unreadable document, using default")
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt document, using default")
	}
}

func (s *Store) write(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: marshal %s: %w", key, err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("filestore: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("filestore: rename %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetPlayers(_ context.Context) ([]model.Player, error) {
	var players []model.Player
	s.read(repository.KeyPlayers, &players)
	return players, nil
}

func (s *Store) SetPlayers(_ context.Context, players []model.Player) error {
	if players == nil {
		players = []model.Player{}
	}
	return s.write(repository.KeyPlayers, players)
}

func (s *Store) GetAttendance(_ context.Context) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	s.read(repository.KeyAttendance, &records)
	return records, nil
}

func (s *Store) SetAttendance(_ context.Context, records []model.AttendanceRecord) error {
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	return s.write(repository.KeyAttendance, records)
}

func (s *Store) GetHistory(_ context.Context) ([]model.MatchResult, error) {
	var history []model.MatchResult
	s.read(repository.KeyHistory, &history)
	return history, nil
}

func (s *Store) SetHistory(_ context.Context, history []model.MatchResult) error {
	if history == nil {
		history = []model.MatchResult{}
	}
	return s.write(repository.KeyHistory, history)
}

func (s *Store) GetSettings(_ context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()
	s.read(repository.KeySettings, &settings)
	return settings, nil
}

func (s *Store) SetSettings(_ context.Context, settings model.Settings) error {
	return s.write(repository.KeySettings, settings)
}

func (s *Store) GetCurrentMatch(_ context.Context) (*model.CurrentMatch, error) {
	var match *model.CurrentMatch
	s.read(repository.KeyCurrentMatch, &match)
	return match, nil
}

func (s *Store) SetCurrentMatch(_ context.Context, m *model.CurrentMatch) error {
	if m == nil {
		err := os.Remove(s.path(repository.KeyCurrentMatch))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("filestore: clear current match: %w", err)
		}
		return nil
	}
	return s.write(repository.KeyCurrentMatch, m)
}

func (s *Store) Reset(_ context.Context) error {
	keys := []string{
		repository.KeyPlayers,
		repository.KeyAttendance,
		repository.KeyHistory,
		repository.KeySettings,
		repository.KeyCurrentMatch,
	}
	for _, key := range keys {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("filestore: reset %s: %w", key, err)
		}
	}
	s.log.Info().Msg("store reset")
	return nil
}

// Ping verifies the data directory is still reachable.
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("filestore: data dir unavailable: %w", err)
	}
	return nil
}
