// Package postgres implements the app store on a single key/document table.
// Every entity kind lives in one row; a Set rewrites the whole document,
// matching the wholesale-replace contract of repository.Store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

type kvStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewStore wires a Postgres-backed repository.Store and ensures the backing
// table exists. The schema is tiny and idempotent, so no migration tool is
// involved.
func NewStore(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) (repository.Store, error) {
	if pool == nil {
		return nil, errors.New("postgres: pool is required")
	}
	l := logger.With().Str("module", "repository").Str("component", "postgres").Logger()
	s := &kvStore{pool: pool, log: l}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *kvStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS app_state (
			key        TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", repository.MapPgError(err))
	}
	return nil
}

// getDoc loads and decodes the document for key into out. A missing row or a
// document that no longer decodes both leave out at its default; only real
// transport failures are returned.
func (s *kvStore) getDoc(ctx context.Context, key string, out any) error {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM app_state WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return repository.MapPgError(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt document, using default")
	}
	return nil
}

func (s *kvStore) setDoc(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("postgres: marshal %s: %w", key, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO app_state (key, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		key, raw,
	)
	return repository.MapPgError(err)
}

func (s *kvStore) GetPlayers(ctx context.Context) ([]model.Player, error) {
	var players []model.Player
	if err := s.getDoc(ctx, repository.KeyPlayers, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (s *kvStore) SetPlayers(ctx context.Context, players []model.Player) error {
	if players == nil {
		players = []model.Player{}
	}
	return s.setDoc(ctx, repository.KeyPlayers, players)
}

func (s *kvStore) GetAttendance(ctx context.Context) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	if err := s.getDoc(ctx, repository.KeyAttendance, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *kvStore) SetAttendance(ctx context.Context, records []model.AttendanceRecord) error {
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	return s.setDoc(ctx, repository.KeyAttendance, records)
}

func (s *kvStore) GetHistory(ctx context.Context) ([]model.MatchResult, error) {
	var history []model.MatchResult
	if err := s.getDoc(ctx, repository.KeyHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *kvStore) SetHistory(ctx context.Context, history []model.MatchResult) error {
	if history == nil {
		history = []model.MatchResult{}
	}
	return s.setDoc(ctx, repository.KeyHistory, history)
}

func (s *kvStore) GetSettings(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()
	if err := s.getDoc(ctx, repository.KeySettings, &settings); err != nil {
		return model.DefaultSettings(), err
	}
	return settings, nil
}

func (s *kvStore) SetSettings(ctx context.Context, settings model.Settings) error {
	return s.setDoc(ctx, repository.KeySettings, settings)
}

func (s *kvStore) GetCurrentMatch(ctx context.Context) (*model.CurrentMatch, error) {
	var match *model.CurrentMatch
	if err := s.getDoc(ctx, repository.KeyCurrentMatch, &match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *kvStore) SetCurrentMatch(ctx context.Context, m *model.CurrentMatch) error {
	if m == nil {
		_, err := s.pool.Exec(ctx, `DELETE FROM app_state WHERE key = $1`, repository.KeyCurrentMatch)
		return repository.MapPgError(err)
	}
	return s.setDoc(ctx, repository.KeyCurrentMatch, m)
}

func (s *kvStore) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM app_state`)
	if err != nil {
		return repository.MapPgError(err)
	}
	s.log.Info().Msg("store reset")
	return nil
}

func (s *kvStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ repository.Store = (*kvStore)(nil)
