package repository

import (
	"context"

	"github.com/peladahub/pelada-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store declares persistence for the five entity kinds the app owns.
// Each Set replaces the persisted value wholesale; each Get returns the
// zero/default value when the entity is absent or corrupt. Corrupt data is
// treated identically to absent data and must never surface as an error.
type Store interface {
	Pinger

	GetPlayers(ctx context.Context) ([]model.Player, error)
	SetPlayers(ctx context.Context, players []model.Player) error

	GetAttendance(ctx context.Context) ([]model.AttendanceRecord, error)
	SetAttendance(ctx context.Context, records []model.AttendanceRecord) error

	GetHistory(ctx context.Context) ([]model.MatchResult, error)
	SetHistory(ctx context.Context, history []model.MatchResult) error

	GetSettings(ctx context.Context) (model.Settings, error)
	SetSettings(ctx context.Context, s model.Settings) error

	// GetCurrentMatch returns nil when no match is in progress.
	GetCurrentMatch(ctx context.Context) (*model.CurrentMatch, error)
	// SetCurrentMatch with nil clears the in-progress match.
	SetCurrentMatch(ctx context.Context, m *model.CurrentMatch) error

	// Reset wipes every entity kind. Used by the full data reset only.
	Reset(ctx context.Context) error
}

// Entity keys shared by store implementations, mirroring the legacy
// storage layout so exported snapshots stay portable.
const (
	KeyPlayers      = "players"
	KeyAttendance   = "attendance"
	KeyHistory      = "history"
	KeySettings     = "settings"
	KeyCurrentMatch = "current_match"
)
