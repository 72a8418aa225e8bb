// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/peladahub/pelada-service/internal/model"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// Precondition failures of the match session. All of them leave stored state
// untouched; handlers map them to refusals, never to crashes.
var (
	ErrNoActiveMatch    = errors.New("no active match")
	ErrMatchInProgress  = errors.New("match already in progress")
	ErrNotEnoughPlayers = errors.New("not enough players present")
)

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// PlayerService defines roster registration use cases.
type PlayerService interface {
	Register(ctx context.Context, name string, positions []model.Position, kind model.MembershipKind) (model.Player, error)
	Update(ctx context.Context, id, name string, positions []model.Position, kind model.MembershipKind) (model.Player, error)
	// Delete removes a player and purges their attendance record.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Player, error)
	// SeedDemoRoster replaces all data with a generated 30-player roster.
	SeedDemoRoster(ctx context.Context) ([]model.Player, error)
}

// AttendanceView is the two ordered sequences derived from raw attendance.
type AttendanceView struct {
	Present []model.Player `json:"present"` // ascending by arrival
	Absent  []model.Player `json:"absent"`  // by name, locale-aware
}

// AttendanceService defines check-in use cases.
type AttendanceService interface {
	// Toggle checks a player in or out and reports the resulting state.
	Toggle(ctx context.Context, playerID string) (checkedIn bool, err error)
	View(ctx context.Context) (AttendanceView, error)
}

// SuggestionBoard carries the per-team "who leaves next" queues, ranked by
// descending leave priority.
type SuggestionBoard struct {
	TeamA []model.LeaveSuggestion `json:"team_a"`
	TeamB []model.LeaveSuggestion `json:"team_b"`
}

// StartOutcome reports how a match session was created.
type StartOutcome struct {
	Match *model.CurrentMatch `json:"match"`
	// UsedFallback is true when the AI path failed and the deterministic
	// balancer completed the action instead.
	UsedFallback bool `json:"used_fallback,omitempty"`
}

// MatchService owns the single in-progress match session.
type MatchService interface {
	// Start partitions the present players deterministically and opens a session.
	Start(ctx context.Context) (StartOutcome, error)
	// StartAssisted asks the AI collaborator for a split, falling back to the
	// deterministic balancer on any failure.
	StartAssisted(ctx context.Context) (StartOutcome, error)
	Current(ctx context.Context) (*model.CurrentMatch, error)
	// AdjustScore applies a ±1 delta to one team's score, clamped at zero.
	AdjustScore(ctx context.Context, team string, delta int) (*model.CurrentMatch, error)
	// Suggestions ranks current starters by who should be substituted first.
	Suggestions(ctx context.Context) (SuggestionBoard, error)
	// Halftime swaps the top-priority starters for reserves, per team.
	Halftime(ctx context.Context) (*model.CurrentMatch, error)
	// Swap exchanges one starter with one reserve, possibly across teams.
	Swap(ctx context.Context, starterID, reserveID string) (*model.CurrentMatch, error)
	// Finish closes the session: records the result, folds stats, clears
	// attendance and the current match.
	Finish(ctx context.Context) (model.MatchResult, error)
	// Abort discards the session without recording anything.
	Abort(ctx context.Context) error
}

// RankingService exposes the points table and match history.
type RankingService interface {
	Board(ctx context.Context) ([]model.RankingEntry, error)
	History(ctx context.Context) ([]model.MatchResult, error)
}

// SettingsService defines configuration use cases.
type SettingsService interface {
	Get(ctx context.Context) (model.Settings, error)
	Update(ctx context.Context, s model.Settings) (model.Settings, error)
	// ResetAll wipes every entity kind: players, attendance, history,
	// settings and any in-progress match.
	ResetAll(ctx context.Context) error
}

// BalanceSuggestion is what the AI collaborator proposes: full rosters by
// display name plus its explanation.
type BalanceSuggestion struct {
	TeamA     []string
	TeamB     []string
	Reasoning string
}

// BalanceAssistant is the optional external AI collaborator. The match
// service must work fully without one.
type BalanceAssistant interface {
	SuggestTeams(ctx context.Context, players []model.Player, perTeam int, history []model.MatchResult, schema string) (BalanceSuggestion, error)
}
