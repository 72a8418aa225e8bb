package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

type matchService struct {
	store     repository.Store
	assistant BalanceAssistant
	balancer  *balancer
	priority  *prioritizer
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// NewMatchService owns the in-progress match lifecycle. assistant may be nil;
// the AI path then always falls back to the deterministic balancer. rnd may
// be nil for a time-seeded source; tests inject a seeded one.
func NewMatchService(store repository.Store, assistant BalanceAssistant, rnd *rand.Rand, logger zerolog.Logger) MatchService {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	l := logger.With().Str("module", "service").Str("component", "match").Logger()
	return &matchService{
		store:     store,
		assistant: assistant,
		balancer:  newBalancer(rnd),
		priority:  newPrioritizer(rnd),
		log:       l,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// sessionInput is everything a new match session is derived from.
type sessionInput struct {
	pool     []model.Player // present players, ascending by arrival
	arrivals map[string]time.Time
	history  []model.MatchResult // newest first
	settings model.Settings
}

// loadSessionInput gathers and orders the state a new session needs, and
// enforces the start preconditions.
func (s *matchService) loadSessionInput(ctx context.Context) (sessionInput, error) {
	current, err := s.store.GetCurrentMatch(ctx)
	if err != nil {
		return sessionInput{}, err
	}
	if current != nil {
		return sessionInput{}, ErrMatchInProgress
	}

	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return sessionInput{}, err
	}
	records, err := s.store.GetAttendance(ctx)
	if err != nil {
		return sessionInput{}, err
	}
	pool := orderAttendance(players, records).Present
	if len(pool) < 2 {
		return sessionInput{}, ErrNotEnoughPlayers
	}

	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return sessionInput{}, err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return sessionInput{}, err
	}
	return sessionInput{
		pool:     pool,
		arrivals: arrivalIndex(records),
		history:  sortHistoryDesc(history),
		settings: settings,
	}, nil
}

// openSession snapshots the rosters, derives starters from arrival order and
// persists the new current match.
func (s *matchService) openSession(ctx context.Context, in sessionInput, teamA, teamB []model.Player, reasoning string) (*model.CurrentMatch, error) {
	limit := in.settings.PlayersPerTeam
	starters := determineStarters(teamA, in.arrivals, limit)
	starters = append(starters, determineStarters(teamB, in.arrivals, limit)...)

	match := &model.CurrentMatch{
		TeamA:     clonePlayers(teamA),
		TeamB:     clonePlayers(teamB),
		Starters:  starters,
		SubbedOut: []string{},
		StartedAt: s.now(),
		Reasoning: reasoning,
	}
	if err := s.store.SetCurrentMatch(ctx, match); err != nil {
		return nil, err
	}
	s.log.Info().
		Int("team_a", len(teamA)).
		Int("team_b", len(teamB)).
		Int("starters", len(starters)).
		Msg("match session opened")
	return match, nil
}

func (s *matchService) Start(ctx context.Context) (StartOutcome, error) {
	in, err := s.loadSessionInput(ctx)
	if err != nil {
		return StartOutcome{}, err
	}
	teamA, teamB := s.balancer.split(in.pool, in.history)
	reasoning := fmt.Sprintf(
		"Full squad distributed across both rosters (target shape %s). Starters picked by arrival order.",
		in.settings.TacticalSchema,
	)
	match, err := s.openSession(ctx, in, teamA, teamB, reasoning)
	if err != nil {
		return StartOutcome{}, err
	}
	return StartOutcome{Match: match}, nil
}

func (s *matchService) StartAssisted(ctx context.Context) (StartOutcome, error) {
	in, err := s.loadSessionInput(ctx)
	if err != nil {
		return StartOutcome{}, err
	}
	if s.assistant == nil {
		return s.startFallback(ctx, in, fmt.Errorf("no balance assistant configured"))
	}

	suggestion, err := s.assistant.SuggestTeams(ctx, in.pool, in.settings.PlayersPerTeam, in.history, in.settings.TacticalSchema)
	if err != nil {
		return s.startFallback(ctx, in, err)
	}

	// Resolve names back to players by exact match; unresolved names are
	// dropped silently. Starters are always recomputed from arrival order;
	// an externally suggested starter split is never trusted.
	teamA := resolveByName(in.pool, suggestion.TeamA)
	teamB := resolveByName(in.pool, suggestion.TeamB)
	if len(teamA)+len(teamB) < 2 {
		return s.startFallback(ctx, in, fmt.Errorf("assistant resolved %d of %d players", len(teamA)+len(teamB), len(in.pool)))
	}

	match, err := s.openSession(ctx, in, teamA, teamB, suggestion.Reasoning)
	if err != nil {
		return StartOutcome{}, err
	}
	return StartOutcome{Match: match}, nil
}

// startFallback completes an AI-assisted start with the deterministic
// balancer. The user is informed via the outcome flag, but the action
// still succeeds.
func (s *matchService) startFallback(ctx context.Context, in sessionInput, cause error) (StartOutcome, error) {
	s.log.Warn().Err(cause).Msg("assisted balancing failed, using deterministic balancer")
	teamA, teamB := s.balancer.split(in.pool, in.history)
	reasoning := fmt.Sprintf(
		"Assistant unavailable; squad distributed deterministically (target shape %s). Starters picked by arrival order.",
		in.settings.TacticalSchema,
	)
	match, err := s.openSession(ctx, in, teamA, teamB, reasoning)
	if err != nil {
		return StartOutcome{}, err
	}
	return StartOutcome{Match: match, UsedFallback: true}, nil
}

func (s *matchService) Current(ctx context.Context) (*model.CurrentMatch, error) {
	return s.store.GetCurrentMatch(ctx)
}

func (s *matchService) AdjustScore(ctx context.Context, team string, delta int) (*model.CurrentMatch, error) {
	if team != "A" && team != "B" {
		return nil, NewInvalidInputError([]FieldError{{Field: "team", Message: "must be A or B"}})
	}
	if delta != 1 && delta != -1 {
		return nil, NewInvalidInputError([]FieldError{{Field: "delta", Message: "must be +1 or -1"}})
	}
	match, err := s.store.GetCurrentMatch(ctx)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrNoActiveMatch
	}

	if team == "A" {
		match.ScoreA = max(0, match.ScoreA+delta)
	} else {
		match.ScoreB = max(0, match.ScoreB+delta)
	}
	if err := s.store.SetCurrentMatch(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) Suggestions(ctx context.Context) (SuggestionBoard, error) {
	match, err := s.store.GetCurrentMatch(ctx)
	if err != nil {
		return SuggestionBoard{}, err
	}
	if match == nil {
		return SuggestionBoard{}, ErrNoActiveMatch
	}
	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return SuggestionBoard{}, err
	}
	return s.board(match, history), nil
}

// board builds the per-team leave queues for the current starters.
func (s *matchService) board(match *model.CurrentMatch, history []model.MatchResult) SuggestionBoard {
	sorted := sortHistoryDesc(history)
	total := len(history)
	startersA, reservesA := splitRoster(match.TeamA, match)
	startersB, reservesB := splitRoster(match.TeamB, match)
	return SuggestionBoard{
		TeamA: s.priority.teamQueue(startersA, sorted, total, len(reservesA)),
		TeamB: s.priority.teamQueue(startersB, sorted, total, len(reservesB)),
	}
}

func (s *matchService) Halftime(ctx context.Context) (*model.CurrentMatch, error) {
	match, err := s.store.GetCurrentMatch(ctx)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrNoActiveMatch
	}
	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return nil, err
	}
	board := s.board(match, history)

	_, reservesA := splitRoster(match.TeamA, match)
	_, reservesB := splitRoster(match.TeamB, match)

	swapsA := s.halftimeTeam(match, board.TeamA, reservesA)
	swapsB := s.halftimeTeam(match, board.TeamB, reservesB)
	match.Reasoning = fmt.Sprintf("Halftime: %d swaps on team A and %d on team B by leave priority.", swapsA, swapsB)

	if err := s.store.SetCurrentMatch(ctx, match); err != nil {
		return nil, err
	}
	s.log.Info().Int("swaps_a", swapsA).Int("swaps_b", swapsB).Msg("halftime substitutions applied")
	return match, nil
}

// halftimeTeam applies index-paired swaps: the i-th leave-priority starter
// goes off for the i-th reserve, in the reserves' existing order.
func (s *matchService) halftimeTeam(match *model.CurrentMatch, queue []model.LeaveSuggestion, reserves []model.Player) int {
	swaps := min(len(reserves), len(queue))
	for i := 0; i < swaps; i++ {
		leaving := queue[i].PlayerID
		entering := reserves[i].ID
		match.Starters = removeID(match.Starters, leaving)
		match.Starters = append(match.Starters, entering)
		match.SubbedOut = appendUnique(match.SubbedOut, leaving)
	}
	return swaps
}

func (s *matchService) Swap(ctx context.Context, starterID, reserveID string) (*model.CurrentMatch, error) {
	var ferrs []FieldError
	if starterID == "" {
		ferrs = append(ferrs, FieldError{Field: "starter_id", Message: "must not be empty"})
	}
	if reserveID == "" {
		ferrs = append(ferrs, FieldError{Field: "reserve_id", Message: "must not be empty"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return nil, err
	}

	match, err := s.store.GetCurrentMatch(ctx)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrNoActiveMatch
	}

	starterInA := rosterHas(match.TeamA, starterID)
	starterInB := rosterHas(match.TeamB, starterID)
	reserveInA := rosterHas(match.TeamA, reserveID)
	reserveInB := rosterHas(match.TeamB, reserveID)

	if (!starterInA && !starterInB) || !match.IsStarter(starterID) {
		ferrs = append(ferrs, FieldError{Field: "starter_id", Message: "must be a current starter"})
	}
	if (!reserveInA && !reserveInB) || match.IsStarter(reserveID) {
		ferrs = append(ferrs, FieldError{Field: "reserve_id", Message: "must be a rostered reserve"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return nil, err
	}

	sameTeam := (starterInA && reserveInA) || (starterInB && reserveInB)
	if !sameTeam {
		// Cross-team transfer: exchange roster membership for this session
		// before the usual starter/reserve status swap.
		starter, _ := takePlayer(&match.TeamA, &match.TeamB, starterID)
		reserve, _ := takePlayer(&match.TeamA, &match.TeamB, reserveID)
		if starterInA {
			match.TeamA = append(match.TeamA, reserve)
			match.TeamB = append(match.TeamB, starter)
		} else {
			match.TeamB = append(match.TeamB, reserve)
			match.TeamA = append(match.TeamA, starter)
		}
	}

	match.Starters = removeID(match.Starters, starterID)
	match.Starters = append(match.Starters, reserveID)
	match.SubbedOut = appendUnique(match.SubbedOut, starterID)

	if err := s.store.SetCurrentMatch(ctx, match); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("out", starterID).
		Str("in", reserveID).
		Bool("cross_team", !sameTeam).
		Msg("substitution applied")
	return match, nil
}

func (s *matchService) Finish(ctx context.Context) (model.MatchResult, error) {
	match, err := s.store.GetCurrentMatch(ctx)
	if err != nil {
		return model.MatchResult{}, err
	}
	if match == nil {
		return model.MatchResult{}, ErrNoActiveMatch
	}
	if len(match.TeamA) == 0 && len(match.TeamB) == 0 {
		// Degenerate but not fatal: record what we have.
		s.log.Warn().Msg("finishing a match with empty rosters")
	}

	result := model.MatchResult{
		ID:        s.newID(),
		Date:      s.now(),
		TeamA:     clonePlayers(match.TeamA),
		TeamB:     clonePlayers(match.TeamB),
		ScoreA:    match.ScoreA,
		ScoreB:    match.ScoreB,
		Winner:    computeWinner(match.ScoreA, match.ScoreB),
		SubbedOut: append([]string{}, match.SubbedOut...),
	}

	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return model.MatchResult{}, err
	}
	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return model.MatchResult{}, err
	}
	records, err := s.store.GetAttendance(ctx)
	if err != nil {
		return model.MatchResult{}, err
	}
	presentIDs := make(map[string]bool, len(records))
	for _, rec := range records {
		presentIDs[rec.PlayerID] = true
	}

	if err := s.store.SetHistory(ctx, append(history, result)); err != nil {
		return model.MatchResult{}, err
	}
	if err := s.store.SetPlayers(ctx, applyResult(players, result, presentIDs)); err != nil {
		return model.MatchResult{}, err
	}
	// The session is over: everyone checks in again next time.
	if err := s.store.SetAttendance(ctx, []model.AttendanceRecord{}); err != nil {
		return model.MatchResult{}, err
	}
	if err := s.store.SetCurrentMatch(ctx, nil); err != nil {
		return model.MatchResult{}, err
	}

	s.log.Info().
		Str("match_id", result.ID).
		Int("score_a", result.ScoreA).
		Int("score_b", result.ScoreB).
		Str("winner", string(result.Winner)).
		Msg("match finished")
	return result, nil
}

func (s *matchService) Abort(ctx context.Context) error {
	if err := s.store.SetCurrentMatch(ctx, nil); err != nil {
		return err
	}
	s.log.Info().Msg("match session discarded")
	return nil
}

// --- helpers ---

// splitRoster divides one roster into starters (in roster order) and reserves.
func splitRoster(roster []model.Player, match *model.CurrentMatch) (starters, reserves []model.Player) {
	for _, p := range roster {
		if match.IsStarter(p.ID) {
			starters = append(starters, p)
		} else {
			reserves = append(reserves, p)
		}
	}
	return starters, reserves
}

// clonePlayers deep-copies roster snapshots so later player edits never
// retroactively alter an in-progress match or a historical record.
func clonePlayers(players []model.Player) []model.Player {
	out := make([]model.Player, len(players))
	for i, p := range players {
		p.Positions = append([]model.Position{}, p.Positions...)
		out[i] = p
	}
	return out
}

func resolveByName(pool []model.Player, names []string) []model.Player {
	var out []model.Player
	for _, name := range names {
		for _, p := range pool {
			if p.Name == name {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func rosterHas(roster []model.Player, id string) bool {
	for _, p := range roster {
		if p.ID == id {
			return true
		}
	}
	return false
}

// takePlayer removes the player with the given id from whichever roster holds
// it and returns the removed snapshot.
func takePlayer(teamA, teamB *[]model.Player, id string) (model.Player, bool) {
	for i, p := range *teamA {
		if p.ID == id {
			*teamA = append((*teamA)[:i], (*teamA)[i+1:]...)
			return p, true
		}
	}
	for i, p := range *teamB {
		if p.ID == id {
			*teamB = append((*teamB)[:i], (*teamB)[i+1:]...)
			return p, true
		}
	}
	return model.Player{}, false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func appendUnique(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}
