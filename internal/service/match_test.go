package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
)

func newMatchFixture(store *fakeStore, assistant BalanceAssistant, seed int64) MatchService {
	return NewMatchService(store, assistant, rand.New(rand.NewSource(seed)), zerolog.Nop())
}

func seedPresence(store *fakeStore, players ...model.Player) {
	base := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
	store.players = append(store.players, players...)
	for i, p := range players {
		store.attendance = append(store.attendance, model.AttendanceRecord{
			PlayerID:  p.ID,
			ArrivedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestStart_RequiresTwoPresent(t *testing.T) {
	store := newFakeStore()
	seedPresence(store, mkPlayer("p1", "One", model.Monthly, model.Defender))

	svc := newMatchFixture(store, nil, 1)
	_, err := svc.Start(context.Background())
	if !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
}

func TestStart_RefusesSecondSession(t *testing.T) {
	store := newFakeStore()
	seedPresence(store,
		mkPlayer("p1", "One", model.Monthly, model.Defender),
		mkPlayer("p2", "Two", model.Monthly, model.Midfielder),
	)
	store.match = &model.CurrentMatch{}

	svc := newMatchFixture(store, nil, 1)
	_, err := svc.Start(context.Background())
	if !errors.Is(err, ErrMatchInProgress) {
		t.Fatalf("expected ErrMatchInProgress, got %v", err)
	}
}

func TestStart_AssignsEveryonePresent(t *testing.T) {
	store := newFakeStore()
	seedPresence(store,
		mkPlayer("gk1", "Keeper A", model.Monthly, model.Goalkeeper),
		mkPlayer("gk2", "Keeper B", model.Monthly, model.Goalkeeper),
		mkPlayer("d1", "Def One", model.Monthly, model.Defender),
		mkPlayer("d2", "Def Two", model.Monthly, model.Defender),
		mkPlayer("m1", "Mid One", model.Monthly, model.Midfielder),
		mkPlayer("f1", "Fwd One", model.PayPerDay, model.Forward),
	)
	// Absent player must not be drafted.
	store.players = append(store.players, mkPlayer("home", "Stayed Home", model.Monthly, model.Forward))

	svc := newMatchFixture(store, nil, 3)
	out, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if out.UsedFallback {
		t.Fatalf("deterministic start flagged as fallback")
	}

	match := out.Match
	if got := len(match.TeamA) + len(match.TeamB); got != 6 {
		t.Fatalf("rostered %d players, want 6", got)
	}
	for _, p := range append(append([]model.Player{}, match.TeamA...), match.TeamB...) {
		if p.ID == "home" {
			t.Fatalf("absent player drafted")
		}
	}
	if store.match == nil {
		t.Fatalf("session not persisted")
	}
	// Everyone fits on the field with the default limit, so all are starters.
	if len(match.Starters) != 6 {
		t.Fatalf("starters = %v", match.Starters)
	}
}

func TestStart_StartersLimitedPerTeam(t *testing.T) {
	store := newFakeStore()
	store.settings = &model.Settings{PlayersPerTeam: 1, TacticalSchema: "2-2-3-2", Theme: "light"}
	seedPresence(store,
		mkPlayer("p1", "One", model.Monthly, model.Defender),
		mkPlayer("p2", "Two", model.Monthly, model.Midfielder),
		mkPlayer("p3", "Three", model.Monthly, model.Forward),
		mkPlayer("p4", "Four", model.Monthly, model.Defender),
	)

	svc := newMatchFixture(store, nil, 3)
	out, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(out.Match.Starters) != 2 {
		t.Fatalf("starters = %v, want one per team", out.Match.Starters)
	}
}

type stubAssistant struct {
	suggestion BalanceSuggestion
	err        error
	calls      int
}

func (s *stubAssistant) SuggestTeams(context.Context, []model.Player, int, []model.MatchResult, string) (BalanceSuggestion, error) {
	s.calls++
	return s.suggestion, s.err
}

func TestStartAssisted_UsesSuggestion(t *testing.T) {
	store := newFakeStore()
	seedPresence(store,
		mkPlayer("p1", "One", model.Monthly, model.Defender),
		mkPlayer("p2", "Two", model.Monthly, model.Midfielder),
		mkPlayer("p3", "Three", model.Monthly, model.Forward),
		mkPlayer("p4", "Four", model.Monthly, model.Defender),
	)
	assistant := &stubAssistant{suggestion: BalanceSuggestion{
		TeamA:     []string{"One", "Four"},
		TeamB:     []string{"Two", "Three", "Nobody"},
		Reasoning: "spread the defenders",
	}}

	svc := newMatchFixture(store, assistant, 1)
	out, err := svc.StartAssisted(context.Background())
	if err != nil {
		t.Fatalf("start assisted: %v", err)
	}
	if out.UsedFallback {
		t.Fatalf("suggestion accepted but flagged as fallback")
	}
	if assistant.calls != 1 {
		t.Fatalf("assistant called %d times", assistant.calls)
	}

	match := out.Match
	if len(match.TeamA) != 2 || match.TeamA[0].ID != "p1" || match.TeamA[1].ID != "p4" {
		t.Fatalf("team A = %+v", match.TeamA)
	}
	// Unknown names are dropped, known ones resolved in order.
	if len(match.TeamB) != 2 || match.TeamB[0].ID != "p2" || match.TeamB[1].ID != "p3" {
		t.Fatalf("team B = %+v", match.TeamB)
	}
	if match.Reasoning != "spread the defenders" {
		t.Fatalf("reasoning = %q", match.Reasoning)
	}
}

func TestStartAssisted_FallsBackOnError(t *testing.T) {
	store := newFakeStore()
	seedPresence(store,
		mkPlayer("p1", "One", model.Monthly, model.Defender),
		mkPlayer("p2", "Two", model.Monthly, model.Midfielder),
	)
	assistant := &stubAssistant{err: fmt.Errorf("quota exceeded")}

	svc := newMatchFixture(store, assistant, 1)
	out, err := svc.StartAssisted(context.Background())
	if err != nil {
		t.Fatalf("start assisted: %v", err)
	}
	if !out.UsedFallback {
		t.Fatalf("expected fallback outcome")
	}
	if got := len(out.Match.TeamA) + len(out.Match.TeamB); got != 2 {
		t.Fatalf("fallback rostered %d players", got)
	}
}

func TestStartAssisted_NilAssistantFallsBack(t *testing.T) {
	store := newFakeStore()
	seedPresence(store,
		mkPlayer("p1", "One", model.Monthly, model.Defender),
		mkPlayer("p2", "Two", model.Monthly, model.Midfielder),
	)

	svc := newMatchFixture(store, nil, 1)
	out, err := svc.StartAssisted(context.Background())
	if err != nil {
		t.Fatalf("start assisted: %v", err)
	}
	if !out.UsedFallback {
		t.Fatalf("expected fallback outcome")
	}
}

func TestStartAssisted_FallsBackWhenNamesUnresolvable(t *testing.T) {
	store := newFakeStore()
	seedPresence(store,
		mkPlayer("p1", "One", model.Monthly, model.Defender),
		mkPlayer("p2", "Two", model.Monthly, model.Midfielder),
	)
	assistant := &stubAssistant{suggestion: BalanceSuggestion{
		TeamA: []string{"Stranger"},
		TeamB: []string{"Unknown"},
	}}

	svc := newMatchFixture(store, assistant, 1)
	out, err := svc.StartAssisted(context.Background())
	if err != nil {
		t.Fatalf("start assisted: %v", err)
	}
	if !out.UsedFallback {
		t.Fatalf("expected fallback when nothing resolves")
	}
}

func TestAdjustScore_ClampsAndValidates(t *testing.T) {
	store := newFakeStore()
	store.match = &model.CurrentMatch{}
	svc := newMatchFixture(store, nil, 1)
	ctx := context.Background()

	match, err := svc.AdjustScore(ctx, "A", 1)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if match.ScoreA != 1 {
		t.Fatalf("score A = %d", match.ScoreA)
	}

	// Decrement below zero clamps.
	match, err = svc.AdjustScore(ctx, "B", -1)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if match.ScoreB != 0 {
		t.Fatalf("score B = %d", match.ScoreB)
	}

	if _, err := svc.AdjustScore(ctx, "C", 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad team: %v", err)
	}
	if _, err := svc.AdjustScore(ctx, "A", 2); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad delta: %v", err)
	}
}

func TestMatchOps_RequireActiveSession(t *testing.T) {
	store := newFakeStore()
	svc := newMatchFixture(store, nil, 1)
	ctx := context.Background()

	if _, err := svc.AdjustScore(ctx, "A", 1); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("adjust: %v", err)
	}
	if _, err := svc.Suggestions(ctx); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("suggestions: %v", err)
	}
	if _, err := svc.Halftime(ctx); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("halftime: %v", err)
	}
	if _, err := svc.Swap(ctx, "a", "b"); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("swap: %v", err)
	}
	if _, err := svc.Finish(ctx); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("finish: %v", err)
	}
}

func TestHalftime_SwapsByLeavePriority(t *testing.T) {
	gk := mkPlayer("gk", "Keeper", model.Monthly, model.Goalkeeper)
	day := mkPlayer("day", "Day Player", model.PayPerDay, model.Forward)
	reserve := mkPlayer("res", "Reserve", model.Monthly, model.Midfielder)
	solo := mkPlayer("solo", "Solo", model.Monthly, model.Defender)

	store := newFakeStore()
	store.match = &model.CurrentMatch{
		TeamA:     []model.Player{gk, day, reserve},
		TeamB:     []model.Player{solo},
		Starters:  []string{"gk", "day", "solo"},
		SubbedOut: []string{},
	}

	svc := newMatchFixture(store, nil, 1)
	match, err := svc.Halftime(context.Background())
	if err != nil {
		t.Fatalf("halftime: %v", err)
	}

	// Team A has one reserve, so exactly one swap: the day player leaves,
	// the keeper stays. Team B has no bench and stays untouched.
	if match.IsStarter("day") {
		t.Fatalf("day player still on the field")
	}
	if !match.IsStarter("res") {
		t.Fatalf("reserve did not enter")
	}
	if !match.IsStarter("gk") {
		t.Fatalf("goalkeeper was substituted")
	}
	if !match.IsStarter("solo") {
		t.Fatalf("team B starter touched")
	}
	found := false
	for _, id := range match.SubbedOut {
		if id == "day" {
			found = true
		}
	}
	if !found {
		t.Fatalf("subbed-out list = %v", match.SubbedOut)
	}
}

func TestSwap_SameTeam(t *testing.T) {
	starter := mkPlayer("s", "Starter", model.Monthly, model.Defender)
	reserve := mkPlayer("r", "Reserve", model.Monthly, model.Midfielder)

	store := newFakeStore()
	store.match = &model.CurrentMatch{
		TeamA:     []model.Player{starter, reserve},
		TeamB:     []model.Player{},
		Starters:  []string{"s"},
		SubbedOut: []string{},
	}

	svc := newMatchFixture(store, nil, 1)
	match, err := svc.Swap(context.Background(), "s", "r")
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if match.IsStarter("s") || !match.IsStarter("r") {
		t.Fatalf("starters = %v", match.Starters)
	}
	if len(match.SubbedOut) != 1 || match.SubbedOut[0] != "s" {
		t.Fatalf("subbed out = %v", match.SubbedOut)
	}
}

func TestSwap_CrossTeamMovesMembership(t *testing.T) {
	starter := mkPlayer("s", "Starter", model.Monthly, model.Defender)
	mateA := mkPlayer("a2", "Mate A", model.Monthly, model.Midfielder)
	reserve := mkPlayer("r", "Reserve", model.Monthly, model.Forward)

	store := newFakeStore()
	store.match = &model.CurrentMatch{
		TeamA:     []model.Player{starter, mateA},
		TeamB:     []model.Player{reserve},
		Starters:  []string{"s", "a2"},
		SubbedOut: []string{},
	}

	svc := newMatchFixture(store, nil, 1)
	match, err := svc.Swap(context.Background(), "s", "r")
	if err != nil {
		t.Fatalf("swap: %v", err)
	}

	if !rosterHas(match.TeamA, "r") || rosterHas(match.TeamA, "s") {
		t.Fatalf("team A after cross swap = %+v", match.TeamA)
	}
	if !rosterHas(match.TeamB, "s") || rosterHas(match.TeamB, "r") {
		t.Fatalf("team B after cross swap = %+v", match.TeamB)
	}
	if match.IsStarter("s") || !match.IsStarter("r") {
		t.Fatalf("starters = %v", match.Starters)
	}
}

func TestSwap_RejectsInvalidPair(t *testing.T) {
	starter := mkPlayer("s", "Starter", model.Monthly, model.Defender)
	reserve := mkPlayer("r", "Reserve", model.Monthly, model.Midfielder)

	store := newFakeStore()
	store.match = &model.CurrentMatch{
		TeamA:    []model.Player{starter, reserve},
		Starters: []string{"s"},
	}
	svc := newMatchFixture(store, nil, 1)
	ctx := context.Background()

	// Reserve passed as starter.
	if _, err := svc.Swap(ctx, "r", "s"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	// Unrostered ids.
	if _, err := svc.Swap(ctx, "ghost", "r"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Swap(ctx, "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFinish_RecordsFoldsAndClears(t *testing.T) {
	a := mkPlayer("a", "Alpha", model.Monthly, model.Defender)
	b := mkPlayer("b", "Beta", model.Monthly, model.Midfielder)
	bench := mkPlayer("c", "Bench", model.Monthly, model.Forward)

	store := newFakeStore()
	store.players = []model.Player{a, b, bench}
	store.attendance = []model.AttendanceRecord{
		{PlayerID: "a", ArrivedAt: time.Now()},
		{PlayerID: "b", ArrivedAt: time.Now()},
		{PlayerID: "c", ArrivedAt: time.Now()},
	}
	store.match = &model.CurrentMatch{
		TeamA:     []model.Player{a},
		TeamB:     []model.Player{b},
		ScoreA:    2,
		ScoreB:    1,
		Starters:  []string{"a", "b"},
		SubbedOut: []string{},
	}

	svc := newMatchFixture(store, nil, 1)
	result, err := svc.Finish(context.Background())
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	if result.Winner != model.WinnerA || result.ScoreA != 2 || result.ScoreB != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.ID == "" {
		t.Fatalf("result id empty")
	}
	if len(store.history) != 1 || store.history[0].ID != result.ID {
		t.Fatalf("history = %+v", store.history)
	}
	if store.match != nil {
		t.Fatalf("current match not cleared")
	}
	if len(store.attendance) != 0 {
		t.Fatalf("attendance not cleared: %+v", store.attendance)
	}

	byID := map[string]model.Player{}
	for _, p := range store.players {
		byID[p.ID] = p
	}
	if s := byID["a"].Stats; s.Wins != 1 || s.Matches != 1 || s.Points != 3 {
		t.Fatalf("winner stats = %+v", s)
	}
	if s := byID["b"].Stats; s.Losses != 1 || s.Matches != 1 || s.Points != 0 {
		t.Fatalf("loser stats = %+v", s)
	}
	// Present but off both rosters, decisive result: untouched.
	if s := byID["c"].Stats; s != (model.PlayerStats{}) {
		t.Fatalf("bench stats = %+v", s)
	}
}

func TestFinish_SnapshotsSurvivePlayerEdits(t *testing.T) {
	a := mkPlayer("a", "Alpha", model.Monthly, model.Defender)
	b := mkPlayer("b", "Beta", model.Monthly, model.Midfielder)

	store := newFakeStore()
	store.players = []model.Player{a, b}
	store.match = &model.CurrentMatch{
		TeamA:    []model.Player{a},
		TeamB:    []model.Player{b},
		Starters: []string{"a", "b"},
	}

	svc := newMatchFixture(store, nil, 1)
	result, err := svc.Finish(context.Background())
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	// Rename the player afterwards; the recorded roster keeps the old name.
	store.players[0].Name = "Renamed"
	if result.TeamA[0].Name != "Alpha" {
		t.Fatalf("snapshot name = %q", result.TeamA[0].Name)
	}
	if store.history[0].TeamA[0].Name != "Alpha" {
		t.Fatalf("stored snapshot name = %q", store.history[0].TeamA[0].Name)
	}
}

func TestAbort_DiscardsSession(t *testing.T) {
	store := newFakeStore()
	store.match = &model.CurrentMatch{ScoreA: 3}

	svc := newMatchFixture(store, nil, 1)
	if err := svc.Abort(context.Background()); err != nil {
		t.Fatalf("abort: %v", err)
	}
	if store.match != nil {
		t.Fatalf("match survived abort")
	}
	if len(store.history) != 0 {
		t.Fatalf("abort recorded history: %+v", store.history)
	}
}
