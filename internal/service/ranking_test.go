package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
)

func TestComputeWinner(t *testing.T) {
	if got := computeWinner(2, 1); got != model.WinnerA {
		t.Fatalf("2-1 = %s, want A", got)
	}
	if got := computeWinner(0, 3); got != model.WinnerB {
		t.Fatalf("0-3 = %s, want B", got)
	}
	if got := computeWinner(1, 1); got != model.WinnerDraw {
		t.Fatalf("1-1 = %s, want draw", got)
	}
}

func TestApplyResult_WinLossAccounting(t *testing.T) {
	winner := mkPlayer("w", "Winner", model.Monthly, model.Forward)
	loser := mkPlayer("l", "Loser", model.Monthly, model.Defender)
	absent := mkPlayer("x", "Absent", model.Monthly, model.Midfielder)

	result := model.MatchResult{
		TeamA:  []model.Player{winner},
		TeamB:  []model.Player{loser},
		ScoreA: 2, ScoreB: 1,
		Winner: model.WinnerA,
	}

	out := applyResult([]model.Player{winner, loser, absent}, result, map[string]bool{"w": true, "l": true})

	if s := out[0].Stats; s.Matches != 1 || s.Wins != 1 || s.Points != pointsWin {
		t.Fatalf("winner stats = %+v", s)
	}
	if s := out[1].Stats; s.Matches != 1 || s.Losses != 1 || s.Points != pointsLoss {
		t.Fatalf("loser stats = %+v", s)
	}
	if s := out[2].Stats; s != (model.PlayerStats{}) {
		t.Fatalf("absent player stats changed: %+v", s)
	}
}

func TestApplyResult_DrawGivesPresentNonParticipantsAPoint(t *testing.T) {
	a := mkPlayer("a", "A", model.Monthly, model.Forward)
	b := mkPlayer("b", "B", model.Monthly, model.Defender)
	benched := mkPlayer("c", "Benched", model.Monthly, model.Midfielder)
	home := mkPlayer("d", "Home", model.Monthly, model.Midfielder)

	result := model.MatchResult{
		TeamA:  []model.Player{a},
		TeamB:  []model.Player{b},
		Winner: model.WinnerDraw,
	}
	present := map[string]bool{"a": true, "b": true, "c": true}

	out := applyResult([]model.Player{a, b, benched, home}, result, present)

	if s := out[0].Stats; s.Draws != 1 || s.Points != pointsDraw || s.Matches != 1 {
		t.Fatalf("participant stats = %+v", s)
	}
	// Present but off both rosters: a point, no match counted.
	if s := out[2].Stats; s.Points != pointsDraw || s.Matches != 0 {
		t.Fatalf("benched stats = %+v", s)
	}
	// Not present at all: untouched.
	if s := out[3].Stats; s != (model.PlayerStats{}) {
		t.Fatalf("home stats changed: %+v", s)
	}
}

func TestSortRanking_Order(t *testing.T) {
	players := []model.Player{
		{ID: "lowpts", Stats: model.PlayerStats{Points: 3, Wins: 1, Matches: 1}},
		{ID: "toppts", Stats: model.PlayerStats{Points: 9, Wins: 3, Matches: 4}},
		{ID: "fewerwins", Stats: model.PlayerStats{Points: 6, Wins: 1, Matches: 4}},
		{ID: "morewins", Stats: model.PlayerStats{Points: 6, Wins: 2, Matches: 4}},
		{ID: "fewergames", Stats: model.PlayerStats{Points: 6, Wins: 2, Matches: 2}},
	}
	sortRanking(players)

	want := []string{"toppts", "fewergames", "morewins", "fewerwins", "lowpts"}
	for i, id := range want {
		if players[i].ID != id {
			t.Fatalf("rank %d = %s, want %s", i, players[i].ID, id)
		}
	}
}

func TestRankingBoard_Rates(t *testing.T) {
	store := newFakeStore()
	store.players = []model.Player{
		{ID: "p1", Name: "One", Stats: model.PlayerStats{Matches: 4, Wins: 2, Points: 7}},
		{ID: "p2", Name: "Two", Stats: model.PlayerStats{}},
	}
	store.history = []model.MatchResult{
		{ID: "m1", Date: time.Now()},
		{ID: "m2", Date: time.Now()},
		{ID: "m3", Date: time.Now()},
		{ID: "m4", Date: time.Now()},
	}

	svc := NewRankingService(store, zerolog.Nop())
	board, err := svc.Board(context.Background())
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("board size = %d", len(board))
	}
	if board[0].Player.ID != "p1" {
		t.Fatalf("top of board = %s", board[0].Player.ID)
	}
	if board[0].WinRate != 0.5 {
		t.Fatalf("win rate = %v", board[0].WinRate)
	}
	if board[0].AttendanceRate != 1.0 {
		t.Fatalf("attendance rate = %v", board[0].AttendanceRate)
	}
	// Zero matches must not divide by zero.
	if board[1].WinRate != 0 || board[1].AttendanceRate != 0 {
		t.Fatalf("idle player rates = %+v", board[1])
	}
}

func TestRankingHistory_NewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.history = []model.MatchResult{
		{ID: "old", Date: base},
		{ID: "new", Date: base.Add(48 * time.Hour)},
		{ID: "mid", Date: base.Add(24 * time.Hour)},
	}

	svc := NewRankingService(store, zerolog.Nop())
	got, err := svc.History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("history[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}
