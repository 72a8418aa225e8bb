// Package contract holds backend-agnostic test suites for repository.Store.
// Each storage implementation wires a factory and gets the same coverage.
package contract

import (
	"context"
	"testing"
	"time"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

// StoreFactory builds a fresh, empty store plus its cleanup.
type StoreFactory func(t *testing.T) (repository.Store, func())

// RunStoreContract exercises the wholesale get/set semantics every Store
// implementation must honor.
func RunStoreContract(t *testing.T, makeStore StoreFactory) {
	t.Helper()

	t.Run("empty_store_yields_defaults", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		players, err := store.GetPlayers(ctx)
		if err != nil {
			t.Fatalf("get players: %v", err)
		}
		if len(players) != 0 {
			t.Fatalf("expected no players, got %d", len(players))
		}

		settings, err := store.GetSettings(ctx)
		if err != nil {
			t.Fatalf("get settings: %v", err)
		}
		if settings != model.DefaultSettings() {
			t.Fatalf("expected default settings, got %+v", settings)
		}

		match, err := store.GetCurrentMatch(ctx)
		if err != nil {
			t.Fatalf("get current match: %v", err)
		}
		if match != nil {
			t.Fatalf("expected no current match, got %+v", match)
		}
	})

	t.Run("players_roundtrip", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		in := []model.Player{
			{ID: "p1", Name: "Rafael", Positions: []model.Position{model.Goalkeeper}, Kind: model.Monthly},
			{ID: "p2", Name: "Bruno", Positions: []model.Position{model.Midfielder, model.Forward}, Kind: model.PayPerDay},
		}
		if err := store.SetPlayers(ctx, in); err != nil {
			t.Fatalf("set players: %v", err)
		}
		out, err := store.GetPlayers(ctx)
		if err != nil {
			t.Fatalf("get players: %v", err)
		}
		if len(out) != 2 || out[0].ID != "p1" || out[1].Name != "Bruno" {
			t.Fatalf("roundtrip mismatch: %+v", out)
		}
		if len(out[1].Positions) != 2 {
			t.Fatalf("positions lost: %+v", out[1])
		}
	})

	t.Run("attendance_roundtrip", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		arrived := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
		in := []model.AttendanceRecord{{PlayerID: "p1", ArrivedAt: arrived}}
		if err := store.SetAttendance(ctx, in); err != nil {
			t.Fatalf("set attendance: %v", err)
		}
		out, err := store.GetAttendance(ctx)
		if err != nil {
			t.Fatalf("get attendance: %v", err)
		}
		if len(out) != 1 || out[0].PlayerID != "p1" || !out[0].ArrivedAt.Equal(arrived) {
			t.Fatalf("roundtrip mismatch: %+v", out)
		}
	})

	t.Run("current_match_set_and_clear", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		m := &model.CurrentMatch{
			TeamA:    []model.Player{{ID: "p1", Name: "Rafael"}},
			TeamB:    []model.Player{{ID: "p2", Name: "Bruno"}},
			Starters: []string{"p1", "p2"},
		}
		if err := store.SetCurrentMatch(ctx, m); err != nil {
			t.Fatalf("set match: %v", err)
		}
		got, err := store.GetCurrentMatch(ctx)
		if err != nil {
			t.Fatalf("get match: %v", err)
		}
		if got == nil || len(got.TeamA) != 1 || got.TeamA[0].ID != "p1" {
			t.Fatalf("roundtrip mismatch: %+v", got)
		}

		if err := store.SetCurrentMatch(ctx, nil); err != nil {
			t.Fatalf("clear match: %v", err)
		}
		got, err = store.GetCurrentMatch(ctx)
		if err != nil {
			t.Fatalf("get after clear: %v", err)
		}
		if got != nil {
			t.Fatalf("expected cleared match, got %+v", got)
		}
	})

	t.Run("settings_roundtrip", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		in := model.Settings{PlayersPerTeam: 7, TacticalSchema: "2-1-2-1", Theme: "dark", AutoBalance: false}
		if err := store.SetSettings(ctx, in); err != nil {
			t.Fatalf("set settings: %v", err)
		}
		out, err := store.GetSettings(ctx)
		if err != nil {
			t.Fatalf("get settings: %v", err)
		}
		if out != in {
			t.Fatalf("roundtrip mismatch: %+v", out)
		}
	})

	t.Run("reset_clears_everything", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		if err := store.SetPlayers(ctx, []model.Player{{ID: "p1", Name: "Rafael"}}); err != nil {
			t.Fatalf("seed players: %v", err)
		}
		if err := store.SetHistory(ctx, []model.MatchResult{{ID: "m1"}}); err != nil {
			t.Fatalf("seed history: %v", err)
		}
		if err := store.Reset(ctx); err != nil {
			t.Fatalf("reset: %v", err)
		}
		players, err := store.GetPlayers(ctx)
		if err != nil {
			t.Fatalf("get players: %v", err)
		}
		if len(players) != 0 {
			t.Fatalf("players survived reset: %+v", players)
		}
		history, err := store.GetHistory(ctx)
		if err != nil {
			t.Fatalf("get history: %v", err)
		}
		if len(history) != 0 {
			t.Fatalf("history survived reset: %+v", history)
		}
	})

	t.Run("ping_ok", func(t *testing.T) {
		store, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		if err := store.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
