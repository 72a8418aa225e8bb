package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
	"github.com/peladahub/pelada-service/internal/repository/contract"
)

func TestStore_FileContract(t *testing.T) {
	contract.RunStoreContract(t, func(t *testing.T) (repository.Store, func()) {
		store, err := New(t.TempDir(), zerolog.Nop())
		if err != nil {
			t.Fatalf("new store: %v", err)
		}
		return store, func() {}
	})
}

func TestStore_CorruptDocumentYieldsDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.SetPlayers(ctx, []model.Player{{ID: "p1", Name: "One"}}); err != nil {
		t.Fatalf("set players: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "players.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}

	players, err := store.GetPlayers(ctx)
	if err != nil {
		t.Fatalf("corrupt document surfaced an error: %v", err)
	}
	if len(players) != 0 {
		t.Fatalf("corrupt document yielded data: %+v", players)
	}

	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("[1,2]"), 0o644); err != nil {
		t.Fatalf("corrupt settings: %v", err)
	}
	settings, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings != model.DefaultSettings() {
		t.Fatalf("corrupt settings yielded %+v", settings)
	}
}

func TestStore_WritesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.SetPlayers(ctx, []model.Player{{ID: "p1", Name: "One"}}); err != nil {
		t.Fatalf("set players: %v", err)
	}

	reopened, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	players, err := reopened.GetPlayers(ctx)
	if err != nil {
		t.Fatalf("get players: %v", err)
	}
	if len(players) != 1 || players[0].ID != "p1" {
		t.Fatalf("players after reopen = %+v", players)
	}
}

func TestStore_NoLeftoverTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.SetHistory(context.Background(), []model.MatchResult{{ID: "m1"}}); err != nil {
		t.Fatalf("set history: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}
