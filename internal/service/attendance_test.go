package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

func TestToggle_CheckInAndOut(t *testing.T) {
	store := newFakeStore()
	store.players = []model.Player{mkPlayer("p1", "One", model.Monthly, model.Defender)}

	svc := NewAttendanceService(store, zerolog.Nop())
	ctx := context.Background()

	checkedIn, err := svc.Toggle(ctx, "p1")
	if err != nil {
		t.Fatalf("toggle in: %v", err)
	}
	if !checkedIn {
		t.Fatalf("expected checked in")
	}
	if len(store.attendance) != 1 || store.attendance[0].PlayerID != "p1" {
		t.Fatalf("attendance = %+v", store.attendance)
	}

	checkedIn, err = svc.Toggle(ctx, "p1")
	if err != nil {
		t.Fatalf("toggle out: %v", err)
	}
	if checkedIn {
		t.Fatalf("expected checked out")
	}
	if len(store.attendance) != 0 {
		t.Fatalf("attendance not cleared: %+v", store.attendance)
	}
}

func TestToggle_UnknownPlayer(t *testing.T) {
	store := newFakeStore()
	svc := NewAttendanceService(store, zerolog.Nop())

	_, err := svc.Toggle(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggle_EmptyID(t *testing.T) {
	store := newFakeStore()
	svc := NewAttendanceService(store, zerolog.Nop())

	_, err := svc.Toggle(context.Background(), "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestOrderAttendance_PresentByArrivalAbsentByName(t *testing.T) {
	base := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
	players := []model.Player{
		mkPlayer("p1", "Zico", model.Monthly, model.Midfielder),
		mkPlayer("p2", "André", model.Monthly, model.Defender),
		mkPlayer("p3", "Bruno", model.Monthly, model.Forward),
		mkPlayer("p4", "ana", model.Monthly, model.Defender),
	}
	records := []model.AttendanceRecord{
		{PlayerID: "p3", ArrivedAt: base.Add(5 * time.Minute)},
		{PlayerID: "p1", ArrivedAt: base},
	}

	view := orderAttendance(players, records)

	if len(view.Present) != 2 || view.Present[0].ID != "p1" || view.Present[1].ID != "p3" {
		t.Fatalf("present = %+v", view.Present)
	}
	// Case and accents must not break the alphabetical order.
	if len(view.Absent) != 2 || view.Absent[0].Name != "ana" || view.Absent[1].Name != "André" {
		t.Fatalf("absent = %+v", view.Absent)
	}
}

func TestOrderAttendance_StableOnRepeat(t *testing.T) {
	base := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
	players := []model.Player{
		mkPlayer("p1", "One", model.Monthly, model.Defender),
		mkPlayer("p2", "Two", model.Monthly, model.Midfielder),
		mkPlayer("p3", "Three", model.Monthly, model.Forward),
	}
	records := []model.AttendanceRecord{
		{PlayerID: "p1", ArrivedAt: base},
		{PlayerID: "p2", ArrivedAt: base}, // same instant: roster order wins
	}

	first := orderAttendance(players, records)
	second := orderAttendance(players, records)

	for i := range first.Present {
		if first.Present[i].ID != second.Present[i].ID {
			t.Fatalf("present order unstable at %d", i)
		}
	}
	if first.Present[0].ID != "p1" || first.Present[1].ID != "p2" {
		t.Fatalf("tie not stable: %+v", first.Present)
	}
}
