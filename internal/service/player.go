package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

type playerService struct {
	store repository.Store
	log   zerolog.Logger
	rnd   *rand.Rand
	newID func() string
}

// NewPlayerService wires roster registration use cases. rnd feeds the demo
// roster generator only; nil means time-seeded.
func NewPlayerService(store repository.Store, rnd *rand.Rand, logger zerolog.Logger) PlayerService {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	l := logger.With().Str("module", "service").Str("component", "player").Logger()
	return &playerService{store: store, log: l, rnd: rnd, newID: uuid.NewString}
}

func validatePlayerInput(name string, positions []model.Position, kind model.MembershipKind) (string, []model.Position, []FieldError) {
	var ferrs []FieldError
	name = strings.TrimSpace(name)
	if name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if ln := len([]rune(name)); ln > 60 {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "length must be <= 60"})
	}
	normalized := normalizePositions(positions)
	if len(normalized) == 0 {
		ferrs = append(ferrs, FieldError{Field: "positions", Message: "must contain at least one valid position"})
	}
	if !isValidKind(kind) {
		ferrs = append(ferrs, FieldError{Field: "kind", Message: "must be monthly or day"})
	}
	return name, normalized, ferrs
}

func (s *playerService) Register(ctx context.Context, name string, positions []model.Position, kind model.MembershipKind) (model.Player, error) {
	start := time.Now()
	name, normalized, ferrs := validatePlayerInput(name, positions, kind)
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("player validation failed")
		return model.Player{}, err
	}

	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return model.Player{}, err
	}

	player := model.Player{
		ID:        s.newID(),
		Name:      name,
		Positions: normalized,
		Kind:      kind,
	}
	if err := s.store.SetPlayers(ctx, append(players, player)); err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("register player failed")
		return model.Player{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("player_id", player.ID).Msg("player registered")
	return player, nil
}

func (s *playerService) Update(ctx context.Context, id, name string, positions []model.Position, kind model.MembershipKind) (model.Player, error) {
	if id == "" {
		return model.Player{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must not be empty"}})
	}
	name, normalized, ferrs := validatePlayerInput(name, positions, kind)
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.Player{}, err
	}

	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return model.Player{}, err
	}
	for i, p := range players {
		if p.ID != id {
			continue
		}
		// Stats are owned by the ranking aggregator; edits never touch them.
		players[i].Name = name
		players[i].Positions = normalized
		players[i].Kind = kind
		if err := s.store.SetPlayers(ctx, players); err != nil {
			return model.Player{}, err
		}
		s.log.Info().Str("player_id", id).Msg("player updated")
		return players[i], nil
	}
	return model.Player{}, repository.ErrNotFound
}

func (s *playerService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return NewInvalidInputError([]FieldError{{Field: "id", Message: "must not be empty"}})
	}
	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return err
	}
	kept := players[:0]
	found := false
	for _, p := range players {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return repository.ErrNotFound
	}
	if err := s.store.SetPlayers(ctx, kept); err != nil {
		return err
	}

	// Deleting a player also purges their attendance record.
	records, err := s.store.GetAttendance(ctx)
	if err != nil {
		return err
	}
	keptRecords := records[:0]
	for _, rec := range records {
		if rec.PlayerID != id {
			keptRecords = append(keptRecords, rec)
		}
	}
	if err := s.store.SetAttendance(ctx, keptRecords); err != nil {
		return err
	}
	s.log.Info().Str("player_id", id).Msg("player deleted")
	return nil
}

func (s *playerService) List(ctx context.Context) ([]model.Player, error) {
	return s.store.GetPlayers(ctx)
}

// demoNames and demoDistribution describe the generated test roster: thirty
// players over a realistic position spread.
var demoNames = []string{
	"Lucas Silva", "Matheus", "Pedro Henrique", "Gabriel", "Felipe", "Thiago", "Arthur", "Davi",
	"Heitor", "Calebe", "Nicolas", "Rafael", "Daniel", "Samuel", "Bruno", "Eduardo",
	"Vitor", "Leonardo", "João", "André", "Ricardo", "Gustavo", "Caio", "Enzo",
	"Igor", "Marcelo", "Renan", "Diego", "Leandro", "Fábio",
}

var demoDistribution = []struct {
	count     int
	positions []model.Position
}{
	{3, []model.Position{model.Goalkeeper}},
	{6, []model.Position{model.Defender}},
	{2, []model.Position{model.Defender, model.FullBack}},
	{4, []model.Position{model.FullBack}},
	{6, []model.Position{model.Midfielder}},
	{2, []model.Position{model.Midfielder, model.Forward}},
	{2, []model.Position{model.Midfielder, model.Defender}},
	{5, []model.Position{model.Forward}},
}

func (s *playerService) SeedDemoRoster(ctx context.Context) ([]model.Player, error) {
	players := make([]model.Player, 0, len(demoNames))
	nameIdx := 0
	for _, group := range demoDistribution {
		for i := 0; i < group.count && nameIdx < len(demoNames); i++ {
			kind := model.Monthly
			if s.rnd.Float64() < 0.3 {
				kind = model.PayPerDay
			}
			players = append(players, model.Player{
				ID:        s.newID(),
				Name:      demoNames[nameIdx],
				Positions: append([]model.Position{}, group.positions...),
				Kind:      kind,
			})
			nameIdx++
		}
	}
	s.rnd.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })

	// History, attendance and any open match reference old ids; clear them
	// so the generated roster starts from a consistent blank state.
	if err := s.store.SetPlayers(ctx, players); err != nil {
		return nil, err
	}
	if err := s.store.SetHistory(ctx, []model.MatchResult{}); err != nil {
		return nil, err
	}
	if err := s.store.SetAttendance(ctx, []model.AttendanceRecord{}); err != nil {
		return nil, err
	}
	if err := s.store.SetCurrentMatch(ctx, nil); err != nil {
		return nil, err
	}
	s.log.Info().Int("count", len(players)).Msg("demo roster generated")
	return players, nil
}
