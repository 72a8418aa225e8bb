package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

type settingsService struct {
	store repository.Store
	log   zerolog.Logger
}

// NewSettingsService wires configuration reads, updates and the full reset.
func NewSettingsService(store repository.Store, logger zerolog.Logger) SettingsService {
	l := logger.With().Str("module", "service").Str("component", "settings").Logger()
	return &settingsService{store: store, log: l}
}

func (s *settingsService) Get(ctx context.Context) (model.Settings, error) {
	return s.store.GetSettings(ctx)
}

func (s *settingsService) Update(ctx context.Context, settings model.Settings) (model.Settings, error) {
	var ferrs []FieldError
	if settings.PlayersPerTeam < 1 || settings.PlayersPerTeam > 11 {
		ferrs = append(ferrs, FieldError{Field: "players_per_team", Message: "must be between 1 and 11"})
	}
	if !isValidTacticalSchema(settings.TacticalSchema) {
		ferrs = append(ferrs, FieldError{Field: "tactical_schema", Message: "must be four dash-separated non-negative integers"})
	}
	if !isValidTheme(settings.Theme) {
		ferrs = append(ferrs, FieldError{Field: "theme", Message: "must be light or dark"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("settings validation failed")
		return model.Settings{}, err
	}

	if err := s.store.SetSettings(ctx, settings); err != nil {
		return model.Settings{}, err
	}
	s.log.Info().
		Int("players_per_team", settings.PlayersPerTeam).
		Str("schema", settings.TacticalSchema).
		Msg("settings updated")
	return settings, nil
}

func (s *settingsService) ResetAll(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.log.Warn().Msg("all data wiped")
	return nil
}
