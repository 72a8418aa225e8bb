package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

// Points awarded per finished match.
const (
	pointsWin  = 3
	pointsDraw = 1
	pointsLoss = 0
)

type rankingService struct {
	store repository.Store
	log   zerolog.Logger
}

// NewRankingService exposes the points table and the match history.
func NewRankingService(store repository.Store, logger zerolog.Logger) RankingService {
	l := logger.With().Str("module", "service").Str("component", "ranking").Logger()
	return &rankingService{store: store, log: l}
}

func (s *rankingService) Board(ctx context.Context) ([]model.RankingEntry, error) {
	players, err := s.store.GetPlayers(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return nil, err
	}

	sorted := make([]model.Player, len(players))
	copy(sorted, players)
	sortRanking(sorted)

	total := len(history)
	board := make([]model.RankingEntry, 0, len(sorted))
	for _, p := range sorted {
		entry := model.RankingEntry{Player: p}
		if p.Stats.Matches > 0 {
			entry.WinRate = float64(p.Stats.Wins) / float64(p.Stats.Matches)
		}
		if total > 0 {
			entry.AttendanceRate = float64(p.Stats.Matches) / float64(total)
		}
		board = append(board, entry)
	}
	return board, nil
}

func (s *rankingService) History(ctx context.Context) ([]model.MatchResult, error) {
	history, err := s.store.GetHistory(ctx)
	if err != nil {
		return nil, err
	}
	return sortHistoryDesc(history), nil
}

// sortRanking orders players by points desc, wins desc, then matches asc:
// fewer games with an equal record ranks higher.
func sortRanking(players []model.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i].Stats, players[j].Stats
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Matches < b.Matches
	})
}

// applyResult folds one finished match into every player's cumulative stats.
// Participants get matches+1 and exactly one of win/draw/loss; players who
// were present but left off both rosters get a single point when the match
// ends in a draw, and nothing otherwise.
func applyResult(players []model.Player, result model.MatchResult, presentIDs map[string]bool) []model.Player {
	out := make([]model.Player, len(players))
	for i, player := range players {
		inA, inB := result.OnSide(player.ID)

		if !inA && !inB {
			if result.Winner == model.WinnerDraw && presentIDs[player.ID] {
				player.Stats.Points += pointsDraw
			}
			out[i] = player
			continue
		}

		player.Stats.Matches++
		switch {
		case result.Winner == model.WinnerDraw:
			player.Stats.Draws++
			player.Stats.Points += pointsDraw
		case (result.Winner == model.WinnerA && inA) || (result.Winner == model.WinnerB && inB):
			player.Stats.Wins++
			player.Stats.Points += pointsWin
		default:
			player.Stats.Losses++
			player.Stats.Points += pointsLoss
		}
		out[i] = player
	}
	return out
}

// computeWinner applies strict score comparison.
func computeWinner(scoreA, scoreB int) model.Winner {
	switch {
	case scoreA > scoreB:
		return model.WinnerA
	case scoreB > scoreA:
		return model.WinnerB
	default:
		return model.WinnerDraw
	}
}
