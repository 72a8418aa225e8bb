package service

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/peladahub/pelada-service/internal/model"
)

// Leave-priority weights. Higher score leaves sooner; anything at or below
// the flag floor is never suggested, regardless of how thin the bench is.
const (
	scoreGoalkeeper    = -1_000_000
	scoreProtected     = -20_000
	scorePayPerDay     = 10_000
	scoreFullLastMatch = 2_000
	scoreLowAttendance = 1_000
	scoreJitterMax     = 100
	flagFloor          = -5_000
)

// prioritizer ranks current starters by who should be substituted first.
type prioritizer struct {
	rnd *rand.Rand
}

func newPrioritizer(rnd *rand.Rand) *prioritizer {
	return &prioritizer{rnd: rnd}
}

// scoreStarter computes the leave priority for one starter. history must be
// sorted newest first; totalMatches is the full history length.
func (pr *prioritizer) scoreStarter(player model.Player, history []model.MatchResult, totalMatches int) model.LeaveSuggestion {
	// Goalkeepers never leave. Short-circuit before anything else.
	if player.HasPosition(model.Goalkeeper) {
		return model.LeaveSuggestion{
			PlayerID: player.ID,
			Score:    scoreGoalkeeper,
			Reason:   "goalkeeper, never substituted",
		}
	}

	var score float64
	var reasons []string

	if player.Kind == model.PayPerDay {
		score += scorePayPerDay
		reasons = append(reasons, "pay-per-day")
	}

	if len(history) > 0 {
		last := history[0]
		switch {
		case last.WasSubbedOut(player.ID) && player.Kind == model.Monthly:
			// Came off last match; monthly members earn protection now.
			score += scoreProtected
			reasons = append(reasons, "subbed out last match (protected)")
		case last.WasSubbedOut(player.ID):
			// Day-rate players get no protection.
		default:
			if inA, inB := last.OnSide(player.ID); inA || inB {
				score += scoreFullLastMatch
				reasons = append(reasons, "played full last match")
			}
		}
	}

	if player.Kind == model.Monthly && totalMatches > 2 {
		rate := float64(player.Stats.Matches) / float64(totalMatches)
		if rate < 0.5 {
			score += scoreLowAttendance
			reasons = append(reasons, "low attendance rate")
		}
	}

	score += pr.rnd.Float64() * scoreJitterMax

	reason := strings.Join(reasons, " + ")
	if reason == "" {
		reason = "rotation"
	}
	return model.LeaveSuggestion{PlayerID: player.ID, Score: score, Reason: reason}
}

// teamQueue ranks one team's starters by descending leave priority and flags
// the top reserveCount of them, skipping scores at or below the floor.
func (pr *prioritizer) teamQueue(starters []model.Player, history []model.MatchResult, totalMatches, reserveCount int) []model.LeaveSuggestion {
	queue := make([]model.LeaveSuggestion, 0, len(starters))
	for _, p := range starters {
		queue = append(queue, pr.scoreStarter(p, history, totalMatches))
	}
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].Score > queue[j].Score })
	for i := range queue {
		queue[i].ShouldLeave = i < reserveCount && queue[i].Score > flagFloor
	}
	return queue
}
