package service

import (
	"math/rand"
	"sort"
	"time"

	"github.com/peladahub/pelada-service/internal/model"
)

// repetitionWindow is how many recent results feed the repetition score.
const repetitionWindow = 15

// balancer partitions the arrived-player pool into two rosters. The split is
// deterministic apart from the injected random source, which breaks ties and
// shuffles candidate order; tests pass a seeded source.
type balancer struct {
	rnd *rand.Rand
}

func newBalancer(rnd *rand.Rand) *balancer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &balancer{rnd: rnd}
}

// split distributes the ENTIRE pool over two rosters: goalkeepers first, then
// position categories in a fixed order, then whatever is left. history must
// be sorted newest first.
func (b *balancer) split(pool []model.Player, history []model.MatchResult) (teamA, teamB []model.Player) {
	remaining := b.shuffled(pool)

	take := func(id string) {
		for i, p := range remaining {
			if p.ID == id {
				remaining = append(remaining[:i], remaining[i+1:]...)
				return
			}
		}
	}
	assign := func(p model.Player, toA bool) {
		if toA {
			teamA = append(teamA, p)
		} else {
			teamB = append(teamB, p)
		}
		take(p.ID)
	}

	// Goalkeeper pass: a team without a keeper takes priority.
	var keepers []model.Player
	for _, p := range remaining {
		if p.HasPosition(model.Goalkeeper) {
			keepers = append(keepers, p)
		}
	}
	for _, gk := range keepers {
		inA := countPosition(teamA, model.Goalkeeper)
		inB := countPosition(teamB, model.Goalkeeper)
		switch {
		case inA == 0 && inB > 0:
			assign(gk, true)
		case inB == 0 && inA > 0:
			assign(gk, false)
		default:
			assign(gk, b.bestFit(gk, teamA, teamB, history))
		}
	}

	// Positional pass in a fixed category order. The tactical schema shapes
	// the target formation; here it only dictates which categories exist.
	for _, pos := range []model.Position{model.Defender, model.FullBack, model.Midfielder, model.Forward} {
		var candidates []model.Player
		for _, p := range remaining {
			if p.HasPosition(pos) {
				candidates = append(candidates, p)
			}
		}
		for _, p := range b.shuffled(candidates) {
			assign(p, b.bestFit(p, teamA, teamB, history))
		}
	}

	// Remainder pass: position combinations not covered above.
	for len(remaining) > 0 {
		p := remaining[len(remaining)-1]
		assign(p, b.bestFit(p, teamA, teamB, history))
	}

	return teamA, teamB
}

// bestFit picks the destination team for a candidate: fewer members first,
// then lower repetition score, then a coin flip. Returns true for team A.
func (b *balancer) bestFit(candidate model.Player, teamA, teamB []model.Player, history []model.MatchResult) bool {
	if len(teamA) != len(teamB) {
		return len(teamA) < len(teamB)
	}
	scoreA := repetitionScore(candidate, teamA, history)
	scoreB := repetitionScore(candidate, teamB, history)
	if scoreA != scoreB {
		return scoreA < scoreB
	}
	return b.rnd.Intn(2) == 0
}

func (b *balancer) shuffled(players []model.Player) []model.Player {
	out := make([]model.Player, len(players))
	copy(out, players)
	b.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// repetitionScore measures how often the candidate shared a side with the
// team-so-far across the most recent results. Lower means less historical
// overlap, so the candidate is steered away from their usual group.
func repetitionScore(candidate model.Player, team []model.Player, history []model.MatchResult) int {
	if len(history) == 0 || len(team) == 0 {
		return 0
	}
	window := history
	if len(window) > repetitionWindow {
		window = window[:repetitionWindow]
	}
	teamIDs := make(map[string]bool, len(team))
	for _, p := range team {
		teamIDs[p.ID] = true
	}
	score := 0
	for _, match := range window {
		inA, inB := match.OnSide(candidate.ID)
		if inA {
			for _, p := range match.TeamA {
				if teamIDs[p.ID] {
					score++
				}
			}
		}
		if inB {
			for _, p := range match.TeamB {
				if teamIDs[p.ID] {
					score++
				}
			}
		}
	}
	return score
}

func countPosition(team []model.Player, pos model.Position) int {
	n := 0
	for _, p := range team {
		if p.HasPosition(pos) {
			n++
		}
	}
	return n
}

// determineStarters picks the first limit roster members by arrival order.
// Players missing an arrival timestamp sort to the front, matching the
// zero-default of the legacy data.
func determineStarters(team []model.Player, arrivals map[string]time.Time, limit int) []string {
	sorted := make([]model.Player, len(team))
	copy(sorted, team)
	sort.SliceStable(sorted, func(i, j int) bool {
		return arrivals[sorted[i].ID].Before(arrivals[sorted[j].ID])
	})
	if limit > len(sorted) {
		limit = len(sorted)
	}
	if limit < 0 {
		limit = 0
	}
	starters := make([]string, 0, limit)
	for _, p := range sorted[:limit] {
		starters = append(starters, p.ID)
	}
	return starters
}

// sortHistoryDesc returns the history ordered newest first.
func sortHistoryDesc(history []model.MatchResult) []model.MatchResult {
	out := make([]model.MatchResult, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
