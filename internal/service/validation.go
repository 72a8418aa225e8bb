package service

import (
	"strconv"
	"strings"

	"github.com/peladahub/pelada-service/internal/model"
)

func isValidPosition(pos model.Position) bool {
	switch pos {
	case model.Goalkeeper, model.Defender, model.FullBack, model.Midfielder, model.Forward:
		return true
	default:
		return false
	}
}

func isValidKind(kind model.MembershipKind) bool {
	return kind == model.Monthly || kind == model.PayPerDay
}

func isValidTheme(theme string) bool {
	return theme == "light" || theme == "dark"
}

// normalizePositions trims the set to valid, deduplicated positions in input order.
func normalizePositions(positions []model.Position) []model.Position {
	seen := make(map[model.Position]bool, len(positions))
	out := make([]model.Position, 0, len(positions))
	for _, pos := range positions {
		p := model.Position(strings.ToLower(strings.TrimSpace(string(pos))))
		if !isValidPosition(p) || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// tacticalQuotas is the parsed target shape: defender, fullback, midfielder
// and forward counts. A target, not a hard cap.
type tacticalQuotas struct {
	Defenders   int
	FullBacks   int
	Midfielders int
	Forwards    int
}

// parseTacticalSchema parses "d-l-m-f" into quotas. Malformed schemas fall
// back to the default shape so a bad setting never blocks a draw.
func parseTacticalSchema(schema string) tacticalQuotas {
	fallback := tacticalQuotas{Defenders: 2, FullBacks: 2, Midfielders: 3, Forwards: 2}
	parts := strings.Split(strings.TrimSpace(schema), "-")
	if len(parts) != 4 {
		return fallback
	}
	counts := make([]int, 4)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return fallback
		}
		counts[i] = n
	}
	return tacticalQuotas{Defenders: counts[0], FullBacks: counts[1], Midfielders: counts[2], Forwards: counts[3]}
}

func isValidTacticalSchema(schema string) bool {
	parts := strings.Split(strings.TrimSpace(schema), "-")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return false
		}
	}
	return true
}
