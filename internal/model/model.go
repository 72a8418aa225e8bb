// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// Position is one of the fixed field positions a player can cover.
type Position string

const (
	Goalkeeper Position = "goalkeeper"
	Defender   Position = "defender"
	FullBack   Position = "fullback"
	Midfielder Position = "midfielder"
	Forward    Position = "forward"
)

// AllPositions lists every valid position in display order.
var AllPositions = []Position{Goalkeeper, Defender, FullBack, Midfielder, Forward}

// MembershipKind distinguishes monthly members from pay-per-day players.
// The substitution engine protects the two kinds differently.
type MembershipKind string

const (
	Monthly   MembershipKind = "monthly"
	PayPerDay MembershipKind = "day"
)

// PlayerStats holds a player's cumulative record across all finished matches.
// Counters only ever grow, except on a full data reset.
type PlayerStats struct {
	Matches int `json:"matches"`
	Wins    int `json:"wins"`
	Draws   int `json:"draws"`
	Losses  int `json:"losses"`
	Points  int `json:"points"`
}

// Player represents a registered member of the group.
type Player struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Positions []Position     `json:"positions"`
	Kind      MembershipKind `json:"kind"`
	Stats     PlayerStats    `json:"stats"`
}

// HasPosition reports whether the player covers the given position.
func (p Player) HasPosition(pos Position) bool {
	for _, pp := range p.Positions {
		if pp == pos {
			return true
		}
	}
	return false
}

// AttendanceRecord marks a player as checked in for the current session.
// At most one record per player exists at any time.
type AttendanceRecord struct {
	PlayerID  string    `json:"player_id"`
	ArrivedAt time.Time `json:"arrived_at"`
}

// Winner identifies the outcome of a finished match.
type Winner string

const (
	WinnerA    Winner = "A"
	WinnerB    Winner = "B"
	WinnerDraw Winner = "draw"
)

// MatchResult is the immutable historical record of one finished match.
// Rosters are full snapshots taken at assignment time; later player edits
// must not alter them.
type MatchResult struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	TeamA     []Player  `json:"team_a"`
	TeamB     []Player  `json:"team_b"`
	ScoreA    int       `json:"score_a"`
	ScoreB    int       `json:"score_b"`
	Winner    Winner    `json:"winner"`
	SubbedOut []string  `json:"subbed_out"`
}

// OnSide reports which roster, if any, the given player id appears on.
func (m MatchResult) OnSide(playerID string) (inA, inB bool) {
	for _, p := range m.TeamA {
		if p.ID == playerID {
			inA = true
			break
		}
	}
	for _, p := range m.TeamB {
		if p.ID == playerID {
			inB = true
			break
		}
	}
	return inA, inB
}

// WasSubbedOut reports whether the given player left the field during the match.
func (m MatchResult) WasSubbedOut(playerID string) bool {
	for _, id := range m.SubbedOut {
		if id == playerID {
			return true
		}
	}
	return false
}

// CurrentMatch is the single in-progress match session. Rosters hold full
// player snapshots, starters/subbedOut hold player ids.
type CurrentMatch struct {
	TeamA     []Player  `json:"team_a"`
	TeamB     []Player  `json:"team_b"`
	ScoreA    int       `json:"score_a"`
	ScoreB    int       `json:"score_b"`
	Starters  []string  `json:"starters"`
	SubbedOut []string  `json:"subbed_out"`
	StartedAt time.Time `json:"started_at"`
	Reasoning string    `json:"reasoning,omitempty"`
}

// IsStarter reports whether the given player currently occupies a field slot.
func (m CurrentMatch) IsStarter(playerID string) bool {
	for _, id := range m.Starters {
		if id == playerID {
			return true
		}
	}
	return false
}

// Settings carries the per-group configuration read by the balancer.
type Settings struct {
	PlayersPerTeam int    `json:"players_per_team"`
	TacticalSchema string `json:"tactical_schema"` // "Def-FB-Mid-Fwd", e.g. "2-2-3-2"
	Theme          string `json:"theme"`           // light or dark
	AutoBalance    bool   `json:"auto_balance"`
}

// DefaultSettings returns the configuration used until the group changes it.
func DefaultSettings() Settings {
	return Settings{
		PlayersPerTeam: 10,
		TacticalSchema: "2-2-3-2",
		Theme:          "light",
		AutoBalance:    true,
	}
}

// RankingEntry is a read-only row of the ranking board: a player plus
// rates derived from the global history. Not persisted directly.
type RankingEntry struct {
	Player         Player  `json:"player"`
	WinRate        float64 `json:"win_rate"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// LeaveSuggestion ranks one starter in the "who leaves next" queue.
type LeaveSuggestion struct {
	PlayerID    string  `json:"player_id"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
	ShouldLeave bool    `json:"should_leave"`
}
