// Package ai implements the optional balancing collaborator on top of the
// Gemini API. The match service treats it as best effort: any failure here
// ends in a deterministic fallback, never a stuck session.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/service"
)

// promptHistoryWindow is how many recent results the model sees for context.
const promptHistoryWindow = 5

type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	log     zerolog.Logger
}

// NewGeminiClient builds the balancing collaborator. The response is pinned
// to JSON and a low temperature so roster lists come back parseable.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, logger zerolog.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	m := client.GenerativeModel(modelName)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.1)

	l := logger.With().Str("module", "ai").Str("component", "gemini").Logger()
	return &GeminiClient{client: client, model: m, timeout: timeout, log: l}, nil
}

// Close releases the underlying API client.
func (g *GeminiClient) Close() error { return g.client.Close() }

var _ service.BalanceAssistant = (*GeminiClient)(nil)

type suggestionPayload struct {
	TeamA     []string `json:"teamA"`
	TeamB     []string `json:"teamB"`
	Reasoning string   `json:"reasoning"`
}

func (g *GeminiClient) SuggestTeams(ctx context.Context, players []model.Player, perTeam int, history []model.MatchResult, schema string) (service.BalanceSuggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildPrompt(players, perTeam, history, schema)
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return service.BalanceSuggestion{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return service.BalanceSuggestion{}, fmt.Errorf("empty response from AI")
	}
	rawText, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return service.BalanceSuggestion{}, fmt.Errorf("unexpected response format")
	}

	var payload suggestionPayload
	if err := json.Unmarshal([]byte(rawText), &payload); err != nil {
		return service.BalanceSuggestion{}, fmt.Errorf("json unmarshal error: %w | raw: %s", err, rawText)
	}
	g.log.Debug().
		Int("team_a", len(payload.TeamA)).
		Int("team_b", len(payload.TeamB)).
		Msg("balance suggestion received")
	return service.BalanceSuggestion{TeamA: payload.TeamA, TeamB: payload.TeamB, Reasoning: payload.Reasoning}, nil
}

// buildPrompt renders the coaching brief: the present squad with positions
// and rank, recent pairings to avoid repeating, and the target formation.
func buildPrompt(players []model.Player, perTeam int, history []model.MatchResult, schema string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `Act as an experienced football coach. I have %d players present and need
ALL of them split into two balanced squads (Team A and Team B).

Note: only %d players per team are on the field at once, but you must place
EVERY listed player on one of the squads (starters are picked separately by
arrival order; your job is only the technical balance of the full squads).

AVAILABLE PLAYERS:
`, len(players), perTeam)

	for _, p := range players {
		positions := make([]string, len(p.Positions))
		for i, pos := range p.Positions {
			positions[i] = string(pos)
		}
		fmt.Fprintf(&sb, "- %s (positions: %s | rank: %d pts | kind: %s)\n",
			p.Name, strings.Join(positions, ", "), p.Stats.Points, p.Kind)
	}

	sb.WriteString("\nRECENT MATCHES:\n")
	recent := history
	if len(recent) > promptHistoryWindow {
		recent = recent[:promptHistoryWindow]
	}
	if len(recent) == 0 {
		sb.WriteString("none\n")
	}
	for i, m := range recent {
		fmt.Fprintf(&sb, "Match %d (%s): [Team A: %s] vs [Team B: %s]\n",
			i+1, m.Date.Format("2006-01-02"), joinNames(m.TeamA), joinNames(m.TeamB))
	}

	fmt.Fprintf(&sb, `
TARGET FORMATION: %s. Make sure both squads can cover it.

RULES:
1. TOTAL DISTRIBUTION: every listed name must appear in teamA or teamB.
2. BALANCE: spread goalkeepers, defenders, midfielders, forwards and the
   highest-ranked players evenly.
3. ROTATION: avoid repeating the squads from the recent matches; split up
   the usual cliques.
4. OUTPUT: return ONLY JSON with keys "teamA" (array of exact names),
   "teamB" (array of exact names) and "reasoning" (short explanation of
   how you balanced starters and reserves).
`, schema)

	return sb.String()
}

func joinNames(players []model.Player) string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
