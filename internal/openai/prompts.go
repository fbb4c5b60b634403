package openai

import (
	"fmt"
	"strings"

	"ghostscout/internal/lol"
)

// AssistantSystemPrompt is used for free-form questions
const AssistantSystemPrompt = "You are a helpful League of Legends assistant. Answer concisely."

const matchupSystemPrompt = "You are a high-elo League of Legends laning coach. " +
	"Give practical advice for the specific matchup, name concrete items, " +
	"and tie strengths and weaknesses to the build and playstyle. Keep it short."

// BuildMatchupPrompts returns the system and user prompts asking for a
// laning analysis of my champion against enemy. winRate is the harvested
// win rate in percent; zero or less leaves it out.
func BuildMatchupPrompts(my, enemy, position string, winRate float64) (system, user string) {
	lane := lol.PositionLabel(position)
	if lane == "" {
		lane = "an unknown lane"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I am playing %s in %s against %s.", my, lane, enemy)
	if winRate > 0 {
		fmt.Fprintf(&b, "\nStatistics give %s a %.1f%% win rate against %s.", my, winRate, enemy)
	}
	b.WriteString("\n\nBriefly cover:\n" +
		"1. Starting items (first items plus consumables)\n" +
		"2. When I am ahead: power spikes, how to play, build path\n" +
		"3. When I am behind: weak windows, how to survive, build path\n" +
		"4. Core items in order\n" +
		"5. Runes and summoner spells\n" +
		"Keep it practical.")

	return matchupSystemPrompt, b.String()
}
