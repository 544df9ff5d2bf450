package oracle

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/richman/game/engine"
)

const defaultCategory = "Default"

// DefaultTemplates holds the commentary lines per category. {player} is replaced by the player name.
func DefaultTemplates() map[string][]string {
	return map[string][]string{
		"Rent": {
			"{player} just got fleeced!",
			"Ouch! {player}'s wallet is crying.",
			"Transferring funds... {player} is not happy.",
			"Landlords, am I right?",
			"There goes the profit margin for {player}.",
			"That's a heavy toll, {player}.",
			"Money flows from {player} to the owner.",
		},
		"Buy": {
			"{player} is building an empire!",
			"Prime real estate acquired by {player}.",
			"A solid investment by {player}.",
			"{player} is taking over the board.",
			"Location, location, location!",
			"Smart move, {player}.",
			"Another property for {player}'s portfolio.",
		},
		"Jail": {
			"Lock them up! {player} is down.",
			"{player} needs a good lawyer.",
			"Enjoy the synth-gruel, {player}.",
			"Busted! {player} is in the slammer.",
			"System error: {player} detained.",
			"Do not pass Go, {player}.",
		},
		"Bankrupt": {
			"Game Over for {player}!",
			"{player} has flatlined financially.",
			"Liquidation complete. Bye {player}!",
			"System failure: {player} is out.",
			"Total financial collapse for {player}.",
		},
		"Hospital": {
			"System recharge initiated for {player}.",
			"{player} is offline for maintenance.",
			"Get well soon, {player}.",
			"Medical bills incoming for {player}?",
		},
		"Bank": {
			"{player} is dealing with the loan sharks.",
			"Financial maneuvering by {player}.",
			"Interest rates are killer, {player}.",
			"{player} is trying to balance the books.",
		},
		"Start": {
			"Payday for {player}!",
			"Stimulus credits received.",
			"Go, {player}, Go!",
		},
		defaultCategory: {
			"Interesting move by {player}.",
			"Let's see how this plays out for {player}.",
			"{player} is making moves.",
			"The game heats up.",
			"Roll the dice, take the chance.",
		},
	}
}

// categoryKeywords is checked in order; the first keyword found in the event picks the category
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Rent", []string{"rent", "paid"}},
	{"Buy", []string{"bought", "buy"}},
	{"Jail", []string{"jail", "arrest"}},
	{"Bankrupt", []string{"bankrupt"}},
	{"Hospital", []string{"hospital"}},
	{"Bank", []string{"borrow", "repay", "bank"}},
	{"Start", []string{"start", "go"}},
}

// Category classifies an event tag into a template category
func Category(event string) string {
	lower := strings.ToLower(event)
	for _, c := range categoryKeywords {
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return c.category
			}
		}
	}
	return defaultCategory
}

// TemplateNarrator produces canned commentary without any network access
type TemplateNarrator struct {
	mu        sync.Mutex
	rng       engine.Random
	templates map[string][]string
}

// NewTemplateNarrator creates a narrator. A nil rng seeds one from the clock.
func NewTemplateNarrator(rng engine.Random) *TemplateNarrator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TemplateNarrator{rng: rng, templates: DefaultTemplates()}
}

// Narrate picks a template for the event's category
func (n *TemplateNarrator) Narrate(ctx context.Context, player string, tag engine.EventTag, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lines := n.templates[Category(string(tag))]
	if len(lines) == 0 {
		lines = n.templates[defaultCategory]
	}
	n.mu.Lock()
	line := lines[n.rng.Intn(len(lines))]
	n.mu.Unlock()
	return strings.ReplaceAll(line, "{player}", player), nil
}
