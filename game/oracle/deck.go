package oracle

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/richman/game/engine"
)

// ErrEmptyDeck is returned by a deck with no events
var ErrEmptyDeck = errors.New("chance deck is empty")

// DefaultEvents is the built-in chance deck
func DefaultEvents() []engine.ChanceEvent {
	return []engine.ChanceEvent{
		{Description: "Found a crypto wallet on the ground.", EffectType: engine.EffectMoney, Value: 100},
		{Description: "Server crash! Pay for repairs.", EffectType: engine.EffectMoney, Value: -100},
		{Description: "Speed boost hack enabled.", EffectType: engine.EffectMove, Value: 3},
		{Description: "Hit a firewall. Move back.", EffectType: engine.EffectMove, Value: -2},
		{Description: "Won a hackathon!", EffectType: engine.EffectMoney, Value: 200},
		{Description: "Caught by cyber-police. Bribe paid.", EffectType: engine.EffectMoney, Value: -150},
		{Description: "Stock market crash.", EffectType: engine.EffectMoney, Value: -200},
		{Description: "Tax refund received.", EffectType: engine.EffectMoney, Value: 50},
		{Description: "Short circuit in the suit.", EffectType: engine.EffectMove, Value: -1},
		{Description: "Hyperloop ticket found.", EffectType: engine.EffectMove, Value: 5},
		{Description: "Data leak! Pay hush money.", EffectType: engine.EffectMoney, Value: -80},
		{Description: "Sold an NFT. Nice profit.", EffectType: engine.EffectMoney, Value: 120},
		{Description: "Warp drive malfunction. Move back 3.", EffectType: engine.EffectMove, Value: -3},
		{Description: "Jetpack joyride. Move forward 4.", EffectType: engine.EffectMove, Value: 4},
	}
}

// Deck draws chance events uniformly at random with replacement
type Deck struct {
	mu     sync.Mutex
	rng    engine.Random
	events []engine.ChanceEvent
}

// NewDeck creates a deck. A nil rng seeds one from the clock; nil events use DefaultEvents.
func NewDeck(rng engine.Random, events []engine.ChanceEvent) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if events == nil {
		events = DefaultEvents()
	}
	return &Deck{rng: rng, events: events}
}

// Draw returns a random event
func (d *Deck) Draw(ctx context.Context) (engine.ChanceEvent, error) {
	if err := ctx.Err(); err != nil {
		return engine.ChanceEvent{}, err
	}
	if len(d.events) == 0 {
		return engine.ChanceEvent{}, ErrEmptyDeck
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events[d.rng.Intn(len(d.events))], nil
}

// Size returns the number of events in the deck
func (d *Deck) Size() int {
	return len(d.events)
}
