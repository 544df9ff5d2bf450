package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptRand replays fixed values. Intn falls back to 0 and Float64 to 0.5 (no price change).
type scriptRand struct {
	ints   []int
	floats []float64
}

func (r *scriptRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type stubOracle struct {
	event ChanceEvent
	err   error
	calls int
}

func (o *stubOracle) Draw(context.Context) (ChanceEvent, error) {
	o.calls++
	return o.event, o.err
}

type stubNarrator struct {
	tags []EventTag
	fail bool
}

func (n *stubNarrator) Narrate(_ context.Context, player string, tag EventTag, _ string) (string, error) {
	n.tags = append(n.tags, tag)
	if n.fail {
		return "", errors.New("narrator offline")
	}
	return player + " makes headlines.", nil
}

// createTestConfig is a small board:
//
//	outer: 0 Start, 1 Alpha, 2 Bank, 3 Beta, 4 Jail, 5 Exchange, 6 Go To Jail, 7 Airport
//	inner: 8 Hub, 9 Gamma, 10 Chance, 11 Clinic
func createTestConfig() *GameConfig {
	return &GameConfig{
		Name:        "Test Board",
		Description: "Compact board for engine tests",
		Topology: Topology{
			OuterSize: 8,
			InnerSize: 4,
			Hub:       8,
			InnerExit: 7,
			Jail:      4,
			GoToJail:  6,
		},
		Rules: DefaultRules(),
		Tiles: []TileSpec{
			{ID: 0, Name: "Start", Kind: TileStart},
			{ID: 1, Name: "Alpha", Kind: TileProperty, Price: 100, BaseRent: 10, Group: "a"},
			{ID: 2, Name: "Bank", Kind: TileBank},
			{ID: 3, Name: "Beta", Kind: TileProperty, Price: 200, BaseRent: 20, Group: "a"},
			{ID: 4, Name: "Jail", Kind: TileJail},
			{ID: 5, Name: "Exchange", Kind: TileStockMarket},
			{ID: 6, Name: "Go To Jail", Kind: TileParking},
			{ID: 7, Name: "Airport", Kind: TileAirport},
			{ID: 8, Name: "Hub", Kind: TileStart},
			{ID: 9, Name: "Gamma", Kind: TileProperty, Price: 150, BaseRent: 15, Group: "c"},
			{ID: 10, Name: "Chance", Kind: TileChance},
			{ID: 11, Name: "Clinic", Kind: TileHospital, Turns: 1},
		},
		Stocks: []StockSpec{
			{Symbol: "CHIP", Name: "Chip Co", Price: 50, Volatility: 0.2},
			{Symbol: "RAIL", Name: "Rail Co", Price: 200, Volatility: 0.1},
		},
	}
}

func humans(names ...string) []PlayerSetup {
	roster := make([]PlayerSetup, len(names))
	for i, n := range names {
		roster[i] = PlayerSetup{Name: n, Kind: Human}
	}
	return roster
}

func newTestEngine(t *testing.T, roster []PlayerSetup, opts ...Option) *GameEngine {
	t.Helper()
	if roster == nil {
		roster = humans("Ann", "Bob")
	}
	opts = append([]Option{WithRandom(&scriptRand{})}, opts...)
	e, err := NewEngine(createTestConfig(), roster, opts...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Failed to start engine: %v", err)
	}
	return e
}

// drain fires pending transitions until the engine waits for a command
func drain(t *testing.T, e *GameEngine) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if _, ok := e.Pending(); !ok {
			return
		}
		if err := e.Advance(context.Background()); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
	}
	t.Fatal("transitions did not settle")
}

// advanceUntil fires transitions until cond holds
func advanceUntil(t *testing.T, e *GameEngine, cond func() bool) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if cond() {
			return
		}
		if err := e.Advance(context.Background()); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
	}
	t.Fatal("condition never reached")
}

// walk puts the active player in MOVING and starts a move of n steps
func walk(e *GameEngine, n int) {
	e.state.Phase = PhaseMoving
	e.beginMove(n)
}

func own(e *GameEngine, tileID, playerID int) {
	id := playerID
	e.state.Tiles[tileID].OwnerID = &id
}

func logContains(e *GameEngine, text string) bool {
	for _, entry := range e.state.Log {
		if strings.Contains(entry.Message, text) {
			return true
		}
	}
	return false
}
