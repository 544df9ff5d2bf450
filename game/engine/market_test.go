package engine

import (
	"errors"
	"math"
	"testing"
)

func newTestMarket(t *testing.T, rng Random) (*Market, *GameState) {
	t.Helper()
	config := createTestConfig()
	state := InitGameStateFromConfig(config, humans("Ann", "Bob"))
	rules := config.Rules
	ledger := NewLedger(state, &rules, nil)
	return NewMarket(state, &rules, ledger, rng), state
}

func TestMarket_TickBounds(t *testing.T) {
	tests := []struct {
		name   string
		sample float64
		want   int
	}{
		{"largest drop", 0, 80},
		{"no change", 0.5, 100},
		{"near largest rise", 0.999, 119},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, state := newTestMarket(t, &scriptRand{floats: []float64{tt.sample}})
			state.Stocks = state.Stocks[:1]
			s := state.Stocks[0]
			s.Price, s.Volatility = 100, 0.2

			m.Tick()

			if s.Price != tt.want {
				t.Errorf("Expected price %d, got %d", tt.want, s.Price)
			}
			if s.Price < 80 || s.Price > 120 {
				t.Errorf("Price %d outside [80, 120]", s.Price)
			}
			if s.PreviousPrice != 100 {
				t.Errorf("Expected previous price 100, got %d", s.PreviousPrice)
			}
		})
	}
}

func TestMarket_TickFloorAndHistory(t *testing.T) {
	m, state := newTestMarket(t, &scriptRand{})
	s := state.Stocks[0]
	s.Price, s.Volatility = 11, 0.5
	s.History = []int{11}

	for i := 0; i < 15; i++ {
		// Float64 of 0 is the largest drop
		m.rng = &scriptRand{floats: []float64{0, 0}}
		m.Tick()
	}

	if s.Price != 10 {
		t.Errorf("Expected price clamped to floor 10, got %d", s.Price)
	}
	if len(s.History) != 10 {
		t.Errorf("Expected history capped at 10, got %d", len(s.History))
	}
	if s.History[len(s.History)-1] != s.Price {
		t.Errorf("Expected last history entry %d, got %d", s.Price, s.History[len(s.History)-1])
	}
}

func TestMarket_Trade(t *testing.T) {
	m, state := newTestMarket(t, &scriptRand{})
	p := state.Players[0]

	if err := m.Trade(p, " chip ", 3, SideBuy); err != nil {
		t.Fatalf("Failed to buy: %v", err)
	}
	if p.Portfolio["CHIP"].Count != 3 || p.Money != 1350 {
		t.Errorf("Expected 3 CHIP and $1350, got %d and $%d", p.Portfolio["CHIP"].Count, p.Money)
	}

	tests := []struct {
		name    string
		symbol  string
		qty     int
		side    TradeSide
		wantErr error
	}{
		{"unknown symbol", "MOON", 1, SideBuy, ErrUnknownStock},
		{"zero quantity", "CHIP", 0, SideBuy, ErrInvalidQuantity},
		{"too expensive", "RAIL", 100, SideBuy, ErrInsufficientFunds},
		{"quantity overflowing the cost", "CHIP", math.MaxInt64/50 + 1, SideBuy, ErrInsufficientFunds},
		{"oversell", "CHIP", 4, SideSell, ErrInsufficientShares},
		{"bad side", "CHIP", 1, "SHORT", ErrInvalidCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := p.Money
			err := m.Trade(p, tt.symbol, tt.qty, tt.side)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if p.Money != before || p.Portfolio["CHIP"].Count != 3 {
				t.Error("Expected failed trade to have no effect")
			}
		})
	}
}
