package engine

import (
	"fmt"
	"math"
	"strings"
)

// Market perturbs stock prices and executes trades through the ledger
type Market struct {
	state  *GameState
	rules  *Rules
	ledger *Ledger
	rng    Random
}

// NewMarket creates a market over the session's stocks
func NewMarket(state *GameState, rules *Rules, ledger *Ledger, rng Random) *Market {
	return &Market{state: state, rules: rules, ledger: ledger, rng: rng}
}

// Tick moves every price by a uniform swing in [-volatility, +volatility], clamped to the floor
func (m *Market) Tick() {
	for _, s := range m.state.Stocks {
		change := m.rng.Float64()*(s.Volatility*2) - s.Volatility
		next := int(math.Floor(float64(s.Price) * (1 + change)))
		next = maxInt(m.rules.StockPriceFloor, next)
		s.PreviousPrice = s.Price
		s.Price = next
		s.History = trimHistory(append(s.History, next), m.rules.StockHistorySize)
	}
}

// Lookup returns the stock for a case-insensitive symbol
func (m *Market) Lookup(symbol string) (*Stock, error) {
	s := FindStock(m.state, strings.ToUpper(strings.TrimSpace(symbol)))
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStock, symbol)
	}
	return s, nil
}

// Trade executes a buy or sell for the player. A failed trade has no effect.
func (m *Market) Trade(p *Player, symbol string, qty int, side TradeSide) error {
	s, err := m.Lookup(symbol)
	if err != nil {
		return err
	}
	switch side {
	case SideBuy:
		if err := m.ledger.BuyShares(p, s, qty); err != nil {
			return err
		}
		m.ledger.note(fmt.Sprintf("%s bought %d %s @ $%d.", p.Name, qty, s.Symbol, s.Price), LogSuccess)
	case SideSell:
		profit, err := m.ledger.SellShares(p, s, qty)
		if err != nil {
			return err
		}
		if profit >= 0 {
			m.ledger.note(fmt.Sprintf("%s sold %d %s. Profit: $%d", p.Name, qty, s.Symbol, profit), LogSuccess)
		} else {
			m.ledger.note(fmt.Sprintf("%s sold %d %s. Loss: $%d", p.Name, qty, s.Symbol, -profit), LogWarning)
		}
	default:
		return fmt.Errorf("%w: unknown trade side '%s'", ErrInvalidCommand, side)
	}
	return nil
}
