package engine

import (
	"fmt"
	"math"
	"sort"
)

// Ledger is the only writer of player money, loans, holdings and property ownership
type Ledger struct {
	state *GameState
	rules *Rules
	note  func(msg string, kind LogType)
}

// NewLedger creates a ledger over a session state. note receives narrated events and may be nil.
func NewLedger(state *GameState, rules *Rules, note func(string, LogType)) *Ledger {
	if note == nil {
		note = func(string, LogType) {}
	}
	return &Ledger{state: state, rules: rules, note: note}
}

// ApplyDelta adds a signed amount to a player's money. Bankrupt players are frozen.
func (l *Ledger) ApplyDelta(p *Player, amount int) {
	if p.Bankrupt {
		return
	}
	p.Money += amount
}

// OwnedTiles returns the properties owned by a player, cheapest first
func (l *Ledger) OwnedTiles(p *Player) []*Tile {
	var owned []*Tile
	for _, t := range l.state.Tiles {
		if t.OwnerID != nil && *t.OwnerID == p.ID {
			owned = append(owned, t)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		if owned[i].Price != owned[j].Price {
			return owned[i].Price < owned[j].Price
		}
		return owned[i].ID < owned[j].ID
	})
	return owned
}

// ChargeWithForcedLiquidation sells the player's cheapest properties at listed price until
// money covers amountDue or nothing is left. It returns the collectible amount, which is
// less than amountDue only when the player owns no properties afterwards.
func (l *Ledger) ChargeWithForcedLiquidation(p *Player, amountDue int) int {
	if p.Bankrupt || amountDue <= 0 {
		return 0
	}
	for _, t := range l.OwnedTiles(p) {
		if p.Money >= amountDue {
			break
		}
		t.OwnerID = nil
		t.Houses = 0
		p.Money += t.Price
		l.note(fmt.Sprintf("%s sold %s to the bank for $%d to cover a debt.", p.Name, t.Name, t.Price), LogWarning)
	}
	if p.Money < 0 {
		return 0
	}
	return minInt(p.Money, amountDue)
}

// Collect charges amountDue (liquidating if needed), pays it to payee when non-nil,
// and marks the payer bankrupt when the charge could not be covered in full.
func (l *Ledger) Collect(p *Player, amountDue int, payee *Player) (paid int, bankrupt bool) {
	if p.Bankrupt || amountDue <= 0 {
		return 0, false
	}
	paid = l.ChargeWithForcedLiquidation(p, amountDue)
	p.Money -= paid
	if payee != nil {
		l.ApplyDelta(payee, paid)
	}
	if paid < amountDue {
		l.MarkBankrupt(p)
		return paid, true
	}
	return paid, false
}

// MarkBankrupt freezes a player. Remaining properties return to the bank.
func (l *Ledger) MarkBankrupt(p *Player) {
	if p.Bankrupt {
		return
	}
	for _, t := range l.OwnedTiles(p) {
		t.OwnerID = nil
		t.Houses = 0
	}
	p.Bankrupt = true
	p.Hospitalized, p.HospitalTurns = false, 0
	p.InJail, p.JailTurns = false, 0
}

// Rent returns the rent due on a property. Rent is waived while the owner is in jail.
func (l *Ledger) Rent(t *Tile) int {
	if t.OwnerID == nil {
		return 0
	}
	owner := l.player(*t.OwnerID)
	if owner == nil || owner.InJail {
		return 0
	}
	base := t.BaseRent
	if base == 0 {
		base = l.rules.DefaultRent
	}
	return base * (t.Houses + 1)
}

// PurchaseProperty transfers an unowned property to the player at its listed price
func (l *Ledger) PurchaseProperty(p *Player, t *Tile) error {
	if p.Bankrupt {
		return nil
	}
	if t.Kind != TileProperty || t.Owned() {
		return fmt.Errorf("%w: %s is not for sale", ErrInvalidCommand, t.Name)
	}
	if p.Money < t.Price {
		return fmt.Errorf("%w: %s costs $%d, %s has $%d", ErrInsufficientFunds, t.Name, t.Price, p.Name, p.Money)
	}
	p.Money -= t.Price
	owner := p.ID
	t.OwnerID = &owner
	return nil
}

// Borrow adds the loan principal to money and principal plus fee to the loan balance
func (l *Ledger) Borrow(p *Player) {
	if p.Bankrupt {
		return
	}
	p.Money += l.rules.LoanPrincipal
	p.Loan += l.rules.LoanPrincipal + l.rules.LoanFee
}

// Repay pays down as much of the loan as money allows and returns the amount repaid
func (l *Ledger) Repay(p *Player) int {
	if p.Bankrupt || p.Money <= 0 {
		return 0
	}
	amount := minInt(p.Money, p.Loan)
	p.Money -= amount
	p.Loan -= amount
	return amount
}

// AccrueInterest grows an outstanding loan by ceil(loan * rate) and returns the interest
func (l *Ledger) AccrueInterest(p *Player) int {
	if p.Bankrupt || p.Loan <= 0 {
		return 0
	}
	interest := int(math.Ceil(float64(p.Loan) * l.rules.LoanInterestRate))
	p.Loan += interest
	return interest
}

// BuyShares buys qty shares at the current price, updating the weighted average cost
func (l *Ledger) BuyShares(p *Player, s *Stock, qty int) error {
	if p.Bankrupt {
		return nil
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	// compare by division first so a huge qty cannot overflow the cost
	if s.Price <= 0 || qty > p.Money/s.Price {
		return fmt.Errorf("%w: %d %s at $%d exceeds $%d", ErrInsufficientFunds, qty, s.Symbol, s.Price, p.Money)
	}
	cost := qty * s.Price
	h := p.Portfolio[s.Symbol]
	newCount := h.Count + qty
	h.AvgCost = (h.Count*h.AvgCost + cost) / newCount
	h.Count = newCount
	p.Money -= cost
	if p.Portfolio == nil {
		p.Portfolio = make(map[string]Holding)
	}
	p.Portfolio[s.Symbol] = h
	return nil
}

// SellShares sells qty shares at the current price and returns the realized profit.
// The average cost of the remainder is unchanged; an emptied position is removed.
func (l *Ledger) SellShares(p *Player, s *Stock, qty int) (int, error) {
	if p.Bankrupt {
		return 0, nil
	}
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	h, ok := p.Portfolio[s.Symbol]
	if !ok || h.Count < qty {
		return 0, fmt.Errorf("%w: %s holds %d %s", ErrInsufficientShares, p.Name, h.Count, s.Symbol)
	}
	p.Money += qty * s.Price
	h.Count -= qty
	if h.Count == 0 {
		delete(p.Portfolio, s.Symbol)
	} else {
		p.Portfolio[s.Symbol] = h
	}
	return (s.Price - h.AvgCost) * qty, nil
}

func (l *Ledger) player(id int) *Player {
	if id < 0 || id >= len(l.state.Players) {
		return nil
	}
	return l.state.Players[id]
}
