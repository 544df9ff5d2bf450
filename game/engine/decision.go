package engine

import "math"

// CommandKind names an action the turn controller accepts
type CommandKind string

const (
	CmdRoll         CommandKind = "ROLL"
	CmdBuy          CommandKind = "BUY_PROPERTY"
	CmdDecline      CommandKind = "DECLINE_PROPERTY"
	CmdBorrow       CommandKind = "BORROW"
	CmdRepay        CommandKind = "REPAY"
	CmdLeaveBank    CommandKind = "LEAVE_BANK"
	CmdAcceptChance CommandKind = "ACCEPT_CHANCE"
	CmdTrade        CommandKind = "TRADE_STOCK"
	CmdHold         CommandKind = "HOLD"
	CmdCloseMarket  CommandKind = "CLOSE_MARKET"
)

// Command is an action issued by a player or a decision provider
type Command struct {
	Kind     CommandKind `json:"kind"`
	Symbol   string      `json:"symbol,omitempty"`
	Quantity int         `json:"quantity,omitempty"`
	Side     TradeSide   `json:"side,omitempty"`
}

// DecisionView is the read-only context handed to a provider
type DecisionView struct {
	Player   Player
	Decision Decision
	Tile     *Tile
	Stocks   []Stock
	Rules    Rules
}

// DecisionProvider decides for a player. Human providers wait for external commands;
// automatic providers are asked by the turn controller after a delay.
type DecisionProvider interface {
	Automatic() bool
	Decide(view DecisionView) Command
}

// HumanProvider defers every decision to presentation commands
type HumanProvider struct{}

// Automatic always reports false
func (HumanProvider) Automatic() bool { return false }

// Decide is never called for human seats; it holds positions if it is
func (HumanProvider) Decide(DecisionView) Command { return Command{Kind: CmdHold} }

// AIProvider is the fixed heuristic computer player
type AIProvider struct {
	rng Random
}

// NewAIProvider creates the computer player using rng for its stock pick
func NewAIProvider(rng Random) *AIProvider {
	return &AIProvider{rng: rng}
}

// Automatic always reports true
func (a *AIProvider) Automatic() bool { return true }

// Decide returns the AI's command for the pending decision
func (a *AIProvider) Decide(view DecisionView) Command {
	ai := view.Rules.AI
	p := view.Player
	switch view.Decision.Kind {
	case DecisionBuy:
		if view.Tile != nil && p.Money > view.Tile.Price+ai.PurchaseBuffer {
			return Command{Kind: CmdBuy}
		}
		return Command{Kind: CmdDecline}
	case DecisionBank:
		return Command{Kind: BankChoice(p, ai)}
	case DecisionChance:
		return Command{Kind: CmdAcceptChance}
	case DecisionMarket:
		if view.Decision.Acted {
			return Command{Kind: CmdCloseMarket}
		}
		return a.trade(p, view.Stocks, ai)
	}
	return Command{Kind: CmdHold}
}

// BankChoice borrows when cash is low and the loan is under its cap, repays when cash
// comfortably covers the loan, and otherwise leaves
func BankChoice(p Player, ai AIRules) CommandKind {
	switch {
	case p.Money < ai.BorrowBelow && p.Loan < ai.LoanCap:
		return CmdBorrow
	case p.Loan > 0 && p.Money > p.Loan+ai.RepayBuffer:
		return CmdRepay
	default:
		return CmdLeaveBank
	}
}

// trade looks at one random stock: buy cheap with a slice of spare cash, or sell the
// whole position after an uptick
func (a *AIProvider) trade(p Player, stocks []Stock, ai AIRules) Command {
	if len(stocks) == 0 {
		return Command{Kind: CmdHold}
	}
	s := stocks[a.rng.Intn(len(stocks))]
	if s.Price < ai.CheapStockPrice && p.Money > ai.StockCashReserve {
		affordable := int(math.Floor(float64(p.Money) * ai.StockSpendShare / float64(s.Price)))
		amount := minInt(affordable, ai.MaxSharesPerBuy)
		if amount > 0 {
			return Command{Kind: CmdTrade, Symbol: s.Symbol, Quantity: amount, Side: SideBuy}
		}
		return Command{Kind: CmdHold}
	}
	if h, ok := p.Portfolio[s.Symbol]; ok && h.Count > 0 && s.Price > s.PreviousPrice {
		return Command{Kind: CmdTrade, Symbol: s.Symbol, Quantity: h.Count, Side: SideSell}
	}
	return Command{Kind: CmdHold}
}
