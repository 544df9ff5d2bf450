package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state
	GetState() *GameState
	GetConfig() *GameConfig
	Phase() Phase
	IsGameOver() bool
	ActivePlayer() Player
	GetLog() []LogEntry
	LogSince(seq int) []LogEntry

	// Lifecycle and scheduling
	Start() error
	Pending() (Transition, bool)
	Advance(ctx context.Context) error
	AdvanceIf(ctx context.Context, seq uint64) error

	// Presentation commands
	RollDice(ctx context.Context) error
	BuyProperty(ctx context.Context) error
	DeclineProperty(ctx context.Context) error
	BankAction(ctx context.Context, op BankOp) error
	LeaveBank(ctx context.Context) error
	AcceptChance(ctx context.Context) error
	TradeStock(ctx context.Context, symbol string, qty int, side TradeSide) error
	CloseMarket(ctx context.Context) error
}

// GameEngine implements the Engine interface. It is not safe for concurrent use;
// callers serialize access per session.
type GameEngine struct {
	state     *GameState
	config    *GameConfig
	rules     Rules
	topo      Topology
	ledger    *Ledger
	market    *Market
	rng       Random
	oracle    ChanceOracle
	narrator  Narrator
	providers []DecisionProvider
	next      *Transition
	seq       uint64
	now       func() time.Time
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithRandom sets the randomness source
func WithRandom(r Random) Option {
	return func(e *GameEngine) { e.rng = r }
}

// WithOracle sets the chance oracle
func WithOracle(o ChanceOracle) Option {
	return func(e *GameEngine) { e.oracle = o }
}

// WithNarrator sets the commentary service
func WithNarrator(n Narrator) Option {
	return func(e *GameEngine) { e.narrator = n }
}

// WithClock sets the time source used for log timestamps
func WithClock(now func() time.Time) Option {
	return func(e *GameEngine) { e.now = now }
}

// WithProvider overrides the decision provider of one seat
func WithProvider(seat int, p DecisionProvider) Option {
	return func(e *GameEngine) {
		if seat >= 0 && seat < len(e.providers) {
			e.providers[seat] = p
		}
	}
}

// NewEngine creates a game engine for a board configuration and roster. The engine starts in SETUP.
func NewEngine(config *GameConfig, roster []PlayerSetup, opts ...Option) (*GameEngine, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if err := ValidateRoster(roster); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:   config,
		rules:    config.Rules,
		topo:     config.Topology,
		state:    InitGameStateFromConfig(config, roster),
		oracle:   silentOracle{},
		narrator: silentNarrator{},
		now:      time.Now,
	}
	e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	e.providers = make([]DecisionProvider, len(roster))

	for _, opt := range opts {
		opt(e)
	}
	for i, seat := range roster {
		if e.providers[i] != nil {
			continue
		}
		if seat.Kind == AI {
			e.providers[i] = NewAIProvider(e.rng)
		} else {
			e.providers[i] = HumanProvider{}
		}
	}

	e.ledger = NewLedger(e.state, &e.rules, e.addLog)
	e.market = NewMarket(e.state, &e.rules, e.ledger, e.rng)
	return e, nil
}

// Start leaves SETUP and waits for the first roll
func (e *GameEngine) Start() error {
	if e.state.Phase != PhaseSetup {
		return fmt.Errorf("%w: game already started", ErrInvalidCommand)
	}
	e.addLog("Welcome to RichMan! Game started.", LogSuccess)
	e.enterWaiting()
	return nil
}

// GetState returns a snapshot of the session state
func (e *GameEngine) GetState() *GameState {
	return CloneState(e.state)
}

// GetConfig returns the board configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Phase returns the current phase
func (e *GameEngine) Phase() Phase {
	return e.state.Phase
}

// IsGameOver reports whether the session reached GAME_OVER
func (e *GameEngine) IsGameOver() bool {
	return e.state.Phase == PhaseGameOver
}

// ActivePlayer returns a copy of the player whose turn it is
func (e *GameEngine) ActivePlayer() Player {
	return *e.active()
}

// GetLog returns the full narrated log
func (e *GameEngine) GetLog() []LogEntry {
	return append([]LogEntry(nil), e.state.Log...)
}

// LogSince returns entries with a sequence number greater than seq
func (e *GameEngine) LogSince(seq int) []LogEntry {
	if seq < 0 {
		seq = 0
	}
	if seq >= len(e.state.Log) {
		return nil
	}
	return append([]LogEntry(nil), e.state.Log[seq:]...)
}

// LogLen returns the sequence number of the newest log entry
func (e *GameEngine) LogLen() int {
	return len(e.state.Log)
}

// RentFor returns the rent a visitor would owe on a tile right now
func (e *GameEngine) RentFor(tileID int) int {
	if tileID < 0 || tileID >= len(e.state.Tiles) {
		return 0
	}
	return e.ledger.Rent(e.tile(tileID))
}

// RollDice triggers the active human player's roll
func (e *GameEngine) RollDice(ctx context.Context) error {
	return e.command(ctx, Command{Kind: CmdRoll})
}

// BuyProperty buys the property the active player landed on
func (e *GameEngine) BuyProperty(ctx context.Context) error {
	return e.command(ctx, Command{Kind: CmdBuy})
}

// DeclineProperty passes on the property the active player landed on
func (e *GameEngine) DeclineProperty(ctx context.Context) error {
	return e.command(ctx, Command{Kind: CmdDecline})
}

// BankAction borrows or repays at the bank, then leaves it
func (e *GameEngine) BankAction(ctx context.Context, op BankOp) error {
	switch op {
	case BankBorrow:
		return e.command(ctx, Command{Kind: CmdBorrow})
	case BankRepay:
		return e.command(ctx, Command{Kind: CmdRepay})
	}
	return fmt.Errorf("%w: unknown bank action '%s'", ErrInvalidCommand, op)
}

// LeaveBank leaves the bank without a transaction
func (e *GameEngine) LeaveBank(ctx context.Context) error {
	return e.command(ctx, Command{Kind: CmdLeaveBank})
}

// AcceptChance applies the drawn chance event
func (e *GameEngine) AcceptChance(ctx context.Context) error {
	return e.command(ctx, Command{Kind: CmdAcceptChance})
}

// TradeStock buys or sells shares while the market is open
func (e *GameEngine) TradeStock(ctx context.Context, symbol string, qty int, side TradeSide) error {
	return e.command(ctx, Command{Kind: CmdTrade, Symbol: symbol, Quantity: qty, Side: side})
}

// CloseMarket closes the market and continues the turn
func (e *GameEngine) CloseMarket(ctx context.Context) error {
	return e.command(ctx, Command{Kind: CmdCloseMarket})
}

func (e *GameEngine) active() *Player {
	return e.state.Players[e.state.CurrentPlayer]
}

func (e *GameEngine) tile(id int) *Tile {
	return e.state.Tiles[id]
}

func (e *GameEngine) addLog(msg string, kind LogType) {
	e.state.Log = append(e.state.Log, LogEntry{
		ID:        uuid.NewString(),
		Seq:       len(e.state.Log) + 1,
		Message:   msg,
		Type:      kind,
		Timestamp: e.now().UnixMilli(),
	})
}

func (e *GameEngine) narrate(ctx context.Context, p *Player, tag EventTag) {
	ctx, cancel := context.WithTimeout(ctx, ms(e.rules.Delays.NarrateTimeout))
	defer cancel()
	summary := fmt.Sprintf("Phase: %s. %s has $%d and $%d debt.", e.state.Phase, p.Name, p.Money, p.Loan)
	text, err := e.narrator.Narrate(ctx, p.Name, tag, summary)
	if err != nil || text == "" {
		text = FallbackCommentary
	}
	e.addLog(text, LogAI)
}
