package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/game/results"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Player commands
	RollDice(ctx context.Context, sessionID string) (*CommandResult, error)
	BuyProperty(ctx context.Context, sessionID string) (*CommandResult, error)
	DeclineProperty(ctx context.Context, sessionID string) (*CommandResult, error)
	BankAction(ctx context.Context, sessionID string, op engine.BankOp) (*CommandResult, error)
	LeaveBank(ctx context.Context, sessionID string) (*CommandResult, error)
	AcceptChance(ctx context.Context, sessionID string) (*CommandResult, error)
	TradeStock(ctx context.Context, sessionID string, req TradeRequest) (*CommandResult, error)
	CloseMarket(ctx context.Context, sessionID string) (*CommandResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetLog(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	DescribeTile(ctx context.Context, sessionID string, tileID int) (*TileInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)

	// Finished games
	ListResults(ctx context.Context, limit int) ([]results.Result, error)
	Leaderboard(ctx context.Context, limit int) ([]results.WinCount, error)

	// Close stops every pending transition
	Close()
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, roster []engine.PlayerSetup, opts ...engine.Option) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
}

// Broadcaster pushes snapshots and named events to connected viewers
type Broadcaster interface {
	BroadcastToSession(sessionID string, state *engine.GameState)
	BroadcastEvent(sessionID string, event string, data interface{})
}

// EventGameOver is broadcast once per session with the recorded result
const EventGameOver = "game_over"


// Journal receives every narrated log entry
type Journal interface {
	Append(sessionID string, entries []engine.LogEntry) error
}

// ResultStore records finished games
type ResultStore interface {
	Record(ctx context.Context, r results.Result) (int64, error)
	List(ctx context.Context, limit int) ([]results.Result, error)
	Leaderboard(ctx context.Context, limit int) ([]results.WinCount, error)
}

// Session represents an active game session. Its engine is not safe for
// concurrent use; hold the session lock around every engine call.
type Session struct {
	sync.Mutex

	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// journaled is the highest log sequence already written to the journal
	journaled int
	recorded  bool
}
