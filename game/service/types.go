package service

import (
	"time"

	"github.com/wricardo/mcp-training/richman/game/engine"
)

// CreateSessionRequest describes a new table. Players overrides PlayerCount when set.
type CreateSessionRequest struct {
	ConfigID    string               `json:"config_id"`
	PlayerCount int                  `json:"player_count"`
	Players     []engine.PlayerSetup `json:"players,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigID       string             `json:"config_id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config,omitempty"`
}

// TradeRequest is a stock order placed while the market is open
type TradeRequest struct {
	Symbol   string           `json:"symbol"`
	Quantity int              `json:"quantity"`
	Side     engine.TradeSide `json:"side"`
}

// CommandResult is the outcome of a player command
type CommandResult struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message,omitempty"`
	GameState *engine.GameState  `json:"game_state"`
	Events    []engine.LogEntry  `json:"events"`
	Pending   *engine.Transition `json:"pending,omitempty"`
	Awaiting  string             `json:"awaiting,omitempty"`
}

// HistoryOptions configures event log retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains a page of the event log
type HistoryResponse struct {
	Entries     []engine.LogEntry `json:"entries"`
	Total       int               `json:"total"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	TotalPages  int               `json:"total_pages"`
	HasNext     bool              `json:"has_next"`
	HasPrevious bool              `json:"has_previous"`
}

// TileInfo describes one tile for players deciding what to do
type TileInfo struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Kind        engine.TileKind `json:"kind"`
	Loop        engine.Loop     `json:"loop"`
	Price       int             `json:"price,omitempty"`
	Rent        int             `json:"rent,omitempty"`
	Houses      int             `json:"houses"`
	Owner       string          `json:"owner,omitempty"`
	Occupants   []string        `json:"occupants,omitempty"`
	Description string          `json:"description,omitempty"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Tiles       int    `json:"tiles"`
	OuterSize   int    `json:"outer_size"`
	InnerSize   int    `json:"inner_size"`
	Stocks      int    `json:"stocks"`
}
