package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/game/results"
	"github.com/wricardo/mcp-training/richman/game/scheduler"
	"github.com/wricardo/mcp-training/richman/internal/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	defaultResultsLimit = 20
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions    SessionManager
	configs     ConfigManager
	sched       *scheduler.Scheduler
	schedOpts   scheduler.Options
	broadcaster Broadcaster
	journal     Journal
	results     ResultStore
	engineOpts  func() []engine.Option
	now         func() time.Time
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithScheduler sets how delayed transitions fire. OnAdvance is owned by the service.
func WithScheduler(opts scheduler.Options) Option {
	return func(s *gameServiceImpl) { s.schedOpts = opts }
}

// WithBroadcaster pushes a snapshot to viewers after every change
func WithBroadcaster(b Broadcaster) Option {
	return func(s *gameServiceImpl) { s.broadcaster = b }
}

// WithJournal records every narrated log entry
func WithJournal(j Journal) Option {
	return func(s *gameServiceImpl) { s.journal = j }
}

// WithResults records finished games
func WithResults(r ResultStore) Option {
	return func(s *gameServiceImpl) { s.results = r }
}

// WithEngineOptions supplies the collaborators of every new engine
func WithEngineOptions(fn func() []engine.Option) Option {
	return func(s *gameServiceImpl) { s.engineOpts = fn }
}

// WithClock sets the time source for result timestamps
func WithClock(now func() time.Time) Option {
	return func(s *gameServiceImpl) { s.now = now }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:  sessions,
		configs:   configs,
		schedOpts: scheduler.Options{DelayScale: 1},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.schedOpts.OnAdvance = s.onAdvance
	s.sched = scheduler.New(s.schedOpts)
	return s
}

// Close stops every pending transition
func (s *gameServiceImpl) Close() {
	s.sched.Close()
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: session %s: %v", ErrNotFound, sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sess.ID)
	return sess, nil
}

// CreateSession creates a new game session and starts it
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	var config *engine.GameConfig
	configID := strings.TrimSpace(req.ConfigID)
	if configID != "" {
		loaded, err := s.configs.LoadConfig(configID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("config '%s' %w. Available configs: %v", configID, err, s.configIDs())
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
		config = loaded
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	roster, err := buildRoster(req)
	if err != nil {
		return nil, err
	}

	var opts []engine.Option
	if s.engineOpts != nil {
		opts = s.engineOpts()
	}
	sess, err := s.sessions.Create("", config, roster, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.Lock()
	sess.ConfigID = configID
	err = sess.Engine.Start()
	sess.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	logger.With("session", sess.ID).Infof("session created on %s with %d players", configID, len(roster))

	s.publish(sess)
	s.sched.Kick(sess.ID, sess, sess.Engine)

	sess.Lock()
	defer sess.Unlock()
	info := s.info(sess)
	info.GameConfig = sess.Config
	return info, nil
}

// buildRoster turns a request into seats. Explicit players win over a bare count.
func buildRoster(req CreateSessionRequest) ([]engine.PlayerSetup, error) {
	if len(req.Players) == 0 {
		count := req.PlayerCount
		if count == 0 {
			count = engine.MinPlayers
		}
		if count < engine.MinPlayers || count > engine.MaxPlayers {
			return nil, fmt.Errorf("%w: player_count must be between %d and %d", engine.ErrInvalidSetup, engine.MinPlayers, engine.MaxPlayers)
		}
		return engine.DefaultRoster(count, nil, nil), nil
	}

	roster := make([]engine.PlayerSetup, len(req.Players))
	for i, p := range req.Players {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			p.Name = fmt.Sprintf("Player %d", i+1)
		}
		p.Kind = engine.ControlKind(strings.ToUpper(string(p.Kind)))
		if p.Kind == "" {
			p.Kind = engine.Human
		}
		roster[i] = p
	}
	return roster, nil
}

func (s *gameServiceImpl) configIDs() []string {
	var ids []string
	if configs, err := s.configs.ListConfigs(); err == nil {
		for _, cfg := range configs {
			ids = append(ids, cfg.ConfigID)
		}
	}
	return ids
}

// info builds a session summary. Callers hold the session lock.
func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigID:       sess.ConfigID,
		ConfigName:     sess.Config.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	info := s.info(sess)
	info.GameConfig = sess.Config
	return info, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		result = append(result, s.info(sess))
		sess.Unlock()
	}
	return result, nil
}

// DeleteSession stops a session's transitions and removes it
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	s.sched.Stop(sess.ID)
	return s.sessions.Delete(sess.ID)
}

// RollDice rolls for the active human player
func (s *gameServiceImpl) RollDice(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "roll dice", func(ctx context.Context, e *engine.GameEngine) error {
		return e.RollDice(ctx)
	})
}

// BuyProperty buys the property the active player stands on
func (s *gameServiceImpl) BuyProperty(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "buy property", func(ctx context.Context, e *engine.GameEngine) error {
		return e.BuyProperty(ctx)
	})
}

// DeclineProperty passes on the offered property
func (s *gameServiceImpl) DeclineProperty(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "decline property", func(ctx context.Context, e *engine.GameEngine) error {
		return e.DeclineProperty(ctx)
	})
}

// BankAction borrows or repays at the bank
func (s *gameServiceImpl) BankAction(ctx context.Context, sessionID string, op engine.BankOp) (*CommandResult, error) {
	op = engine.BankOp(strings.ToUpper(string(op)))
	if op != engine.BankBorrow && op != engine.BankRepay {
		return nil, fmt.Errorf("%w: bank action must be BORROW or REPAY, got '%s'", ErrInvalidRequest, op)
	}
	return s.command(ctx, sessionID, "bank", func(ctx context.Context, e *engine.GameEngine) error {
		return e.BankAction(ctx, op)
	})
}

// LeaveBank leaves the bank without a transaction
func (s *gameServiceImpl) LeaveBank(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "leave bank", func(ctx context.Context, e *engine.GameEngine) error {
		return e.LeaveBank(ctx)
	})
}

// AcceptChance applies the drawn chance card
func (s *gameServiceImpl) AcceptChance(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "accept chance", func(ctx context.Context, e *engine.GameEngine) error {
		return e.AcceptChance(ctx)
	})
}

// TradeStock places a stock order while the market is open
func (s *gameServiceImpl) TradeStock(ctx context.Context, sessionID string, req TradeRequest) (*CommandResult, error) {
	side := engine.TradeSide(strings.ToUpper(string(req.Side)))
	if side != engine.SideBuy && side != engine.SideSell {
		return nil, fmt.Errorf("%w: side must be BUY or SELL, got '%s'", ErrInvalidRequest, req.Side)
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	return s.command(ctx, sessionID, "trade", func(ctx context.Context, e *engine.GameEngine) error {
		return e.TradeStock(ctx, symbol, req.Quantity, side)
	})
}

// CloseMarket closes the stock market
func (s *gameServiceImpl) CloseMarket(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "close market", func(ctx context.Context, e *engine.GameEngine) error {
		return e.CloseMarket(ctx)
	})
}

// command runs one player command, publishes the change and hands any
// follow-up transition to the scheduler
func (s *gameServiceImpl) command(ctx context.Context, sessionID, name string, run func(context.Context, *engine.GameEngine) error) (*CommandResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	from := sess.Engine.LogLen()
	err = run(ctx, sess.Engine)
	sess.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	s.publish(sess)
	s.sched.Kick(sess.ID, sess, sess.Engine)

	sess.Lock()
	defer sess.Unlock()
	return s.result(sess, from), nil
}

// result summarizes a session after a command. Callers hold the session lock.
func (s *gameServiceImpl) result(sess *Session, from int) *CommandResult {
	state := sess.Engine.GetState()
	res := &CommandResult{
		Success:   true,
		GameState: state,
		Events:    sess.Engine.LogSince(from),
	}
	if res.Events == nil {
		res.Events = []engine.LogEntry{}
	}
	if len(res.Events) > 0 {
		res.Message = res.Events[len(res.Events)-1].Message
	}
	if t, ok := sess.Engine.Pending(); ok {
		res.Pending = &t
	} else {
		res.Awaiting = Awaiting(state)
	}
	return res
}

// Awaiting names the commands the active human player may issue, or "" when
// the game is not waiting on a human
func Awaiting(state *engine.GameState) string {
	if state.Phase == engine.PhaseGameOver {
		return "game_over"
	}
	if len(state.Players) == 0 || state.Players[state.CurrentPlayer].Kind != engine.Human {
		return ""
	}
	switch state.Phase {
	case engine.PhaseWaiting:
		return "roll_dice"
	case engine.PhaseTrading:
		return "trade_stock|close_market"
	}
	if state.Decision == nil {
		return ""
	}
	switch state.Decision.Kind {
	case engine.DecisionBuy:
		return "buy_property|decline_property"
	case engine.DecisionBank:
		return "bank_action|leave_bank"
	case engine.DecisionChance:
		if state.Decision.Event != nil {
			return "accept_chance"
		}
	}
	return ""
}

// onAdvance runs after the scheduler fired a transition
func (s *gameServiceImpl) onAdvance(id string) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		// deleted or expired while a transition was pending
		s.sched.Stop(id)
		return
	}
	s.publish(sess)
}

// publish journals new log entries, broadcasts the snapshot and records a
// finished game exactly once
func (s *gameServiceImpl) publish(sess *Session) {
	var finished *results.Result

	sess.Lock()
	state := sess.Engine.GetState()
	if s.journal != nil {
		entries := sess.Engine.LogSince(sess.journaled)
		if len(entries) > 0 {
			if err := s.journal.Append(sess.ID, entries); err != nil {
				logger.With("session", sess.ID).Warnf("journal append failed: %v", err)
			}
		}
	}
	sess.journaled = sess.Engine.LogLen()
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sess.ID, state)
	}
	if state.Phase == engine.PhaseGameOver && !sess.recorded {
		sess.recorded = true
		r := results.FromState(sess.ID, state, s.now())
		finished = &r
	}
	sess.Unlock()

	if finished == nil {
		return
	}
	logger.With("session", sess.ID).Infof("game over after %d turns, winner %s", finished.Turns, finished.Winner)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(sess.ID, EventGameOver, finished)
	}
	if s.results != nil {
		if _, err := s.results.Record(context.Background(), *finished); err != nil {
			logger.With("session", sess.ID).Errorf("failed to record result: %v", err)
		}
	}
}

// GetGameState returns the current snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	return sess.Engine.GetState(), nil
}

// GetLog returns a page of the narrated event log
func (s *gameServiceImpl) GetLog(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	history := sess.Engine.GetLog()
	sess.Unlock()

	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	entries := []engine.LogEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			entries = append(entries, history[i])
		}
	} else if start < total {
		entries = append(entries, history[start:end]...)
	}

	return &HistoryResponse{
		Entries:     entries,
		Total:       total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// DescribeTile explains one tile of a session's board
func (s *gameServiceImpl) DescribeTile(ctx context.Context, sessionID string, tileID int) (*TileInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	state := sess.Engine.GetState()
	if tileID < 0 || tileID >= len(state.Tiles) {
		return nil, fmt.Errorf("%w: tile %d (board has %d tiles)", ErrNotFound, tileID, len(state.Tiles))
	}
	tile := state.Tiles[tileID]
	info := &TileInfo{
		ID:          tile.ID,
		Name:        tile.Name,
		Kind:        tile.Kind,
		Loop:        sess.Config.Topology.LoopOf(tile.ID),
		Price:       tile.Price,
		Rent:        sess.Engine.RentFor(tile.ID),
		Houses:      tile.Houses,
		Description: tile.Description,
	}
	for _, p := range state.Players {
		if tile.OwnerID != nil && *tile.OwnerID == p.ID {
			info.Owner = p.Name
		}
		if p.Position == tile.ID && !p.Bankrupt {
			info.Occupants = append(info.Occupants, p.Name)
		}
	}
	return info, nil
}

// ListConfigs returns available board configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// ListResults returns the most recent finished games
func (s *gameServiceImpl) ListResults(ctx context.Context, limit int) ([]results.Result, error) {
	if s.results == nil {
		return []results.Result{}, nil
	}
	if limit <= 0 {
		limit = defaultResultsLimit
	}
	return s.results.List(ctx, limit)
}

// Leaderboard returns win counts per player name
func (s *gameServiceImpl) Leaderboard(ctx context.Context, limit int) ([]results.WinCount, error) {
	if s.results == nil {
		return []results.WinCount{}, nil
	}
	return s.results.Leaderboard(ctx, limit)
}
