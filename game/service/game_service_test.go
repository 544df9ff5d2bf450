package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/game/results"
	"github.com/wricardo/mcp-training/richman/game/scheduler"
	"github.com/wricardo/mcp-training/richman/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig, roster []engine.PlayerSetup, opts ...engine.Option) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("s%03d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config, roster, opts...)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return nil, fmt.Errorf("session %w", service.ErrNotFound)
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	classic := engine.DefaultGameConfig()

	// one tax tile right after start and very little money: the first roll ends the game
	sudden := engine.DefaultGameConfig()
	sudden.Name = "Sudden Death"
	sudden.Tiles[1] = engine.TileSpec{ID: 1, Name: "Levy", Kind: engine.TileTax, Price: 200}
	sudden.Rules.StartingMoney = 100

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"classic": classic,
			"sudden":  sudden,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, fmt.Errorf("configuration %w", service.ErrNotFound)
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Tiles:       len(config.Tiles),
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

// fixedRand always rolls a one and leaves stock prices flat
type fixedRand struct{}

func (fixedRand) Intn(int) int     { return 0 }
func (fixedRand) Float64() float64 { return 0.5 }

type recorder struct {
	mu         sync.Mutex
	broadcasts map[string]int
	events     []string
	journaled  []engine.LogEntry
	results    []results.Result
}

func newRecorder() *recorder {
	return &recorder{broadcasts: make(map[string]int)}
}

func (r *recorder) BroadcastToSession(id string, state *engine.GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts[id]++
}

func (r *recorder) BroadcastEvent(id string, event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, id+":"+event)
}

func (r *recorder) Append(id string, entries []engine.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journaled = append(r.journaled, entries...)
	return nil
}

func (r *recorder) Record(ctx context.Context, res results.Result) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return int64(len(r.results)), nil
}

func (r *recorder) List(ctx context.Context, limit int) ([]results.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]results.Result(nil), r.results...), nil
}

func (r *recorder) Leaderboard(ctx context.Context, limit int) ([]results.WinCount, error) {
	return []results.WinCount{}, nil
}

func newTestService(t *testing.T, rec *recorder) service.GameService {
	t.Helper()
	opts := []service.Option{
		service.WithScheduler(scheduler.Options{Inline: true}),
		service.WithEngineOptions(func() []engine.Option {
			return []engine.Option{engine.WithRandom(fixedRand{})}
		}),
	}
	if rec != nil {
		opts = append(opts, service.WithBroadcaster(rec), service.WithJournal(rec), service.WithResults(rec))
	}
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager(), opts...)
	t.Cleanup(svc.Close)
	return svc
}

func twoHumans(config string) service.CreateSessionRequest {
	return service.CreateSessionRequest{
		ConfigID: config,
		Players: []engine.PlayerSetup{
			{Name: "Ann", Kind: engine.Human},
			{Name: "Bob", Kind: "human"},
		},
	}
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	tests := []struct {
		name    string
		req     service.CreateSessionRequest
		players int
		wantErr error
	}{
		{name: "default config and roster", req: service.CreateSessionRequest{}, players: 2},
		{name: "specific config", req: service.CreateSessionRequest{ConfigID: "classic", PlayerCount: 3}, players: 3},
		{name: "explicit players", req: twoHumans("classic"), players: 2},
		{name: "unknown config", req: service.CreateSessionRequest{ConfigID: "nonexistent"}, wantErr: service.ErrNotFound},
		{name: "too many players", req: service.CreateSessionRequest{PlayerCount: 4}, wantErr: engine.ErrInvalidSetup},
		{
			name:    "unknown seat kind",
			req:     service.CreateSessionRequest{Players: []engine.PlayerSetup{{Name: "A"}, {Name: "B", Kind: "ROBOT"}}},
			wantErr: engine.ErrInvalidSetup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession() error = %v", err)
			}
			if len(info.GameState.Players) != tt.players {
				t.Errorf("Expected %d players, got %d", tt.players, len(info.GameState.Players))
			}
			if info.GameState.Phase != engine.PhaseWaiting {
				t.Errorf("Expected WAITING, got %s", info.GameState.Phase)
			}
			if info.ConfigID != "classic" {
				t.Errorf("Expected config id classic, got %s", info.ConfigID)
			}
		})
	}
}

func TestGameService_HumanTurn(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	svc := newTestService(t, rec)

	info, err := svc.CreateSession(ctx, twoHumans("classic"))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	res, err := svc.RollDice(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to roll: %v", err)
	}
	if res.Pending != nil {
		t.Errorf("Expected the inline scheduler to settle, got pending %+v", res.Pending)
	}
	if res.GameState.Phase != engine.PhaseAction || res.Awaiting != "buy_property|decline_property" {
		t.Fatalf("Expected a purchase prompt, got %s awaiting %q", res.GameState.Phase, res.Awaiting)
	}
	if res.GameState.Players[0].Position != 1 {
		t.Errorf("Expected Ann on tile 1, got %d", res.GameState.Players[0].Position)
	}

	if _, err := svc.RollDice(ctx, info.ID); !errors.Is(err, engine.ErrInvalidCommand) {
		t.Errorf("Expected ErrInvalidCommand for a second roll, got %v", err)
	}

	res, err = svc.BuyProperty(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to buy: %v", err)
	}
	if res.GameState.Players[0].Money != 1440 {
		t.Errorf("Expected Ann to have 1440, got %d", res.GameState.Players[0].Money)
	}
	if res.GameState.CurrentPlayer != 1 || res.Awaiting != "roll_dice" {
		t.Errorf("Expected Bob to roll next, got player %d awaiting %q", res.GameState.CurrentPlayer, res.Awaiting)
	}
	if len(res.Events) == 0 {
		t.Error("Expected the purchase to be narrated")
	}

	tile, err := svc.DescribeTile(ctx, info.ID, 1)
	if err != nil {
		t.Fatalf("Failed to describe tile: %v", err)
	}
	if tile.Owner != "Ann" || tile.Rent != 2 || tile.Loop != engine.LoopOuter {
		t.Errorf("Unexpected tile info %+v", tile)
	}
	if _, err := svc.DescribeTile(ctx, info.ID, 99); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for tile 99, got %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.broadcasts[info.ID] < 3 {
		t.Errorf("Expected a broadcast per change, got %d", rec.broadcasts[info.ID])
	}
	state, _ := svc.GetGameState(ctx, info.ID)
	if len(rec.journaled) != len(state.Log) {
		t.Errorf("Expected every log entry journaled once, got %d of %d", len(rec.journaled), len(state.Log))
	}
}

func TestGameService_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	info, _ := svc.CreateSession(ctx, twoHumans("classic"))

	if _, err := svc.BankAction(ctx, info.ID, "STEAL"); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.TradeStock(ctx, info.ID, service.TradeRequest{Symbol: "AAPL", Quantity: 1, Side: "HOLD"}); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.CloseMarket(ctx, info.ID); !errors.Is(err, engine.ErrInvalidCommand) {
		t.Errorf("Expected ErrInvalidCommand, got %v", err)
	}
	if _, err := svc.RollDice(ctx, "nope"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGameService_GameOverIsRecordedOnce(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	svc := newTestService(t, rec)

	info, err := svc.CreateSession(ctx, twoHumans("sudden"))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	res, err := svc.RollDice(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to roll: %v", err)
	}
	if res.GameState.Phase != engine.PhaseGameOver || res.Awaiting != "game_over" {
		t.Fatalf("Expected game over, got %s", res.GameState.Phase)
	}
	if _, err := svc.GetGameState(ctx, info.ID); err != nil {
		t.Fatalf("Failed to read state: %v", err)
	}

	list, err := svc.ListResults(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected exactly one result, got %d", len(list))
	}
	if list[0].Winner != "Bob" || list[0].SessionID != info.ID || list[0].ConfigName != "Sudden Death" {
		t.Errorf("Unexpected result %+v", list[0])
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 1 || rec.events[0] != info.ID+":"+service.EventGameOver {
		t.Errorf("Expected one game_over event, got %v", rec.events)
	}
}

func TestGameService_AIOpponentPlaysInline(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigID: "classic", PlayerCount: 2})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := svc.RollDice(ctx, info.ID); err != nil {
		t.Fatalf("Failed to roll: %v", err)
	}
	res, err := svc.DeclineProperty(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to decline: %v", err)
	}

	robot := res.GameState.Players[1]
	if robot.Position != 1 {
		t.Errorf("Expected Robot to have rolled a one, got position %d", robot.Position)
	}
	if res.GameState.CurrentPlayer != 0 || res.Awaiting != "roll_dice" {
		t.Errorf("Expected the turn back with the human, got player %d awaiting %q", res.GameState.CurrentPlayer, res.Awaiting)
	}
}

func TestGameService_GetLog(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	info, _ := svc.CreateSession(ctx, twoHumans("classic"))
	svc.RollDice(ctx, info.ID)
	svc.DeclineProperty(ctx, info.ID)

	state, _ := svc.GetGameState(ctx, info.ID)
	total := len(state.Log)

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantLen   int
		wantFirst int
	}{
		{"newest first", service.HistoryOptions{Limit: 100}, total, total},
		{"ascending page", service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"}, 2, 1},
		{"descending second page", service.HistoryOptions{Page: 2, Limit: 2, Order: "desc"}, 2, total - 2},
		{"past the end", service.HistoryOptions{Page: 50, Limit: 2}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.GetLog(ctx, info.ID, tt.opts)
			if err != nil {
				t.Fatalf("Failed to get log: %v", err)
			}
			if page.Total != total {
				t.Errorf("Expected total %d, got %d", total, page.Total)
			}
			if len(page.Entries) != tt.wantLen {
				t.Fatalf("Expected %d entries, got %d", tt.wantLen, len(page.Entries))
			}
			if tt.wantLen > 0 && page.Entries[0].Seq != tt.wantFirst {
				t.Errorf("Expected first seq %d, got %d", tt.wantFirst, page.Entries[0].Seq)
			}
		})
	}
}

func TestGameService_SessionsLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	a, _ := svc.CreateSession(ctx, service.CreateSessionRequest{})
	b, _ := svc.CreateSession(ctx, service.CreateSessionRequest{})

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, a.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := svc.GetSession(ctx, a.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.DeleteSession(ctx, a.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	got, err := svc.GetSession(ctx, b.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.GameConfig == nil {
		t.Error("Expected the board config in session details")
	}
}

func TestGameService_AsyncSchedulerReachesHuman(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager(),
		service.WithScheduler(scheduler.Options{DelayScale: 0}),
		service.WithBroadcaster(rec),
		service.WithEngineOptions(func() []engine.Option {
			return []engine.Option{engine.WithRandom(fixedRand{})}
		}),
	)
	defer svc.Close()

	info, _ := svc.CreateSession(ctx, twoHumans("classic"))
	if _, err := svc.RollDice(ctx, info.ID); err != nil {
		t.Fatalf("Failed to roll: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state, _ := svc.GetGameState(ctx, info.ID)
		if state.Phase == engine.PhaseAction {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Expected the scheduler to walk Ann to the purchase prompt")
}

func TestAwaiting(t *testing.T) {
	tests := []struct {
		name  string
		phase engine.Phase
		kind  engine.ControlKind
		dec   *engine.Decision
		want  string
	}{
		{"human waiting", engine.PhaseWaiting, engine.Human, nil, "roll_dice"},
		{"ai waiting", engine.PhaseWaiting, engine.AI, nil, ""},
		{"bank", engine.PhaseAction, engine.Human, &engine.Decision{Kind: engine.DecisionBank}, "bank_action|leave_bank"},
		{"chance not drawn", engine.PhaseEvent, engine.Human, &engine.Decision{Kind: engine.DecisionChance}, ""},
		{"chance drawn", engine.PhaseEvent, engine.Human, &engine.Decision{Kind: engine.DecisionChance, Event: &engine.ChanceEvent{}}, "accept_chance"},
		{"market", engine.PhaseTrading, engine.Human, &engine.Decision{Kind: engine.DecisionMarket}, "trade_stock|close_market"},
		{"over", engine.PhaseGameOver, engine.AI, nil, "game_over"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &engine.GameState{
				Phase:    tt.phase,
				Players:  []*engine.Player{{Kind: tt.kind}},
				Decision: tt.dec,
			}
			if got := service.Awaiting(state); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
