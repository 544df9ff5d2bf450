package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/wricardo/mcp-training/richman/game/config"
	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/game/results"
	"github.com/wricardo/mcp-training/richman/game/scheduler"
	"github.com/wricardo/mcp-training/richman/game/service"
	"github.com/wricardo/mcp-training/richman/game/session"
	"github.com/wricardo/mcp-training/richman/transport/websocket"
)

// fixedRand always rolls a one and leaves stock prices flat
type fixedRand struct{}

func (fixedRand) Intn(int) int     { return 0 }
func (fixedRand) Float64() float64 { return 0.5 }

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	configs, err := config.NewManager(filepath.Join(t.TempDir(), "none"), "")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	store, err := results.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open results: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	svc := service.NewGameService(session.NewManager(), configs,
		service.WithScheduler(scheduler.Options{Inline: true}),
		service.WithEngineOptions(func() []engine.Option {
			return []engine.Option{engine.WithRandom(fixedRand{})}
		}),
		service.WithBroadcaster(hub),
		service.WithResults(store),
	)
	t.Cleanup(svc.Close)

	return NewServer(svc, hub)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func createTable(t *testing.T, s *Server) string {
	t.Helper()
	w := doRequest(t, s, "POST", "/api/sessions", map[string]interface{}{
		"config_id": "classic",
		"players": []map[string]string{
			{"name": "Ann", "kind": "HUMAN"},
			{"name": "Bob", "kind": "HUMAN"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var info service.SessionInfo
	decode(t, w, &info)
	return info.ID
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)
	w := doRequest(t, s, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestCreateSession(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantSeats  int
	}{
		{"empty body uses defaults", nil, http.StatusCreated, 2},
		{"three seats", map[string]interface{}{"player_count": 3}, http.StatusCreated, 3},
		{"too many seats", map[string]interface{}{"player_count": 7}, http.StatusBadRequest, 0},
		{"unknown board", map[string]interface{}{"config_id": "atlantis"}, http.StatusNotFound, 0},
		{"malformed body", "not an object", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, "POST", "/api/sessions", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantSeats == 0 {
				return
			}
			var info service.SessionInfo
			decode(t, w, &info)
			if len(info.GameState.Players) != tt.wantSeats {
				t.Errorf("Expected %d players, got %d", tt.wantSeats, len(info.GameState.Players))
			}
			if info.GameState.Phase != engine.PhaseWaiting {
				t.Errorf("Expected WAITING, got %s", info.GameState.Phase)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := setupTestServer(t)
	id := createTable(t, s)
	createTable(t, s)

	w := doRequest(t, s, "GET", "/api/sessions?limit=1", nil)
	var list struct {
		Count int `json:"count"`
		Total int `json:"total"`
	}
	decode(t, w, &list)
	if list.Count != 1 || list.Total != 2 {
		t.Errorf("Expected 1 of 2 sessions, got %d of %d", list.Count, list.Total)
	}

	if w := doRequest(t, s, "GET", "/api/sessions/"+id, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w := doRequest(t, s, "DELETE", "/api/sessions/"+id, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w := doRequest(t, s, "GET", "/api/sessions/"+id+"/state", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, w.Code)
	}
}

func TestPlayTurn(t *testing.T) {
	s := setupTestServer(t)
	id := createTable(t, s)
	base := "/api/sessions/" + id

	w := doRequest(t, s, "POST", base+"/roll", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	var rolled service.CommandResult
	decode(t, w, &rolled)
	if rolled.GameState.Phase != engine.PhaseAction {
		t.Errorf("Expected ACTION on the Book Store, got %s", rolled.GameState.Phase)
	}
	if rolled.Awaiting != "buy_property|decline_property" {
		t.Errorf("Expected a purchase prompt, got %q", rolled.Awaiting)
	}

	// rolling again is a phase violation
	if w := doRequest(t, s, "POST", base+"/roll", nil); w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}

	w = doRequest(t, s, "POST", base+"/buy", nil)
	var bought service.CommandResult
	decode(t, w, &bought)
	if ann := bought.GameState.Players[0]; ann.Money != 1440 {
		t.Errorf("Expected Ann to hold 1440 after buying, got %d", ann.Money)
	}
	if bought.GameState.CurrentPlayer != 1 || bought.Awaiting != "roll_dice" {
		t.Errorf("Expected Bob to roll next, got player %d awaiting %q", bought.GameState.CurrentPlayer, bought.Awaiting)
	}

	w = doRequest(t, s, "GET", base+"/tiles/1", nil)
	var tile service.TileInfo
	decode(t, w, &tile)
	if tile.Owner != "Ann" || tile.Rent != 2 {
		t.Errorf("Expected Ann's tile with rent 2, got %+v", tile)
	}
	if w := doRequest(t, s, "GET", base+"/tiles/99", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for a missing tile, got %d", http.StatusNotFound, w.Code)
	}

	w = doRequest(t, s, "GET", base+"/log?limit=2&order=asc", nil)
	var history service.HistoryResponse
	decode(t, w, &history)
	if len(history.Entries) != 2 || history.Entries[0].Seq != 1 || !history.HasNext {
		t.Errorf("Unexpected first log page: %+v", history)
	}
}

func TestCommandValidation(t *testing.T) {
	s := setupTestServer(t)
	id := createTable(t, s)
	base := "/api/sessions/" + id

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantStatus int
	}{
		{"bank without action", base + "/bank", map[string]string{}, http.StatusBadRequest},
		{"bank unknown action", base + "/bank", map[string]string{"action": "ROB"}, http.StatusBadRequest},
		{"bank outside the bank", base + "/bank", map[string]string{"action": "borrow"}, http.StatusConflict},
		{"trade bad side", base + "/trade", map[string]interface{}{"symbol": "TSLA", "quantity": 1, "side": "HOLD"}, http.StatusBadRequest},
		{"trade with market closed", base + "/trade", map[string]interface{}{"symbol": "TSLA", "quantity": 1, "side": "buy"}, http.StatusConflict},
		{"close closed market", base + "/market/close", nil, http.StatusConflict},
		{"accept without chance", base + "/chance/accept", nil, http.StatusConflict},
		{"unknown session", "/api/sessions/zzzz/roll", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, "POST", tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			var body map[string]string
			decode(t, w, &body)
			if body["error"] == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestConfigs(t *testing.T) {
	s := setupTestServer(t)

	w := doRequest(t, s, "GET", "/api/configs", nil)
	var configs []service.ConfigInfo
	decode(t, w, &configs)
	if len(configs) != 1 || configs[0].ConfigID != config.BuiltinName {
		t.Errorf("Expected only the built-in board, got %+v", configs)
	}

	w = doRequest(t, s, "GET", "/api/configs/classic", nil)
	var board engine.GameConfig
	decode(t, w, &board)
	if len(board.Tiles) != 48 {
		t.Errorf("Expected 48 tiles, got %d", len(board.Tiles))
	}

	if w := doRequest(t, s, "GET", "/api/configs/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestInvalidBoardIsBadRequest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write board: %v", err)
	}
	configs, err := config.NewManager(dir, "")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs,
		service.WithScheduler(scheduler.Options{Inline: true}))
	t.Cleanup(svc.Close)
	s := NewServer(svc, nil)

	if w := doRequest(t, s, "GET", "/api/configs/broken", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for GET, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
	w := doRequest(t, s, "POST", "/api/sessions", map[string]interface{}{"config_id": "broken", "player_count": 2})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for POST, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func TestListSessionsSort(t *testing.T) {
	s := setupTestServer(t)
	for i := 0; i < 4; i++ {
		createTable(t, s)
	}

	ids := func(query string) []string {
		t.Helper()
		w := doRequest(t, s, "GET", "/api/sessions?"+query, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}
		var list struct {
			Sort     string                 `json:"sort"`
			Sessions []*service.SessionInfo `json:"sessions"`
		}
		decode(t, w, &list)
		if list.Sort != "id" {
			t.Errorf("Expected sort id echoed, got %q", list.Sort)
		}
		out := make([]string, len(list.Sessions))
		for i, info := range list.Sessions {
			out[i] = info.ID
		}
		return out
	}

	asc := ids("sort=id&order=asc")
	if len(asc) != 4 || !sort.StringsAreSorted(asc) {
		t.Errorf("Expected 4 ids in ascending order, got %v", asc)
	}
	desc := ids("sort=id")
	for i := range desc {
		if desc[i] != asc[len(asc)-1-i] {
			t.Errorf("Expected descending ids, got %v", desc)
			break
		}
	}

	for _, query := range []string{"sort=name", "order=sideways"} {
		if w := doRequest(t, s, "GET", "/api/sessions?"+query, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", query, http.StatusBadRequest, w.Code)
		}
	}
}

func TestResults(t *testing.T) {
	s := setupTestServer(t)

	w := doRequest(t, s, "GET", "/api/results?limit=5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	if list.Count != 0 {
		t.Errorf("Expected no finished games, got %d", list.Count)
	}

	if w := doRequest(t, s, "GET", "/api/leaderboard", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestWebSocketRequiresSession(t *testing.T) {
	s := setupTestServer(t)

	if w := doRequest(t, s, "GET", "/ws", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if w := doRequest(t, s, "GET", "/ws?session=nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("session %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("buy: %w", engine.ErrInvalidCommand), http.StatusConflict},
		{engine.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{engine.ErrInsufficientShares, http.StatusUnprocessableEntity},
		{engine.ErrUnknownStock, http.StatusUnprocessableEntity},
		{engine.ErrInvalidQuantity, http.StatusUnprocessableEntity},
		{engine.ErrInvalidSetup, http.StatusBadRequest},
		{fmt.Errorf("failed to load config x: %w", config.ErrInvalidConfig), http.StatusBadRequest},
		{service.ErrInvalidRequest, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}
