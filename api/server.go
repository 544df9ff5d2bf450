package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/game/service"
	"github.com/wricardo/mcp-training/richman/internal/logger"
	"github.com/wricardo/mcp-training/richman/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game state
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/log", s.handleGetLog).Methods("GET")
	api.HandleFunc("/sessions/{id}/tiles/{tile:[0-9]+}", s.handleDescribeTile).Methods("GET")

	// Player commands
	api.HandleFunc("/sessions/{id}/roll", s.command("roll", s.service.RollDice)).Methods("POST")
	api.HandleFunc("/sessions/{id}/buy", s.command("buy", s.service.BuyProperty)).Methods("POST")
	api.HandleFunc("/sessions/{id}/decline", s.command("decline", s.service.DeclineProperty)).Methods("POST")
	api.HandleFunc("/sessions/{id}/bank", s.handleBank).Methods("POST")
	api.HandleFunc("/sessions/{id}/bank/leave", s.command("leave_bank", s.service.LeaveBank)).Methods("POST")
	api.HandleFunc("/sessions/{id}/chance/accept", s.command("accept_chance", s.service.AcceptChance)).Methods("POST")
	api.HandleFunc("/sessions/{id}/trade", s.handleTrade).Methods("POST")
	api.HandleFunc("/sessions/{id}/market/close", s.command("close_market", s.service.CloseMarket)).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// Finished games
	api.HandleFunc("/results", s.handleListResults).Methods("GET")
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service and engine errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidCommand):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrInsufficientShares),
		errors.Is(err, engine.ErrUnknownStock),
		errors.Is(err, engine.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, engine.ErrInvalidSetup),
		errors.Is(err, engine.ErrInvalidConfig):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	respondError(w, status, err.Error())
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logger.With("session", session.ID).Infof("created %s table with %d players",
		session.ConfigID, len(session.GameState.Players))
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "id", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}
	if sortBy != "created" && sortBy != "accessed" && sortBy != "id" {
		respondError(w, http.StatusBadRequest, "sort must be one of created, accessed, id")
		return
	}
	if order != "asc" && order != "desc" {
		respondError(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sortBy == "id" {
			if order == "asc" {
				return sessions[i].ID < sessions[j].ID
			}
			return sessions[i].ID > sessions[j].ID
		}
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limit := queryInt(r, "limit", total); limit < total {
		sessions = sessions[:limit]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game State Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 20),
		Order: "desc",
	}
	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetLog(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleDescribeTile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tileID, err := strconv.Atoi(vars["tile"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid tile id")
		return
	}

	tile, err := s.service.DescribeTile(r.Context(), vars["id"], tileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tile)
}

// Command Handlers

// command adapts a body-less player command to a handler
func (s *Server) command(name string, run func(ctx context.Context, sessionID string) (*service.CommandResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		result, err := run(r.Context(), sessionID)
		s.respondCommand(w, sessionID, name, result, err)
	}
}

func (s *Server) handleBank(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Action string `json:"action"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	op := engine.BankOp(strings.ToUpper(strings.TrimSpace(req.Action)))
	if op != engine.BankBorrow && op != engine.BankRepay {
		respondError(w, http.StatusBadRequest, "action must be BORROW or REPAY")
		return
	}

	result, err := s.service.BankAction(r.Context(), sessionID, op)
	s.respondCommand(w, sessionID, "bank_"+strings.ToLower(string(op)), result, err)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.TradeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Side = engine.TradeSide(strings.ToUpper(strings.TrimSpace(string(req.Side))))
	if req.Side != engine.SideBuy && req.Side != engine.SideSell {
		respondError(w, http.StatusBadRequest, "side must be BUY or SELL")
		return
	}

	result, err := s.service.TradeStock(r.Context(), sessionID, req)
	s.respondCommand(w, sessionID, "trade", result, err)
}

func (s *Server) respondCommand(w http.ResponseWriter, sessionID, name string, result *service.CommandResult, err error) {
	log := logger.With("session", sessionID, "command", name)
	if err != nil {
		log.Debugf("rejected: %v", err)
		respondServiceError(w, err)
		return
	}
	log.Debugf("phase=%s awaiting=%s events=%d", result.GameState.Phase, result.Awaiting, len(result.Events))
	respondJSON(w, http.StatusOK, result)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.service.LoadConfig(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, config)
}

// Results Handlers

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListResults(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(list),
		"results": list,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.service.Leaderboard(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"leaders": board,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket and greet with the current snapshot
	s.hub.ServeWS(w, r, session.ID, session.GameState)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
