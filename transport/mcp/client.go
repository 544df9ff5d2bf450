package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/game/results"
	"github.com/wricardo/mcp-training/richman/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"RichMan",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`RichMan - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Be the last player standing. Buy property, collect rent, trade stocks and avoid bankruptcy on a
two-loop board (an outer city ring and an inner ring reached through airports).

FLOW:
Every command returns "awaiting": the command(s) the game expects next from a human seat.
Computer seats and animations advance on their own; call game_state to see where things stand.

AVAILABLE TOOLS:
- create_session, list_sessions, get_session, list_configs
- game_state, event_log, describe_tile
- roll_dice, buy_property, decline_property
- bank_action (BORROW/REPAY), leave_bank
- accept_chance
- trade_stock (BUY/SELL), close_market
- list_results
- game_instructions: full rules`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// sessionTool declares a tool whose only required argument is the session
func sessionTool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game table. Without players, player_count seats are filled with one human per seat and a computer opponent named Robot.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Board configuration to use (optional, see list_configs)",
				},
				"player_count": map[string]interface{}{
					"type":        "integer",
					"minimum":     engine.MinPlayers,
					"maximum":     engine.MaxPlayers,
					"description": "Number of seats when players is omitted",
				},
				"players": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name": map[string]interface{}{"type": "string"},
							"kind": map[string]interface{}{"type": "string", "enum": []string{"HUMAN", "AI"}},
						},
					},
					"description": "Explicit seats in turn order",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(sessionTool("get_session", "Get details of a specific session"), c.handleGetSession)

	// Game state
	c.mcpServer.AddTool(sessionTool("game_state", "Get the current game state: players, phase, stocks and what the game is waiting for"), c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_log",
		Description: "Get the narrated event log of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Entries per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEventLog)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Describe one board tile: kind, price, current rent, owner and who is standing on it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"tile_id": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"description": "Tile ID (outer loop first, then inner loop)",
				},
			},
			Required: []string{"session_id", "tile_id"},
		},
	}, c.handleDescribeTile)

	// Commands
	c.mcpServer.AddTool(sessionTool("roll_dice", "Roll the dice for the current human player"), c.command("roll"))
	c.mcpServer.AddTool(sessionTool("buy_property", "Buy the unowned property the current player landed on"), c.command("buy"))
	c.mcpServer.AddTool(sessionTool("decline_property", "Decline buying the current property"), c.command("decline"))
	c.mcpServer.AddTool(sessionTool("leave_bank", "Leave the bank without a transaction"), c.command("bank/leave"))
	c.mcpServer.AddTool(sessionTool("accept_chance", "Accept the drawn chance card"), c.command("chance/accept"))
	c.mcpServer.AddTool(sessionTool("close_market", "Close the stock market and continue"), c.command("market/close"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bank_action",
		Description: "Borrow a loan or repay the outstanding loan while at the bank",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.BankBorrow), string(engine.BankRepay)},
					"description": "BORROW or REPAY",
				},
			},
			Required: []string{"session_id", "action"},
		},
	}, c.handleBankAction)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "trade_stock",
		Description: "Buy or sell shares while the stock market is open",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Stock symbol, e.g. TSLA",
				},
				"quantity": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"description": "Number of shares",
				},
				"side": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.SideBuy), string(engine.SideSell)},
					"description": "BUY or SELL",
				},
			},
			Required: []string{"session_id", "symbol", "quantity", "side"},
		},
	}, c.handleTradeStock)

	// Boards and results
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_results",
		Description: "List recently finished games and the all-time winners",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of games to list",
				},
			},
		},
	}, c.handleListResults)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	p := "/api/sessions/" + url.PathEscape(sessionID)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := service.CreateSessionRequest{}
	body.ConfigID, _ = args["config_id"].(string)
	body.PlayerCount, _ = intArg(args, "player_count")
	if raw, ok := args["players"].([]interface{}); ok {
		for _, p := range raw {
			seat, _ := p.(map[string]interface{})
			name, _ := seat["name"].(string)
			kind, _ := seat["kind"].(string)
			body.Players = append(body.Players, engine.PlayerSetup{Name: name, Kind: engine.ControlKind(kind)})
		}
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nBoard: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := engine.Phase("?")
		if s.GameState != nil {
			phase = s.GameState.Phase
		}
		fmt.Fprintf(&result, "- %s (Board: %s, Phase: %s, Created: %s)\n",
			s.ID, s.ConfigName, phase, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameState(&state)
	if awaiting := service.Awaiting(&state); awaiting != "" {
		result += "\nAwaiting: " + awaiting
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEventLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order, ok := args["order"].(string); ok {
		query.Set("order", order)
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "log")+"?"+query.Encode(), nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	tileID, ok := intArg(args, "tile_id")
	if !ok || tileID < 0 {
		return mcp.NewToolResultError("tile_id must be a non-negative integer"), nil
	}

	var tile service.TileInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("tiles/%d", tileID)), nil, &tile); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTile(&tile)), nil
}

// command returns a handler that posts a body-less command
func (c *Client) command(path string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, _ := request.GetArguments()["session_id"].(string)
		return c.postCommand(ctx, sessionID, path, nil)
	}
}

func (c *Client) handleBankAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	action, _ := args["action"].(string)
	return c.postCommand(ctx, sessionID, "bank", map[string]string{"action": action})
}

func (c *Client) handleTradeStock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	trade := service.TradeRequest{}
	trade.Symbol, _ = args["symbol"].(string)
	trade.Quantity, _ = intArg(args, "quantity")
	side, _ := args["side"].(string)
	trade.Side = engine.TradeSide(side)
	return c.postCommand(ctx, sessionID, "trade", trade)
}

func (c *Client) postCommand(ctx context.Context, sessionID, path string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, path), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Boards:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (config_id: %s)\n  %s\n  Tiles: %d (%d outer, %d inner), Stocks: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Tiles, config.OuterSize, config.InnerSize, config.Stocks)
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleListResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, ok := intArg(request.GetArguments(), "limit")
	if !ok || limit <= 0 {
		limit = 10
	}

	var list struct {
		Results []results.Result `json:"results"`
	}
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/results?limit=%d", limit), nil, &list); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var board struct {
		Leaders []results.WinCount `json:"leaders"`
	}
	if err := c.apiCall(ctx, "GET", "/api/leaderboard", nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatResults(list.Results, board.Leaders)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `RichMan - Complete Instructions

GAME OBJECTIVE:
Avoid bankruptcy while your opponents go broke. The last solvent player wins.

THE BOARD:
• Two loops of tiles. The outer ring starts at tile 0 (Start); the inner ring follows it.
• Airports on the outer ring fly you to the Central Hub on the inner ring.
• Passing the inner loop's exit tile moves you back onto the outer ring.

TURN FLOW:
1. roll_dice - the piece walks one tile at a time.
2. Walking past a Bank or the Stock Exchange stops you there with a choice.
3. Landing on a tile resolves it:
   • Unowned property: buy_property or decline_property
   • Owned property: pay rent (rent grows with houses)
   • Bank: bank_action BORROW / REPAY, or leave_bank
   • Chance: a card is drawn, then accept_chance
   • Stock Exchange: trade_stock, then close_market
   • Tax, Shopping, Hospital, Jail: resolved automatically
4. Every 10th roll the market opens for everyone's current player before moving.

MONEY:
• Passing Start pays a reward; completing the inner loop pays a smaller one.
• Loans add a fee, and interest is charged each time you pass Start with debt.
• When you cannot pay, everything you have goes to the creditor and you are bankrupt.

TIPS:
• Every command response lists "Awaiting": the commands valid right now.
• Computer players and animations advance by themselves; poll game_state to follow along.
• describe_tile tells you rent and ownership before you commit.`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nBoard: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func tileName(state *engine.GameState, id int) string {
	if id >= 0 && id < len(state.Tiles) {
		return state.Tiles[id].Name
	}
	return fmt.Sprintf("#%d", id)
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Board: %s | Phase: %s | Turn: %d | Rolls: %d\n",
		state.ConfigName, state.Phase, state.Turn, state.TotalRolls)
	if state.CurrentPlayer >= 0 && state.CurrentPlayer < len(state.Players) {
		current := state.Players[state.CurrentPlayer]
		fmt.Fprintf(&result, "Current player: %s (%s)", current.Name, current.Kind)
		if state.Dice > 0 {
			fmt.Fprintf(&result, " | Dice: %d", state.Dice)
		}
		result.WriteString("\n")
	}

	result.WriteString("\nPlayers:\n")
	for _, p := range state.Players {
		status := ""
		switch {
		case p.Bankrupt:
			status = " BANKRUPT"
		case p.InJail:
			status = fmt.Sprintf(" in jail (%d)", p.JailTurns)
		case p.Hospitalized:
			status = fmt.Sprintf(" in hospital (%d)", p.HospitalTurns)
		}
		fmt.Fprintf(&result, "  %d. %s [%s] $%d loan $%d at %s%s\n",
			p.ID, p.Name, p.Kind, p.Money, p.Loan, tileName(state, p.Position), status)
		for symbol, h := range p.Portfolio {
			if h.Count > 0 {
				fmt.Fprintf(&result, "     %s x%d @ %d\n", symbol, h.Count, h.AvgCost)
			}
		}
	}

	if len(state.Stocks) > 0 {
		result.WriteString("\nStocks:\n")
		for _, s := range state.Stocks {
			fmt.Fprintf(&result, "  %-5s %4d (%+d)\n", s.Symbol, s.Price, s.Price-s.PreviousPrice)
		}
	}

	if d := state.Decision; d != nil {
		fmt.Fprintf(&result, "\nDecision: %s at %s", d.Kind, tileName(state, d.TileID))
		if d.Event != nil {
			fmt.Fprintf(&result, " - %s", d.Event.Description)
		}
		result.WriteString("\n")
	}

	if state.Phase == engine.PhaseGameOver {
		winner := "Nobody"
		if state.WinnerID != nil && *state.WinnerID < len(state.Players) {
			winner = state.Players[*state.WinnerID].Name
		}
		fmt.Fprintf(&result, "\nGAME OVER - %s wins\n", winner)
	}

	return result.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var out strings.Builder
	if result.Message != "" {
		out.WriteString(result.Message + "\n")
	}
	if len(result.Events) > 0 {
		out.WriteString("Events:\n")
		for _, e := range result.Events {
			fmt.Fprintf(&out, "  [%s] %s\n", e.Type, e.Message)
		}
	}
	out.WriteString("\n" + formatGameState(result.GameState))
	if result.Awaiting != "" {
		out.WriteString("\nAwaiting: " + result.Awaiting)
	} else if result.Pending != nil {
		fmt.Fprintf(&out, "\nNext: %s in %s (poll game_state)", result.Pending.Kind, result.Pending.Delay)
	}
	return out.String()
}

func formatTile(tile *service.TileInfo) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Tile %d: %s (%s, %s loop)\n", tile.ID, tile.Name, tile.Kind, tile.Loop)
	if tile.Kind == engine.TileProperty {
		owner := "unowned"
		if tile.Owner != "" {
			owner = "owned by " + tile.Owner
		}
		fmt.Fprintf(&out, "Price: $%d | Rent: $%d | Houses: %d | %s\n", tile.Price, tile.Rent, tile.Houses, owner)
	}
	if tile.Description != "" {
		out.WriteString(tile.Description + "\n")
	}
	if len(tile.Occupants) > 0 {
		out.WriteString("Standing here: " + strings.Join(tile.Occupants, ", ") + "\n")
	}
	return out.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Event log (page %d/%d, %d total):\n", history.Page, history.TotalPages, history.Total)
	for _, e := range history.Entries {
		fmt.Fprintf(&out, "  #%d [%s] %s\n", e.Seq, e.Type, e.Message)
	}
	if history.HasNext {
		out.WriteString("More entries on the next page.\n")
	}
	return out.String()
}

func formatResults(list []results.Result, leaders []results.WinCount) string {
	var out strings.Builder
	out.WriteString("Recent games:\n")
	if len(list) == 0 {
		out.WriteString("  none yet\n")
	}
	for _, r := range list {
		fmt.Fprintf(&out, "  %s on %s: %s won after %d turns (%s)\n",
			r.SessionID, r.ConfigName, r.Winner, r.Turns, r.FinishedAt.Format("2006-01-02 15:04"))
	}
	if len(leaders) > 0 {
		out.WriteString("\nMost wins:\n")
		for i, w := range leaders {
			fmt.Fprintf(&out, "  %d. %s - %d\n", i+1, w.Name, w.Wins)
		}
	}
	return out.String()
}
