// Command richman starts the RichMan board game server.
//
// It supports three modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "simulate" – plays computer-only games back to back and prints the winners
//
// Settings come from an optional YAML file and RICHMAN_* environment variables
// (a .env file is loaded first); flags override both.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/richman/api"
	"github.com/wricardo/mcp-training/richman/game/config"
	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/game/journal"
	"github.com/wricardo/mcp-training/richman/game/oracle"
	"github.com/wricardo/mcp-training/richman/game/results"
	"github.com/wricardo/mcp-training/richman/game/scheduler"
	"github.com/wricardo/mcp-training/richman/game/service"
	"github.com/wricardo/mcp-training/richman/game/session"
	"github.com/wricardo/mcp-training/richman/internal/logger"
	"github.com/wricardo/mcp-training/richman/internal/settings"
	"github.com/wricardo/mcp-training/richman/transport/mcp"
	"github.com/wricardo/mcp-training/richman/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "RichMan Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	cmd := newCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name, err)
		os.Exit(1)
	}
}

// newCommand builds the command tree. Flags are shared by every subcommand.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "richman",
		Usage:   "dual-loop property trading board game server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "settings", Usage: "YAML settings file"},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Usage: "Directory containing board configurations"},
			&cli.FloatFlag{Name: "delay-scale", Usage: "Multiplier for animation delays, 0 disables them"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel"},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioMCP,
			},
			{
				Name:  "simulate",
				Usage: "Play computer-only games and print the winners",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "games", Value: 10, Usage: "Number of games"},
					&cli.IntFlag{Name: "players", Value: 2, Usage: "Computer players per game"},
					&cli.StringFlag{Name: "board", Usage: "Board configuration (default from settings)"},
					&cli.Int64Flag{Name: "seed", Usage: "Random seed, 0 picks one"},
					&cli.IntFlag{Name: "max-steps", Value: 20000, Usage: "Transition budget per game"},
				},
				Action: runSimulate,
			},
		},
	}
}

// loadSettings merges the settings file, environment and flags, then
// initializes logging
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	s, err := settings.Load(cmd.String("settings"))
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("host") {
		s.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("config-dir") {
		s.Configs.Dir = cmd.String("config-dir")
	}
	if cmd.IsSet("delay-scale") {
		s.Scheduler.DelayScale = cmd.Float("delay-scale")
	}
	if cmd.Bool("debug") {
		s.Logging.Level = "debug"
	}
	if cmd.Bool("ngrok") {
		s.Ngrok.Enabled = true
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger.Init(s.Logging.Level, s.Logging.Format)
	return s, nil
}

// app holds the wired services of one process
type app struct {
	settings *settings.Settings
	service  service.GameService
	sessions *session.Manager
	results  *results.Store
	journal  *journal.Journal
}

// newApp wires config and session managers, the result store, the journal and
// the game service
func newApp(s *settings.Settings, sched scheduler.Options, broadcaster service.Broadcaster, engineOpts func() []engine.Option) (*app, error) {
	configs, err := config.NewManager(s.Configs.Dir, s.Configs.Default)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	a := &app{settings: s}
	a.sessions = session.NewManager(session.WithOnRemove(func(id string) {
		logger.With("session", id).Info("session removed")
	}))

	opts := []service.Option{
		service.WithScheduler(sched),
		service.WithEngineOptions(engineOpts),
	}
	if broadcaster != nil {
		opts = append(opts, service.WithBroadcaster(broadcaster))
	}

	if s.Results.Path != "" {
		a.results, err = results.Open(s.Results.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open results store: %w", err)
		}
		opts = append(opts, service.WithResults(a.results))
	}
	if s.Journal.Dir != "" {
		a.journal = journal.Open(s.Journal.Dir)
		opts = append(opts, service.WithJournal(a.journal))
	}

	a.service = service.NewGameService(a.sessions, configs, opts...)
	return a, nil
}

// engineOptions gives every session its own chance deck and commentator
func engineOptions(s *settings.Settings) func() []engine.Option {
	return func() []engine.Option {
		return []engine.Option{
			engine.WithOracle(oracle.NewDeck(nil, nil)),
			engine.WithNarrator(oracle.NewNarrator(s.Commentary.URL, s.Commentary.Timeout, nil)),
		}
	}
}

// Close stops scheduled transitions and flushes storage
func (a *app) Close() {
	if a.service != nil {
		a.service.Close()
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			logger.Warn("Failed to close journal: %v", err)
		}
	}
	if a.results != nil {
		if err := a.results.Close(); err != nil {
			logger.Warn("Failed to close results store: %v", err)
		}
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window
func (a *app) sessionCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(a.settings.Sessions.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := a.sessions.CleanupExpiredSessions(a.settings.Sessions.MaxIdle); removed > 0 {
				logger.Info("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// newHandler combines the REST API and the /mcp JSON-RPC endpoint
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger.Info("Starting %s v%s", AppName, Version)

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	a, err := newApp(s, scheduler.Options{DelayScale: s.Scheduler.DelayScale}, hub, engineOptions(s))
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go a.sessionCleanupRoutine(ctx)

	addr := s.Addr()
	handler := newHandler(api.NewServer(a.service, hub), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening on %s", addr)
		logger.Info("REST API: http://%s/api", addr)
		logger.Info("WebSocket: ws://%s/ws?session=<session_id>", addr)
		logger.Info("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if s.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, s.Ngrok, handler)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	logger.Info("Server stopped")
	return nil
}

// runNgrok serves handler through a public tunnel until ctx ends
func runNgrok(ctx context.Context, s settings.NgrokSettings, handler http.Handler) {
	logger.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if s.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.Domain))
		logger.Info("Using custom ngrok domain: %s", s.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(s.AuthToken))
	if err != nil {
		logger.Error("Failed to start ngrok tunnel: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("Ngrok tunnel established: %s", ngrokURL)
	logger.Info("  REST API (ngrok): %s/api", ngrokURL)
	logger.Info("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	logger.Info("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Warn("Ngrok server error: %v", err)
	}
	logger.Info("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses an API server already
// listening on the configured address; otherwise it starts an internal one on a
// random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	externalURL := "http://" + s.Addr()
	baseURL := externalURL
	logger.Info("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil {
		resp.Body.Close()
	}
	if err == nil && resp.StatusCode == http.StatusOK {
		logger.Info("External API server found at %s, using it for MCP", externalURL)
	} else {
		logger.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		a, err := newApp(s, scheduler.Options{DelayScale: s.Scheduler.DelayScale}, hub, engineOptions(s))
		if err != nil {
			listener.Close()
			return err
		}
		defer a.Close()

		httpServer := &http.Server{Handler: api.NewServer(a.service, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("Internal HTTP server on %s", baseURL)
	}

	logger.Info("MCP stdio server ready (API at %s)", baseURL)
	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runSimulate plays computer-only games with no delays
func runSimulate(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	opts := simulation{
		Games:    cmd.Int("games"),
		Players:  cmd.Int("players"),
		Board:    cmd.String("board"),
		Seed:     cmd.Int64("seed"),
		MaxSteps: cmd.Int("max-steps"),
	}
	return simulate(ctx, s, opts, os.Stdout)
}

// simulation describes a batch of computer-only games
type simulation struct {
	Games    int
	Players  int
	Board    string
	Seed     int64
	MaxSteps int
}

func simulate(ctx context.Context, s *settings.Settings, opts simulation, out io.Writer) error {
	if opts.Games <= 0 {
		return fmt.Errorf("games must be positive, got %d", opts.Games)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	// one seed stream for the whole batch keeps a seeded run reproducible
	seeds := rand.New(rand.NewSource(opts.Seed))
	engineOpts := func() []engine.Option {
		return []engine.Option{
			engine.WithRandom(rand.New(rand.NewSource(seeds.Int63()))),
			engine.WithOracle(oracle.NewDeck(rand.New(rand.NewSource(seeds.Int63())), nil)),
			engine.WithNarrator(oracle.NewTemplateNarrator(rand.New(rand.NewSource(seeds.Int63())))),
		}
	}

	a, err := newApp(s, scheduler.Options{Inline: true, MaxInlineSteps: opts.MaxSteps}, nil, engineOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	players := make([]engine.PlayerSetup, opts.Players)
	for i := range players {
		players[i] = engine.PlayerSetup{Name: fmt.Sprintf("Bot %d", i+1), Kind: engine.AI}
	}

	fmt.Fprintf(out, "Simulating %d games (seed %d)\n", opts.Games, opts.Seed)
	wins := make(map[string]int)
	for i := 0; i < opts.Games; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := a.service.CreateSession(ctx, service.CreateSessionRequest{ConfigID: opts.Board, Players: players})
		if err != nil {
			return err
		}

		state := info.GameState
		winner := "unfinished"
		if state.Phase == engine.PhaseGameOver {
			winner = "Nobody"
			if state.WinnerID != nil {
				winner = state.Players[*state.WinnerID].Name
			}
		}
		wins[winner]++
		fmt.Fprintf(out, "game %d: %s after %d turns, %d rolls\n", i+1, winner, state.Turn, state.TotalRolls)

		if err := a.service.DeleteSession(ctx, info.ID); err != nil {
			logger.Warn("Failed to delete simulated session %s: %v", info.ID, err)
		}
	}

	names := make([]string, 0, len(wins))
	for name := range wins {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if wins[names[i]] != wins[names[j]] {
			return wins[names[i]] > wins[names[j]]
		}
		return names[i] < names[j]
	})
	fmt.Fprintln(out, "Summary:")
	for _, name := range names {
		fmt.Fprintf(out, "  %-12s %d\n", name, wins[name])
	}
	return nil
}
