// Package service is the application layer between the transports (REST,
// WebSocket, MCP) and the RichMan engine.
//
// GameService creates sessions, runs the eight player commands, serves
// snapshots and the paginated event log, and lists board configurations and
// finished games. After every change it journals new log entries, broadcasts
// the snapshot and hands the engine's next delayed transition to the scheduler.
// A game that reaches GAME_OVER is recorded exactly once.
//
// Each Session carries its own lock; every engine call happens under it.
//
// Usage:
//
//	svc := service.NewGameService(sessions, configs,
//		service.WithBroadcaster(hub),
//		service.WithResults(store),
//	)
//	defer svc.Close()
//
//	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigID: "classic", PlayerCount: 2})
//	res, err := svc.RollDice(ctx, info.ID)
package service
