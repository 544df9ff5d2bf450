// Package api provides the HTTP REST API of the RichMan server.
//
// Endpoints (all JSON):
//
// Sessions:
//   - POST   /api/sessions              - Create a table {config_id, player_count, players}
//   - GET    /api/sessions              - List tables (?sort=created|accessed&order&limit)
//   - GET    /api/sessions/{id}         - Session info with the current snapshot
//   - DELETE /api/sessions/{id}         - Remove a table and cancel its timers
//   - GET    /api/sessions/{id}/state   - Current snapshot
//   - GET    /api/sessions/{id}/log     - Event log page (?page&limit&order)
//   - GET    /api/sessions/{id}/tiles/{n} - One tile with owner, rent and occupants
//
// Commands (POST, answered with the post-command snapshot and new log entries):
//   - /api/sessions/{id}/roll
//   - /api/sessions/{id}/buy, /decline
//   - /api/sessions/{id}/bank {"action": "BORROW|REPAY"}, /bank/leave
//   - /api/sessions/{id}/chance/accept
//   - /api/sessions/{id}/trade {"symbol", "quantity", "side": "BUY|SELL"}
//   - /api/sessions/{id}/market/close
//
// Boards and results:
//   - GET /api/configs, /api/configs/{name}
//   - GET /api/results?limit, /api/leaderboard?limit
//   - GET /api/health
//
// Live updates: GET /ws?session={id} upgrades to a WebSocket that receives a
// snapshot after every command and every automatic transition.
//
// Errors are returned as {"error": "..."}. A missing session, board or tile is
// 404, a command issued in the wrong phase is 409, a rejected trade or purchase
// is 422, a malformed request is 400.
package api
