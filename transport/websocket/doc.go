// Package websocket pushes live game snapshots to browser viewers.
//
// A single Hub goroutine owns the per-session client sets. Connections join a
// session through ServeWS and first receive a "snapshot" message with the
// current state, then a "state_update" message after every command and every
// automatic transition of that session.
//
// BroadcastToSession is called by the game service while it holds a session
// lock, so it never blocks: messages are queued and fanned out by Run, and a
// full queue drops the update. Clients that cannot keep up are disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, sessionID, state)
//	})
//
// Viewers are read-only; commands go through the REST API.
package websocket
