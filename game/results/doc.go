// Package results records finished games in a SQLite database so the server
// can show past winners and a leaderboard.
package results
