// Package mcp exposes the game to AI agents as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call becomes a REST request against the
// api package, and the JSON answer is rendered as plain text an agent can read.
// Each player command has its own tool (roll_dice, buy_property, bank_action,
// trade_stock and so on); command answers end with "Awaiting:", the commands the
// game expects next from a human seat.
//
// The MCP server returned by GetMCPServer can be served over stdio with
// server.ServeStdio or fed single JSON-RPC messages through HandleMessage, which
// is how the HTTP /mcp endpoint of the main server uses it.
package mcp
