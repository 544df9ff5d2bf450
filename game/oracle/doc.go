// Package oracle supplies the engine's external collaborators: the chance deck
// and the commentary narrators.
//
// Deck implements engine.ChanceOracle with a fixed set of money and move events.
// TemplateNarrator implements engine.Narrator with canned lines grouped by event
// category. RemoteNarrator asks an HTTP service instead; NewNarrator puts it in
// front of the templates so a failing service never silences the game.
package oracle
