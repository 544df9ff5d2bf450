// Package engine provides the core rules of the RichMan board game.
//
// The board is two nested loops joined by airports: an outer ring that pays a
// reward on every lap and an inner ring that exits to the outer ring instead of
// wrapping. Players roll, walk step by step, and resolve the tile they stop on:
// buying property, paying rent, banking, trading stocks, drawing chance events,
// going to jail or to hospital.
//
// Core Types:
//
// The Engine interface is implemented by GameEngine, a phase state machine with a
// single pending automatic Transition. Human seats advance it through commands
// (RollDice, BuyProperty, ...); delays, animation steps and computer decisions are
// fired through Advance or AdvanceIf by whoever owns the clock. The Ledger is the
// only writer of money, loans, holdings and ownership; the Market perturbs prices.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewEngine(config, engine.DefaultRoster(2, []string{"Ann"}, nil))
//	if err != nil {
//		log.Fatal(err)
//	}
//	game.Start()
//	game.RollDice(ctx)
//	for {
//		if _, ok := game.Pending(); !ok {
//			break
//		}
//		game.Advance(ctx)
//	}
//
// Game Rules:
//
// A session ends when at most one solvent player remains. Debts that cash cannot
// cover are met by selling the debtor's cheapest properties at listed price; a
// player who still cannot pay is bankrupt and frozen.
package engine
