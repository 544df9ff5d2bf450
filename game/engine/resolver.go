package engine

import (
	"context"
	"fmt"
)

// resolveLanding evaluates the tile the active player stopped on
func (e *GameEngine) resolveLanding(ctx context.Context) {
	p := e.active()
	t := e.tile(p.Position)
	e.state.Movement = Movement{State: MoveIdle}
	e.addLog(fmt.Sprintf("%s landed on %s", p.Name, t.Name), LogInfo)

	if t.Kind == TileAirport && t.ID != e.topo.GoToJail {
		e.addLog(fmt.Sprintf("Boarding flight to %s...", e.tile(e.topo.Hub).Name), LogWarning)
		e.schedule(TransTeleport, e.rules.Delays.TeleportMS)
		return
	}
	e.resolveTile(ctx, p, t)
}

// teleport flies the active player to the hub. The hub gets a standard resolution;
// arriving there is not a lap and pays nothing.
func (e *GameEngine) teleport(ctx context.Context) {
	p := e.active()
	hub := e.tile(e.topo.Hub)
	p.Position = hub.ID
	e.addLog(fmt.Sprintf("%s arrived at %s.", p.Name, hub.Name), LogInfo)
	e.resolveTile(ctx, p, hub)
}

// resolveTile dispatches the landing effect of t for p
func (e *GameEngine) resolveTile(ctx context.Context, p *Player, t *Tile) {
	if t.ID == e.topo.GoToJail {
		e.arrest(ctx, p)
		return
	}

	switch t.Kind {
	case TileProperty:
		e.resolveProperty(ctx, p, t)

	case TileShopping:
		span := e.rules.ShoppingMax - e.rules.ShoppingMin + 1
		cost := e.rules.ShoppingMin + e.rng.Intn(span)
		paid, bankrupt := e.ledger.Collect(p, cost, nil)
		e.addLog(fmt.Sprintf("%s went shopping and spent $%d.", p.Name, paid), LogWarning)
		if bankrupt {
			e.declareBankrupt(ctx, p)
		}
		e.endTurn()

	case TileBank:
		e.prompt(PhaseAction, DecisionBank, t)

	case TileStockMarket:
		e.openMarket(t, fmt.Sprintf("%s enters the %s.", p.Name, t.Name))

	case TileHospital:
		turns := t.Turns
		if turns <= 0 {
			turns = e.rules.HospitalTurns
		}
		p.Hospitalized = true
		p.HospitalTurns = turns
		e.addLog(fmt.Sprintf("%s admitted to %s. Must rest for %d turn(s).", p.Name, t.Name, turns), LogDanger)
		if p.Kind == Human {
			e.narrate(ctx, p, TagHospital)
		}
		e.endTurn()

	case TileTax:
		tax := t.Price
		if tax <= 0 {
			tax = e.rules.DefaultTax
		}
		paid, bankrupt := e.ledger.Collect(p, tax, nil)
		e.addLog(fmt.Sprintf("%s paid $%d tax.", p.Name, paid), LogDanger)
		if bankrupt {
			e.declareBankrupt(ctx, p)
		}
		e.endTurn()

	case TileJail:
		e.addLog("Just visiting jail.", LogInfo)
		e.endTurn()

	case TileChance:
		e.setPhase(PhaseEvent)
		e.state.Decision = &Decision{Kind: DecisionChance, TileID: t.ID}
		e.addLog("Accessing Chance mainframe...", LogInfo)
		e.schedule(TransChanceDraw, e.rules.Delays.ChanceDrawMS)

	case TileParking:
		e.addLog("Parking... Safe for now.", LogInfo)
		e.endTurn()

	default:
		e.endTurn()
	}
}

func (e *GameEngine) resolveProperty(ctx context.Context, p *Player, t *Tile) {
	switch {
	case !t.Owned():
		if p.Money < t.Price {
			e.addLog(fmt.Sprintf("%s cannot afford %s.", p.Name, t.Name), LogWarning)
			e.endTurn()
			return
		}
		e.prompt(PhaseAction, DecisionBuy, t)

	case *t.OwnerID == p.ID:
		e.addLog("Relaxing at own property.", LogInfo)
		e.endTurn()

	default:
		owner := e.state.Players[*t.OwnerID]
		rent := e.ledger.Rent(t)
		if rent == 0 {
			e.addLog(fmt.Sprintf("%s is in jail. No rent due on %s.", owner.Name, t.Name), LogInfo)
			e.endTurn()
			return
		}
		paid, bankrupt := e.ledger.Collect(p, rent, owner)
		e.addLog(fmt.Sprintf("%s paid $%d rent to %s.", p.Name, paid, owner.Name), LogDanger)
		if bankrupt {
			e.declareBankrupt(ctx, p)
		} else if p.Kind == Human && paid > e.rules.HighRentCommentary {
			e.narrate(ctx, p, TagRent)
		}
		e.endTurn()
	}
}

// arrest fines the player, then locks them up on the jail tile
func (e *GameEngine) arrest(ctx context.Context, p *Player) {
	e.addLog(fmt.Sprintf("ARRESTED! Sent to Jail and fined $%d.", e.rules.JailFine), LogDanger)
	_, bankrupt := e.ledger.Collect(p, e.rules.JailFine, nil)
	p.Position = e.topo.Jail
	if bankrupt {
		e.declareBankrupt(ctx, p)
		e.endTurn()
		return
	}
	p.InJail = true
	p.JailTurns = e.rules.JailTurns
	e.narrate(ctx, p, TagJail)
	e.endTurn()
}

// drawChance asks the oracle for an event. Failures fall back to a no-op event.
func (e *GameEngine) drawChance(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, ms(e.rules.Delays.OracleTimeoutMS))
	defer cancel()

	ev, err := e.oracle.Draw(cctx)
	if err != nil || (ev.EffectType != EffectMoney && ev.EffectType != EffectMove) {
		ev = FallbackChance
	}
	e.state.Decision.Event = &ev
	if e.provider().Automatic() {
		e.schedule(TransDecide, e.rules.Delays.ChanceAcceptMS)
	}
}

// applyChance applies the accepted event. Moves stay within the current loop and
// do not trigger the destination tile.
func (e *GameEngine) applyChance(ctx context.Context) {
	p := e.active()
	ev := *e.state.Decision.Event
	e.state.Decision = nil
	e.addLog(fmt.Sprintf("CHANCE: %s", ev.Description), LogWarning)

	switch ev.EffectType {
	case EffectMoney:
		if ev.Value >= 0 {
			e.ledger.ApplyDelta(p, ev.Value)
		} else if _, bankrupt := e.ledger.Collect(p, -ev.Value, nil); bankrupt {
			e.declareBankrupt(ctx, p)
		}
	case EffectMove:
		p.Position = e.topo.Shift(p.Position, ev.Value)
		e.addLog(fmt.Sprintf("%s moved to %s.", p.Name, e.tile(p.Position).Name), LogInfo)
	}
	e.endTurn()
}

// prompt asks the active seat for a decision. Automatic seats answer after a delay.
func (e *GameEngine) prompt(phase Phase, kind DecisionKind, t *Tile) {
	e.setPhase(phase)
	e.state.Decision = &Decision{Kind: kind, TileID: t.ID}
	if e.provider().Automatic() {
		e.schedule(TransDecide, e.rules.Delays.AIDecisionMS)
	}
}

// openMarket starts a trading sub-phase for the active player
func (e *GameEngine) openMarket(t *Tile, announce string) {
	e.addLog(announce, LogWarning)
	e.prompt(PhaseTrading, DecisionMarket, t)
}

func (e *GameEngine) declareBankrupt(ctx context.Context, p *Player) {
	e.addLog(fmt.Sprintf("%s has gone BANKRUPT!", p.Name), LogDanger)
	e.narrate(ctx, p, TagBankrupt)
}
