package engine

import "fmt"

// WalkByInterrupt reports whether passing through a tile of this kind suspends movement
func WalkByInterrupt(kind TileKind) bool {
	return kind == TileBank || kind == TileStockMarket
}

// beginMove starts walking the active player. A non-positive step count resolves
// the current tile without motion.
func (e *GameEngine) beginMove(steps int) {
	if steps <= 0 {
		e.state.Movement = Movement{State: MoveResolving}
		e.schedule(TransResolve, e.rules.Delays.ResolveMS)
		return
	}
	e.state.Movement = Movement{State: MoveAnimating, Steps: steps, Remaining: steps}
	e.schedule(TransStep, e.rules.Delays.StepMS)
}

// resumeMove continues a suspended walk with whatever the interrupt left behind
func (e *GameEngine) resumeMove() {
	p := e.active()
	remaining := e.state.Movement.Remaining
	e.state.Decision = nil
	e.setPhase(PhaseMoving)
	e.addLog(fmt.Sprintf("%s continues moving (%d steps)...", p.Name, remaining), LogInfo)
	e.state.Movement.State = MoveAnimating
	e.schedule(TransStep, e.rules.Delays.StepMS)
}

// step advances the active player one tile
func (e *GameEngine) step() {
	p := e.active()
	next, boundary := e.topo.Next(p.Position)

	switch boundary {
	case OuterWrap:
		e.ledger.ApplyDelta(p, e.rules.PassStartReward)
		e.addLog(fmt.Sprintf("%s passed Start! Collected $%d", p.Name, e.rules.PassStartReward), LogSuccess)
		if interest := e.ledger.AccrueInterest(p); interest > 0 {
			e.addLog(fmt.Sprintf("Loan Interest! Debt increased by $%d (Total: $%d)", interest, p.Loan), LogDanger)
		}
	case InnerWrap:
		e.ledger.ApplyDelta(p, e.rules.InnerLapReward)
		e.addLog(fmt.Sprintf("%s passed %s! Collected $%d", p.Name, e.tile(next).Name, e.rules.InnerLapReward), LogSuccess)
	case InnerExit:
		e.addLog(fmt.Sprintf("%s leaves the Inner Loop via flight route.", p.Name), LogInfo)
	}

	p.Position = next
	e.state.Movement.Remaining--

	t := e.tile(next)
	if WalkByInterrupt(t.Kind) && e.state.Movement.Remaining > 0 {
		e.addLog(fmt.Sprintf("%s passes the %s...", p.Name, t.Name), LogInfo)
		if t.Kind == TileBank {
			e.prompt(PhaseAction, DecisionBank, t)
		} else {
			e.prompt(PhaseTrading, DecisionMarket, t)
		}
		return
	}

	if e.state.Movement.Remaining > 0 {
		e.schedule(TransStep, e.rules.Delays.StepMS)
		return
	}
	e.state.Movement.State = MoveResolving
	e.schedule(TransResolve, e.rules.Delays.ResolveMS)
}
