package engine

import (
	"context"
	"fmt"
	"time"
)

// TransitionKind names an automatic transition owned by the scheduler
type TransitionKind string

const (
	TransAIRoll     TransitionKind = "AI_ROLL"
	TransRoll       TransitionKind = "ROLL"
	TransStep       TransitionKind = "STEP"
	TransResolve    TransitionKind = "RESOLVE"
	TransTeleport   TransitionKind = "TELEPORT"
	TransChanceDraw TransitionKind = "CHANCE_DRAW"
	TransDecide     TransitionKind = "DECIDE"
	TransEndTurn    TransitionKind = "END_TURN"
)

// Transition is a delayed step of the state machine. Seq identifies it so a
// scheduler can drop a timer that fired after the engine moved on.
type Transition struct {
	Seq   uint64         `json:"seq"`
	Kind  TransitionKind `json:"kind"`
	Delay time.Duration  `json:"delay"`
}

// transitionPhases lists the phases in which each automatic transition may fire
var transitionPhases = map[TransitionKind][]Phase{
	TransAIRoll:     {PhaseWaiting},
	TransRoll:       {PhaseRolling},
	TransStep:       {PhaseMoving},
	TransResolve:    {PhaseMoving},
	TransTeleport:   {PhaseMoving},
	TransChanceDraw: {PhaseEvent},
	TransDecide:     {PhaseAction, PhaseEvent, PhaseTrading},
	TransEndTurn:    {PhaseEndTurn},
}

// phaseTransitions is the table of legal phase changes
var phaseTransitions = map[Phase][]Phase{
	PhaseSetup:    {PhaseWaiting},
	PhaseWaiting:  {PhaseRolling, PhaseEndTurn},
	PhaseRolling:  {PhaseMoving, PhaseTrading},
	PhaseMoving:   {PhaseAction, PhaseEvent, PhaseTrading, PhaseEndTurn},
	PhaseAction:   {PhaseMoving, PhaseEndTurn},
	PhaseEvent:    {PhaseEndTurn},
	PhaseTrading:  {PhaseMoving, PhaseEndTurn},
	PhaseEndTurn:  {PhaseWaiting, PhaseGameOver},
	PhaseGameOver: nil,
}

// CanTransition reports whether the turn controller may move from one phase to another.
// Staying in the same phase is always allowed except in GAME_OVER.
func CanTransition(from, to Phase) bool {
	if from == to {
		return from != PhaseGameOver
	}
	for _, p := range phaseTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

func (e *GameEngine) setPhase(to Phase) {
	if !CanTransition(e.state.Phase, to) {
		panic(fmt.Sprintf("illegal phase transition %s -> %s", e.state.Phase, to))
	}
	e.state.Phase = to
}

// schedule replaces any pending transition. Only one transition is ever in flight.
func (e *GameEngine) schedule(kind TransitionKind, delayMS int) {
	e.seq++
	e.next = &Transition{Seq: e.seq, Kind: kind, Delay: ms(delayMS)}
}

// Pending returns the scheduled automatic transition, if any
func (e *GameEngine) Pending() (Transition, bool) {
	if e.next == nil {
		return Transition{}, false
	}
	return *e.next, true
}

// Advance fires the pending transition now, ignoring its delay
func (e *GameEngine) Advance(ctx context.Context) error {
	if e.next == nil {
		return ErrNothingPending
	}
	t := *e.next
	e.next = nil
	if !phaseAllows(t.Kind, e.state.Phase) {
		return fmt.Errorf("%w: %s cannot fire in %s", ErrStaleTransition, t.Kind, e.state.Phase)
	}
	return e.fire(ctx, t)
}

// AdvanceIf fires the pending transition only if it is still the one identified by seq
func (e *GameEngine) AdvanceIf(ctx context.Context, seq uint64) error {
	if e.next == nil || e.next.Seq != seq {
		return ErrStaleTransition
	}
	return e.Advance(ctx)
}

func phaseAllows(kind TransitionKind, phase Phase) bool {
	for _, p := range transitionPhases[kind] {
		if p == phase {
			return true
		}
	}
	return false
}

func (e *GameEngine) fire(ctx context.Context, t Transition) error {
	switch t.Kind {
	case TransAIRoll:
		return e.apply(ctx, Command{Kind: CmdRoll})
	case TransRoll:
		e.rollResult()
	case TransStep:
		e.step()
	case TransResolve:
		e.resolveLanding(ctx)
	case TransTeleport:
		e.teleport(ctx)
	case TransChanceDraw:
		e.drawChance(ctx)
	case TransDecide:
		e.decide(ctx)
	case TransEndTurn:
		e.nextPlayer()
	default:
		return fmt.Errorf("%w: unknown transition %s", ErrStaleTransition, t.Kind)
	}
	return nil
}
