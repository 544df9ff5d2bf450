package engine

import (
	"context"
	"fmt"
)

type commandRule struct {
	phase    Phase
	decision DecisionKind
}

// commandRules maps every command to the phase and prompt that accept it
var commandRules = map[CommandKind]commandRule{
	CmdRoll:         {PhaseWaiting, ""},
	CmdBuy:          {PhaseAction, DecisionBuy},
	CmdDecline:      {PhaseAction, DecisionBuy},
	CmdBorrow:       {PhaseAction, DecisionBank},
	CmdRepay:        {PhaseAction, DecisionBank},
	CmdLeaveBank:    {PhaseAction, DecisionBank},
	CmdAcceptChance: {PhaseEvent, DecisionChance},
	CmdTrade:        {PhaseTrading, DecisionMarket},
	CmdHold:         {PhaseTrading, DecisionMarket},
	CmdCloseMarket:  {PhaseTrading, DecisionMarket},
}

// legal checks a command against the current phase and prompt
func (e *GameEngine) legal(cmd Command) error {
	rule, ok := commandRules[cmd.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown command '%s'", ErrInvalidCommand, cmd.Kind)
	}
	if e.state.Phase != rule.phase {
		return fmt.Errorf("%w: %s needs phase %s, phase is %s", ErrInvalidCommand, cmd.Kind, rule.phase, e.state.Phase)
	}
	if rule.decision != "" && (e.state.Decision == nil || e.state.Decision.Kind != rule.decision) {
		return fmt.Errorf("%w: no %s decision pending", ErrInvalidCommand, rule.decision)
	}
	if cmd.Kind == CmdAcceptChance && e.state.Decision.Event == nil {
		return fmt.Errorf("%w: chance event not drawn yet", ErrInvalidCommand)
	}
	return nil
}

// command is the entry point for presentation commands. It rejects anything that
// arrives while an automatic transition is pending or while a computer seat is active.
func (e *GameEngine) command(ctx context.Context, cmd Command) error {
	if e.next != nil {
		return fmt.Errorf("%w: %s transition in progress", ErrInvalidCommand, e.next.Kind)
	}
	if e.state.Phase != PhaseSetup && e.state.Phase != PhaseGameOver && e.provider().Automatic() {
		return fmt.Errorf("%w: %s is computer controlled", ErrInvalidCommand, e.active().Name)
	}
	return e.apply(ctx, cmd)
}

// apply executes a command for the active seat. Human commands and provider
// decisions both land here.
func (e *GameEngine) apply(ctx context.Context, cmd Command) error {
	if err := e.legal(cmd); err != nil {
		return err
	}
	p := e.active()

	switch cmd.Kind {
	case CmdRoll:
		e.roll()

	case CmdBuy:
		t := e.tile(e.state.Decision.TileID)
		if err := e.ledger.PurchaseProperty(p, t); err != nil {
			return err
		}
		e.addLog(fmt.Sprintf("%s bought %s for $%d.", p.Name, t.Name, t.Price), LogSuccess)
		if p.Kind == Human {
			e.narrate(ctx, p, TagBuy)
		}
		e.endTurn()

	case CmdDecline:
		t := e.tile(e.state.Decision.TileID)
		e.addLog(fmt.Sprintf("%s decides not to buy %s.", p.Name, t.Name), LogInfo)
		e.endTurn()

	case CmdBorrow:
		e.ledger.Borrow(p)
		e.addLog(fmt.Sprintf("%s borrowed money. Balance: $%d", p.Name, p.Money), LogWarning)
		e.exitBank()

	case CmdRepay:
		amount := e.ledger.Repay(p)
		e.addLog(fmt.Sprintf("%s repaid $%d of debt. Balance: $%d", p.Name, amount, p.Money), LogSuccess)
		e.exitBank()

	case CmdLeaveBank:
		e.exitBank()

	case CmdAcceptChance:
		e.applyChance(ctx)

	case CmdTrade:
		if err := e.market.Trade(p, cmd.Symbol, cmd.Quantity, cmd.Side); err != nil {
			return err
		}
		e.traded()

	case CmdHold:
		e.addLog(fmt.Sprintf("%s holds their positions.", p.Name), LogInfo)
		e.traded()

	case CmdCloseMarket:
		e.closeMarket()
	}
	return nil
}

// decide asks the active seat's provider to answer the pending prompt
func (e *GameEngine) decide(ctx context.Context) {
	d := e.state.Decision
	if d == nil {
		return
	}
	view := DecisionView{
		Player:   *e.active(),
		Decision: *d,
		Rules:    e.rules,
	}
	if d.Kind != DecisionChance {
		t := *e.tile(d.TileID)
		view.Tile = &t
	}
	for _, s := range e.state.Stocks {
		view.Stocks = append(view.Stocks, *s)
	}

	cmd := e.provider().Decide(view)
	if err := e.apply(ctx, cmd); err != nil {
		e.apply(ctx, fallbackCommand(*d))
	}
}

// fallbackCommand is the safe answer when a provider's choice is rejected
func fallbackCommand(d Decision) Command {
	switch d.Kind {
	case DecisionBuy:
		return Command{Kind: CmdDecline}
	case DecisionBank:
		return Command{Kind: CmdLeaveBank}
	case DecisionChance:
		return Command{Kind: CmdAcceptChance}
	}
	if d.Acted {
		return Command{Kind: CmdCloseMarket}
	}
	return Command{Kind: CmdHold}
}

// roll handles the roll trigger. Recovering players spend the turn instead of rolling.
func (e *GameEngine) roll() {
	p := e.active()
	switch {
	case p.Hospitalized:
		p.HospitalTurns--
		e.addLog(fmt.Sprintf("%s is recovering in hospital. (%d turns left)", p.Name, maxInt(p.HospitalTurns, 0)), LogWarning)
		if p.HospitalTurns <= 0 {
			p.Hospitalized, p.HospitalTurns = false, 0
			e.addLog(fmt.Sprintf("%s has been discharged from the hospital!", p.Name), LogSuccess)
		}
		e.endTurn()
	case p.InJail:
		p.JailTurns--
		e.addLog(fmt.Sprintf("%s is serving time in jail. (%d turns left)", p.Name, maxInt(p.JailTurns, 0)), LogWarning)
		if p.JailTurns <= 0 {
			p.InJail, p.JailTurns = false, 0
			e.addLog(fmt.Sprintf("%s has been released from jail!", p.Name), LogSuccess)
		}
		e.endTurn()
	default:
		e.setPhase(PhaseRolling)
		e.schedule(TransRoll, e.rules.Delays.RollMS)
	}
}

// rollResult throws the die, ticks the market and starts moving. Every
// MarketEveryRolls rolls the market opens first and the roll is held until it closes.
func (e *GameEngine) rollResult() {
	p := e.active()
	dice := e.rng.Intn(e.rules.DiceSides) + 1
	e.state.Dice = dice
	e.state.TotalRolls++
	e.market.Tick()

	if e.rules.MarketEveryRolls > 0 && e.state.TotalRolls%e.rules.MarketEveryRolls == 0 {
		e.state.Movement = Movement{State: MoveIdle, Steps: dice, Remaining: dice}
		e.openMarket(e.tile(p.Position), "STOCK MARKET IS OPEN! Prices updated.")
		return
	}

	e.setPhase(PhaseMoving)
	e.addLog(fmt.Sprintf("%s rolled %d", p.Name, dice), LogInfo)
	e.beginMove(dice)
}

// traded records the automatic seat's single market action and schedules the close
func (e *GameEngine) traded() {
	e.state.Decision.Acted = true
	if e.provider().Automatic() {
		e.schedule(TransDecide, e.rules.Delays.MarketCloseMS)
	}
}

func (e *GameEngine) closeMarket() {
	p := e.active()
	mv := e.state.Movement
	e.state.Decision = nil
	switch {
	case mv.Remaining > 0 && mv.State == MoveIdle:
		e.setPhase(PhaseMoving)
		e.addLog(fmt.Sprintf("%s proceeds with roll %d", p.Name, mv.Remaining), LogInfo)
		e.beginMove(mv.Remaining)
	case mv.Remaining > 0:
		e.resumeMove()
	default:
		e.endTurn()
	}
}

func (e *GameEngine) exitBank() {
	e.state.Decision = nil
	if e.state.Movement.Remaining > 0 {
		e.resumeMove()
		return
	}
	e.endTurn()
}

func (e *GameEngine) enterWaiting() {
	e.setPhase(PhaseWaiting)
	e.state.Decision = nil
	e.state.Movement = Movement{State: MoveIdle}
	if e.provider().Automatic() {
		e.schedule(TransAIRoll, e.rules.Delays.AIRollMS)
	}
}

// endTurn closes the active player's turn. The game ends the moment one or no
// solvent players remain.
func (e *GameEngine) endTurn() {
	e.state.Decision = nil
	e.state.Movement = Movement{State: MoveIdle}
	e.setPhase(PhaseEndTurn)
	if len(ActivePlayers(e.state)) <= 1 {
		e.gameOver()
		return
	}
	e.schedule(TransEndTurn, e.rules.Delays.EndTurnMS)
}

// nextPlayer hands the turn to the next solvent player
func (e *GameEngine) nextPlayer() {
	players := e.state.Players
	next := e.state.CurrentPlayer
	for i := 0; i < len(players); i++ {
		next = (next + 1) % len(players)
		if !players[next].Bankrupt {
			break
		}
	}
	if players[next].Bankrupt {
		e.gameOver()
		return
	}
	e.state.CurrentPlayer = next
	e.state.Turn++
	e.enterWaiting()
}

func (e *GameEngine) gameOver() {
	e.next = nil
	e.setPhase(PhaseGameOver)
	winner := "Nobody"
	if active := ActivePlayers(e.state); len(active) == 1 {
		id := active[0].ID
		e.state.WinnerID = &id
		winner = active[0].Name
	}
	e.addLog(fmt.Sprintf("GAME OVER! %s wins!", winner), LogSuccess)
}

func (e *GameEngine) provider() DecisionProvider {
	return e.providers[e.state.CurrentPlayer]
}
