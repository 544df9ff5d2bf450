package engine

import (
	"context"
	"errors"
	"testing"
)

func TestMovement_OuterLapPaysOnce(t *testing.T) {
	e := newTestEngine(t, nil)
	e.state.Tiles[2].Kind = TileParking
	e.state.Tiles[5].Kind = TileParking
	ann := e.state.Players[0]
	ann.Loan = 100

	walk(e, 8)
	drain(t, e)

	if ann.Position != 0 {
		t.Errorf("Expected to finish on Start, got %d", ann.Position)
	}
	if ann.Money != 1700 {
		t.Errorf("Expected one pass reward (1700), got %d", ann.Money)
	}
	if ann.Loan != 110 {
		t.Errorf("Expected loan interest on the lap (110), got %d", ann.Loan)
	}
	if !logContains(e, "passed Start! Collected $200") {
		t.Error("Expected pass reward to be logged")
	}
	if e.state.CurrentPlayer != 1 || e.Phase() != PhaseWaiting {
		t.Errorf("Expected Bob to be waiting, got player %d in %s", e.state.CurrentPlayer, e.Phase())
	}
}

func TestMovement_InnerExitReachesAirport(t *testing.T) {
	e := newTestEngine(t, nil)
	ann := e.state.Players[0]
	ann.Position = 10

	walk(e, 2)
	drain(t, e)

	if ann.Position != 8 {
		t.Errorf("Expected airport flight to the hub (8), got %d", ann.Position)
	}
	if ann.Money != 1500 {
		t.Errorf("Expected no reward for the inner exit, got %d", ann.Money)
	}
	if ann.Hospitalized {
		t.Error("Expected walking past the clinic to have no effect")
	}
	if !logContains(e, "leaves the Inner Loop") || !logContains(e, "Boarding flight") {
		t.Error("Expected exit and flight to be logged")
	}
}

func TestMovement_InnerWrapWithoutExit(t *testing.T) {
	config := createTestConfig()
	config.Topology.InnerExit = NoInnerExit
	e, err := NewEngine(config, humans("Ann", "Bob"), WithRandom(&scriptRand{}))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	e.Start()
	ann := e.state.Players[0]
	ann.Position = 11

	walk(e, 2)
	drain(t, e)

	if ann.Position != 9 {
		t.Errorf("Expected to wrap inside the inner loop to 9, got %d", ann.Position)
	}
	if ann.Money != 1600 {
		t.Errorf("Expected inner lap reward (1600), got %d", ann.Money)
	}
	if e.Phase() != PhaseAction || e.state.Decision.Kind != DecisionBuy {
		t.Errorf("Expected buy prompt, got %s", e.Phase())
	}
}

func TestMovement_WalkByBankSuspendsHuman(t *testing.T) {
	e := newTestEngine(t, nil)
	ann := e.state.Players[0]
	ann.Position = 1

	walk(e, 3)
	drain(t, e)

	if e.Phase() != PhaseAction || e.state.Decision.Kind != DecisionBank {
		t.Fatalf("Expected bank prompt, got %s", e.Phase())
	}
	if ann.Position != 2 || e.state.Movement.Remaining != 2 {
		t.Fatalf("Expected to stop on the bank with 2 steps left, got %d with %d", ann.Position, e.state.Movement.Remaining)
	}

	if err := e.BankAction(context.Background(), BankBorrow); err != nil {
		t.Fatalf("Failed to borrow: %v", err)
	}
	if err := e.LeaveBank(context.Background()); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("Expected commands to be refused while moving, got %v", err)
	}
	drain(t, e)

	if ann.Position != 4 {
		t.Errorf("Expected to finish the roll on 4, got %d", ann.Position)
	}
	if ann.Money != 2000 || ann.Loan != 550 {
		t.Errorf("Expected money 2000 loan 550, got %d/%d", ann.Money, ann.Loan)
	}
	if !logContains(e, "continues moving (2 steps)") {
		t.Error("Expected resume to be logged")
	}
}

func TestMovement_WalkByMarketThenArrest(t *testing.T) {
	e := newTestEngine(t, nil)
	ann := e.state.Players[0]
	ann.Position = 4

	walk(e, 2)
	drain(t, e)

	if e.Phase() != PhaseTrading {
		t.Fatalf("Expected TRADING, got %s", e.Phase())
	}
	if err := e.TradeStock(context.Background(), "CHIP", 2, SideBuy); err != nil {
		t.Fatalf("Failed to trade: %v", err)
	}
	if e.Phase() != PhaseTrading {
		t.Errorf("Expected market to stay open after a human trade, got %s", e.Phase())
	}
	if err := e.CloseMarket(context.Background()); err != nil {
		t.Fatalf("Failed to close market: %v", err)
	}
	drain(t, e)

	if ann.Position != 4 || !ann.InJail || ann.JailTurns != 2 {
		t.Errorf("Expected to be jailed on 4 for 2 turns, got pos %d jailed %v turns %d", ann.Position, ann.InJail, ann.JailTurns)
	}
	if ann.Money != 1300 {
		t.Errorf("Expected 1500 - 100 shares - 100 fine = 1300, got %d", ann.Money)
	}
}

func TestMovement_AIWalkByUsesCurrentState(t *testing.T) {
	roster := []PlayerSetup{{Name: "Robot", Kind: AI}, {Name: "Ann", Kind: Human}}
	e := newTestEngine(t, roster)
	robot := e.state.Players[0]
	robot.Position = 1
	robot.Money = 100

	walk(e, 3)
	drain(t, e)

	if robot.Position != 4 {
		t.Errorf("Expected robot to finish on 4, got %d", robot.Position)
	}
	if robot.Money != 600 || robot.Loan != 550 {
		t.Errorf("Expected the loan to carry into the rest of the move, got %d/%d", robot.Money, robot.Loan)
	}
	if e.state.CurrentPlayer != 1 || e.Phase() != PhaseWaiting {
		t.Errorf("Expected Ann to be waiting, got player %d in %s", e.state.CurrentPlayer, e.Phase())
	}
}

func TestMovement_ZeroStepsResolvesCurrentTile(t *testing.T) {
	e := newTestEngine(t, nil)
	e.state.Players[0].Position = 3

	walk(e, 0)
	drain(t, e)

	if e.Phase() != PhaseAction || e.state.Decision.TileID != 3 {
		t.Errorf("Expected buy prompt for tile 3, got %s", e.Phase())
	}
}

func TestMovement_LandingOnBankEndsTurnOnLeave(t *testing.T) {
	e := newTestEngine(t, nil)
	e.state.Players[0].Position = 1

	walk(e, 1)
	drain(t, e)
	if e.Phase() != PhaseAction || e.state.Decision.Kind != DecisionBank {
		t.Fatalf("Expected bank prompt, got %s", e.Phase())
	}

	if err := e.LeaveBank(context.Background()); err != nil {
		t.Fatalf("Failed to leave bank: %v", err)
	}
	if e.Phase() != PhaseEndTurn {
		t.Errorf("Expected END_TURN, got %s", e.Phase())
	}
}
