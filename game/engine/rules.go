package engine

import "time"

// Rules holds every numeric constant of the game. Board files may override any field;
// omitted fields keep the values from DefaultRules.
type Rules struct {
	StartingMoney      int     `json:"starting_money"`
	PassStartReward    int     `json:"pass_start_reward"`
	InnerLapReward     int     `json:"inner_lap_reward"`
	LoanPrincipal      int     `json:"loan_principal"`
	LoanFee            int     `json:"loan_fee"`
	LoanInterestRate   float64 `json:"loan_interest_rate"`
	JailFine           int     `json:"jail_fine"`
	JailTurns          int     `json:"jail_turns"`
	HospitalTurns      int     `json:"hospital_turns"`
	DefaultRent        int     `json:"default_rent"`
	DefaultTax         int     `json:"default_tax"`
	ShoppingMin        int     `json:"shopping_min"`
	ShoppingMax        int     `json:"shopping_max"`
	DiceSides          int     `json:"dice_sides"`
	MarketEveryRolls   int     `json:"market_every_rolls"`
	StockPriceFloor    int     `json:"stock_price_floor"`
	StockHistorySize   int     `json:"stock_history_size"`
	HighRentCommentary int     `json:"high_rent_commentary"`
	AI                 AIRules `json:"ai"`
	Delays             Delays  `json:"delays"`
}

// AIRules are the fixed thresholds of the computer player
type AIRules struct {
	BorrowBelow      int     `json:"borrow_below"`
	LoanCap          int     `json:"loan_cap"`
	RepayBuffer      int     `json:"repay_buffer"`
	PurchaseBuffer   int     `json:"purchase_buffer"`
	CheapStockPrice  int     `json:"cheap_stock_price"`
	StockCashReserve int     `json:"stock_cash_reserve"`
	StockSpendShare  float64 `json:"stock_spend_share"`
	MaxSharesPerBuy  int     `json:"max_shares_per_buy"`
}

// Delays are presentation pauses in milliseconds between automatic transitions
type Delays struct {
	RollMS          int `json:"roll_ms"`
	StepMS          int `json:"step_ms"`
	ResolveMS       int `json:"resolve_ms"`
	TeleportMS      int `json:"teleport_ms"`
	AIRollMS        int `json:"ai_roll_ms"`
	AIDecisionMS    int `json:"ai_decision_ms"`
	ChanceDrawMS    int `json:"chance_draw_ms"`
	ChanceAcceptMS  int `json:"chance_accept_ms"`
	MarketCloseMS   int `json:"market_close_ms"`
	EndTurnMS       int `json:"end_turn_ms"`
	OracleTimeoutMS int `json:"oracle_timeout_ms"`
	NarrateTimeout  int `json:"narrate_timeout_ms"`
}

// DefaultRules returns the canonical rule set
func DefaultRules() Rules {
	return Rules{
		StartingMoney:      1500,
		PassStartReward:    200,
		InnerLapReward:     100,
		LoanPrincipal:      500,
		LoanFee:            50,
		LoanInterestRate:   0.10,
		JailFine:           100,
		JailTurns:          2,
		HospitalTurns:      3,
		DefaultRent:        10,
		DefaultTax:         100,
		ShoppingMin:        1,
		ShoppingMax:        100,
		DiceSides:          6,
		MarketEveryRolls:   10,
		StockPriceFloor:    10,
		StockHistorySize:   10,
		HighRentCommentary: 50,
		AI: AIRules{
			BorrowBelow:      200,
			LoanCap:          1000,
			RepayBuffer:      300,
			PurchaseBuffer:   200,
			CheapStockPrice:  100,
			StockCashReserve: 400,
			StockSpendShare:  0.3,
			MaxSharesPerBuy:  5,
		},
		Delays: Delays{
			RollMS:          1000,
			StepMS:          500,
			ResolveMS:       300,
			TeleportMS:      1000,
			AIRollMS:        1000,
			AIDecisionMS:    1000,
			ChanceDrawMS:    500,
			ChanceAcceptMS:  2000,
			MarketCloseMS:   1500,
			EndTurnMS:       1500,
			OracleTimeoutMS: 3000,
			NarrateTimeout:  2000,
		},
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
