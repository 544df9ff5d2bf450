package engine

// TileKind identifies how a tile behaves when a player lands on it
type TileKind string

const (
	TileProperty    TileKind = "PROPERTY"
	TileStart       TileKind = "START"
	TileChance      TileKind = "CHANCE"
	TileJail        TileKind = "JAIL"
	TileParking     TileKind = "PARKING"
	TileTax         TileKind = "TAX"
	TileBank        TileKind = "BANK"
	TileHospital    TileKind = "HOSPITAL"
	TileShopping    TileKind = "SHOPPING"
	TileAirport     TileKind = "AIRPORT"
	TileStockMarket TileKind = "STOCK_MARKET"
)

// ControlKind says who makes decisions for a player
type ControlKind string

const (
	Human ControlKind = "HUMAN"
	AI    ControlKind = "AI"
)

// Phase is a state of the turn controller
type Phase string

const (
	PhaseSetup    Phase = "SETUP"
	PhaseWaiting  Phase = "WAITING"
	PhaseRolling  Phase = "ROLLING"
	PhaseMoving   Phase = "MOVING"
	PhaseAction   Phase = "ACTION"
	PhaseEvent    Phase = "EVENT"
	PhaseTrading  Phase = "TRADING"
	PhaseEndTurn  Phase = "END_TURN"
	PhaseGameOver Phase = "GAME_OVER"
)

// EffectType is the kind of outcome carried by a chance event
type EffectType string

const (
	EffectMoney EffectType = "MONEY"
	EffectMove  EffectType = "MOVE"
)

// BankOp is a bank transaction requested at a bank tile
type BankOp string

const (
	BankBorrow BankOp = "BORROW"
	BankRepay  BankOp = "REPAY"
)

// TradeSide is the direction of a stock trade
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// LogType classifies a narrated log entry for presentation
type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogDanger  LogType = "danger"
	LogWarning LogType = "warning"
	LogAI      LogType = "ai"
)

// DecisionKind identifies what the active player is being asked to decide
type DecisionKind string

const (
	DecisionBuy    DecisionKind = "BUY_PROPERTY"
	DecisionBank   DecisionKind = "BANK"
	DecisionChance DecisionKind = "CHANCE"
	DecisionMarket DecisionKind = "MARKET"
)

// MovementState is the state of the movement sub-machine
type MovementState string

const (
	MoveIdle      MovementState = "IDLE"
	MoveAnimating MovementState = "ANIMATING"
	MoveResolving MovementState = "RESOLVING"
)

const (
	// Validation constants
	MinPlayers       = 2
	MaxPlayers       = 3
	MinLoopSize      = 4
	MaxLoopSize      = 64
	MaxStockHistory  = 100
	MaxPlayerNameLen = 32
)

// Holding is a stock position: share count and weighted average cost
type Holding struct {
	Count   int `json:"count"`
	AvgCost int `json:"avg_cost"`
}

// Player is a participant in a session
type Player struct {
	ID            int                `json:"id"`
	Name          string             `json:"name"`
	Kind          ControlKind        `json:"kind"`
	Money         int                `json:"money"`
	Position      int                `json:"position"`
	Loan          int                `json:"loan"`
	Hospitalized  bool               `json:"hospitalized"`
	HospitalTurns int                `json:"hospital_turns"`
	InJail        bool               `json:"in_jail"`
	JailTurns     int                `json:"jail_turns"`
	Bankrupt      bool               `json:"bankrupt"`
	Portfolio     map[string]Holding `json:"portfolio"`
	Color         string             `json:"color,omitempty"`
	Avatar        string             `json:"avatar,omitempty"`
}

// Tile is a single board space
type Tile struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Kind        TileKind `json:"kind"`
	Price       int      `json:"price,omitempty"`
	BaseRent    int      `json:"base_rent,omitempty"`
	OwnerID     *int     `json:"owner_id"`
	Houses      int      `json:"houses"`
	Group       string   `json:"group,omitempty"`
	Turns       int      `json:"turns,omitempty"` // hospital stay length
	Description string   `json:"description,omitempty"`
}

// Owned reports whether the tile has an owner
func (t *Tile) Owned() bool {
	return t.OwnerID != nil
}

// Stock is a tradable security with a bounded price history
type Stock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         int     `json:"price"`
	PreviousPrice int     `json:"previous_price"`
	History       []int   `json:"history"`
	Volatility    float64 `json:"volatility"`
	Color         string  `json:"color,omitempty"`
}

// ChanceEvent is an outcome supplied by a chance oracle
type ChanceEvent struct {
	Description string     `json:"description"`
	EffectType  EffectType `json:"effect_type"`
	Value       int        `json:"value"`
}

// LogEntry is a narrated game event
type LogEntry struct {
	ID        string  `json:"id"`
	Seq       int     `json:"seq"`
	Message   string  `json:"message"`
	Type      LogType `json:"type"`
	Timestamp int64   `json:"timestamp"`
}

// Decision is the prompt the current phase is waiting on
type Decision struct {
	Kind   DecisionKind `json:"kind"`
	TileID int          `json:"tile_id"`
	Event  *ChanceEvent `json:"event,omitempty"`
	Acted  bool         `json:"acted,omitempty"` // AI already traded this activation
}

// Movement tracks an in-flight move of the active player
type Movement struct {
	State     MovementState `json:"state"`
	Steps     int           `json:"steps"`
	Remaining int           `json:"remaining"`
}

// GameState represents the complete game session
type GameState struct {
	ConfigName    string     `json:"config_name"`
	Players       []*Player  `json:"players"`
	Tiles         []*Tile    `json:"tiles"`
	Stocks        []*Stock   `json:"stocks"`
	CurrentPlayer int        `json:"current_player"`
	Phase         Phase      `json:"phase"`
	Dice          int        `json:"dice"`
	TotalRolls    int        `json:"total_rolls"`
	Turn          int        `json:"turn"`
	Movement      Movement   `json:"movement"`
	Decision      *Decision  `json:"decision,omitempty"`
	WinnerID      *int       `json:"winner_id,omitempty"`
	Log           []LogEntry `json:"log"`
}

// PlayerSetup describes a seat at session creation
type PlayerSetup struct {
	Name   string      `json:"name"`
	Kind   ControlKind `json:"kind"`
	Avatar string      `json:"avatar,omitempty"`
}
