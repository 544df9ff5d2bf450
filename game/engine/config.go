package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidConfig is returned when a board configuration fails validation
var ErrInvalidConfig = errors.New("invalid game config")

// TileSpec is a tile definition in a board file
type TileSpec struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Kind        TileKind `json:"kind"`
	Price       int      `json:"price,omitempty"`
	BaseRent    int      `json:"base_rent,omitempty"`
	Group       string   `json:"group,omitempty"`
	Turns       int      `json:"turns,omitempty"`
	Description string   `json:"description,omitempty"`
}

// StockSpec is a stock definition in a board file
type StockSpec struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Price      int     `json:"price"`
	Volatility float64 `json:"volatility"`
	History    []int   `json:"history,omitempty"`
	Color      string  `json:"color,omitempty"`
}

// GameConfig is a complete board definition: layout, rules, tiles and stocks
type GameConfig struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Topology    Topology    `json:"topology"`
	Rules       Rules       `json:"rules"`
	Tiles       []TileSpec  `json:"tiles"`
	Stocks      []StockSpec `json:"stocks"`
}

// Tile returns the spec for a tile id, or nil
func (c *GameConfig) Tile(id int) *TileSpec {
	for i := range c.Tiles {
		if c.Tiles[i].ID == id {
			return &c.Tiles[i]
		}
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("config validation: %w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// ValidateGameConfig validates a board configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return invalid("config is nil")
	}
	if config.Name == "" {
		return invalid("name is required")
	}
	if config.Description == "" {
		return invalid("description is required")
	}

	// Validate topology
	topo := config.Topology
	if topo.OuterSize < MinLoopSize || topo.OuterSize > MaxLoopSize {
		return invalid("outer_size must be between %d and %d, got %d", MinLoopSize, MaxLoopSize, topo.OuterSize)
	}
	if topo.InnerSize < MinLoopSize || topo.InnerSize > MaxLoopSize {
		return invalid("inner_size must be between %d and %d, got %d", MinLoopSize, MaxLoopSize, topo.InnerSize)
	}
	if topo.LoopOf(topo.Hub) != LoopInner || !topo.Contains(topo.Hub) {
		return invalid("hub_tile %d must be on the inner loop", topo.Hub)
	}
	if topo.InnerExit != NoInnerExit && (topo.InnerExit < 0 || topo.LoopOf(topo.InnerExit) != LoopOuter) {
		return invalid("inner_exit_tile %d must be on the outer loop or %d", topo.InnerExit, NoInnerExit)
	}
	if !topo.Contains(topo.Jail) || !topo.Contains(topo.GoToJail) {
		return invalid("jail_tile and go_to_jail_tile must be on the board")
	}

	// Validate tiles: one per id, ids contiguous
	if len(config.Tiles) != topo.Size() {
		return invalid("tiles must have %d entries to match topology, got %d", topo.Size(), len(config.Tiles))
	}
	seen := make(map[int]bool, len(config.Tiles))
	airports := 0
	for _, t := range config.Tiles {
		if !topo.Contains(t.ID) {
			return invalid("tile id %d out of range", t.ID)
		}
		if seen[t.ID] {
			return invalid("duplicate tile id %d", t.ID)
		}
		seen[t.ID] = true
		if t.Name == "" {
			return invalid("tile %d name is required", t.ID)
		}
		switch t.Kind {
		case TileProperty:
			if t.Price <= 0 {
				return invalid("property %d (%s) must have a positive price", t.ID, t.Name)
			}
			if t.BaseRent < 0 {
				return invalid("property %d (%s) has negative base_rent", t.ID, t.Name)
			}
		case TileTax:
			if t.Price < 0 {
				return invalid("tax tile %d has negative price", t.ID)
			}
		case TileHospital:
			if t.Turns < 0 {
				return invalid("hospital tile %d has negative turns", t.ID)
			}
		case TileAirport:
			if topo.LoopOf(t.ID) != LoopOuter {
				return invalid("airport tile %d must be on the outer loop", t.ID)
			}
			airports++
		case TileStart, TileChance, TileJail, TileParking, TileBank, TileShopping, TileStockMarket:
		default:
			return invalid("tile %d has unknown kind '%s'", t.ID, t.Kind)
		}
	}
	if config.Tile(0).Kind != TileStart {
		return invalid("tile 0 must be START")
	}
	if config.Tile(topo.Jail).Kind != TileJail {
		return invalid("jail_tile %d must be of kind JAIL", topo.Jail)
	}
	if airports == 0 {
		return invalid("board needs at least one AIRPORT tile")
	}

	// Validate stocks
	symbols := make(map[string]bool, len(config.Stocks))
	for _, s := range config.Stocks {
		if s.Symbol == "" {
			return invalid("stock symbol is required")
		}
		key := strings.ToUpper(s.Symbol)
		if symbols[key] {
			return invalid("duplicate stock symbol %s", s.Symbol)
		}
		symbols[key] = true
		if s.Price < config.Rules.StockPriceFloor {
			return invalid("stock %s price %d below floor %d", s.Symbol, s.Price, config.Rules.StockPriceFloor)
		}
		if s.Volatility < 0 || s.Volatility >= 1 {
			return invalid("stock %s volatility must be in [0, 1), got %v", s.Symbol, s.Volatility)
		}
	}

	return ValidateRules(config.Rules)
}

// ValidateRules checks that rule constants are usable
func ValidateRules(r Rules) error {
	switch {
	case r.StartingMoney <= 0:
		return invalid("starting_money must be positive")
	case r.DiceSides < 1:
		return invalid("dice_sides must be at least 1")
	case r.LoanPrincipal < 0 || r.LoanFee < 0:
		return invalid("loan_principal and loan_fee must not be negative")
	case r.LoanInterestRate < 0:
		return invalid("loan_interest_rate must not be negative")
	case r.JailTurns < 0 || r.HospitalTurns < 0:
		return invalid("jail_turns and hospital_turns must not be negative")
	case r.ShoppingMin < 0 || r.ShoppingMax < r.ShoppingMin:
		return invalid("shopping range [%d, %d] is invalid", r.ShoppingMin, r.ShoppingMax)
	case r.MarketEveryRolls < 0:
		return invalid("market_every_rolls must not be negative")
	case r.StockPriceFloor < 1:
		return invalid("stock_price_floor must be at least 1")
	case r.StockHistorySize < 1 || r.StockHistorySize > MaxStockHistory:
		return invalid("stock_history_size must be between 1 and %d", MaxStockHistory)
	case r.AI.StockSpendShare < 0 || r.AI.StockSpendShare > 1:
		return invalid("ai.stock_spend_share must be in [0, 1]")
	}
	return nil
}

// ParseGameConfig decodes a JSON board file on top of the default topology and rules, then validates it
func ParseGameConfig(data []byte) (*GameConfig, error) {
	config := GameConfig{
		Topology: DefaultTopology(),
		Rules:    DefaultRules(),
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse game config: %w", err)
	}
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a board configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(data)
}

// DefaultGameConfig returns the classic 48 tile board with four stocks
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "Classic",
		Description: "Dual-loop city board: 32 outer tiles, 16 inner tiles, airports to the Central Hub",
		Topology:    DefaultTopology(),
		Rules:       DefaultRules(),
		Tiles:       classicTiles(),
		Stocks:      classicStocks(),
	}
}

func property(id int, name string, price, rent int, group string) TileSpec {
	return TileSpec{ID: id, Name: name, Kind: TileProperty, Price: price, BaseRent: rent, Group: group}
}

func special(id int, name string, kind TileKind, desc string) TileSpec {
	return TileSpec{ID: id, Name: name, Kind: kind, Description: desc}
}

func classicTiles() []TileSpec {
	return []TileSpec{
		// Outer loop
		special(0, "Start", TileStart, "Collect $200 as you pass."),
		property(1, "Book Store", 60, 2, "brown"),
		special(2, "Bank", TileBank, "Borrow credits or repay debts."),
		property(3, "Coffee Shop", 60, 4, "brown"),
		property(4, "Burger Joint", 80, 5, "brown"),
		{ID: 5, Name: "Income Tax", Kind: TileTax, Price: 200, Description: "Pay $200 tax."},
		property(6, "Subway", 100, 6, "light_blue"),
		property(7, "Pet Shop", 100, 6, "light_blue"),
		special(8, "Jail", TileJail, "Just visiting..."),
		property(9, "Pharmacy", 120, 7, "light_blue"),
		property(10, "School", 120, 8, "light_blue"),
		property(11, "Library", 140, 9, "pink"),
		property(12, "Fire Station", 140, 10, "pink"),
		{ID: 13, Name: "Hospital", Kind: TileHospital, Turns: 3, Description: "Recover for 3 turns."},
		property(14, "Bakery", 150, 11, "pink"),
		special(15, "Stock Exchange", TileStockMarket, "Buy/Sell Stocks"),
		special(16, "Free Parking", TileParking, "Rest here."),
		special(17, "Airport", TileAirport, "Fly to Central Hub."),
		property(18, "Zoo", 180, 14, "orange"),
		special(19, "Chance", TileChance, ""),
		property(20, "Aquarium", 200, 15, "orange"),
		property(21, "Cinema", 220, 16, "red"),
		property(22, "Candy Shop", 230, 17, "red"),
		property(23, "Museum", 240, 18, "red"),
		special(24, "Go To Jail", TileChance, "Arrested! Pay $100."),
		property(25, "Music Store", 250, 19, "yellow"),
		special(26, "Shopping Mall", TileShopping, "Spend random amount up to $100."),
		property(27, "Gym", 270, 21, "yellow"),
		property(28, "Game Center", 280, 22, "yellow"),
		property(29, "Theme Park", 300, 26, "green"),
		property(30, "Grand Hotel", 350, 35, "blue"),
		special(31, "Airport", TileAirport, "Fly to Central Hub."),
		// Inner loop
		special(32, "Central Hub", TileStart, "Inner Loop Start. Collect $100."),
		property(33, "Tech Lab", 150, 15, "purple"),
		property(34, "Arcade", 150, 15, "purple"),
		special(35, "Chance", TileChance, ""),
		property(36, "Cyber Café", 180, 18, "purple"),
		{ID: 37, Name: "Clinic", Kind: TileHospital, Turns: 1, Description: "Quick heal. 1 turn."},
		property(38, "Data Center", 200, 20, "teal"),
		property(39, "Server Farm", 220, 22, "teal"),
		special(40, "ATM", TileBank, "Quick Banking"),
		property(41, "VR Lounge", 240, 24, "teal"),
		special(42, "Chance", TileChance, ""),
		property(43, "Robot Repair", 260, 26, "gray"),
		property(44, "Drone Dock", 280, 28, "gray"),
		property(45, "Space Bar", 300, 30, "gray"),
		property(46, "Luxury Pods", 350, 35, "gray"),
		property(47, "Orbital Shuttle", 400, 50, "blue"),
	}
}

func classicStocks() []StockSpec {
	return []StockSpec{
		{Symbol: "NVDA", Name: "NVIDIA", Price: 120, Volatility: 0.25, History: []int{110, 115, 112, 118, 120}, Color: "#76b900"},
		{Symbol: "AAPL", Name: "APPLE", Price: 180, Volatility: 0.15, History: []int{175, 176, 178, 179, 180}, Color: "#A2AAAD"},
		{Symbol: "TSLA", Name: "TESLA", Price: 220, Volatility: 0.35, History: []int{200, 210, 205, 215, 220}, Color: "#e82127"},
		{Symbol: "GOOGL", Name: "GOOGLE", Price: 140, Volatility: 0.18, History: []int{135, 136, 138, 139, 140}, Color: "#4285F4"},
	}
}

var playerColors = []string{"#ef4444", "#3b82f6", "#22c55e"}

// DefaultRoster returns the seats used when a session names only a player count:
// two players seat one human and the AI, three seat two humans and the AI.
func DefaultRoster(count int, names, avatars []string) []PlayerSetup {
	if count < MinPlayers {
		count = MinPlayers
	}
	if count > MaxPlayers {
		count = MaxPlayers
	}
	roster := make([]PlayerSetup, 0, count)
	for i := 0; i < count-1; i++ {
		p := PlayerSetup{Name: fmt.Sprintf("Player %d", i+1), Kind: Human, Avatar: "user"}
		if i < len(names) && strings.TrimSpace(names[i]) != "" {
			p.Name = strings.TrimSpace(names[i])
		}
		if i < len(avatars) && avatars[i] != "" {
			p.Avatar = avatars[i]
		}
		roster = append(roster, p)
	}
	return append(roster, PlayerSetup{Name: "Robot", Kind: AI, Avatar: "bot"})
}

// ValidateRoster checks seat count and seat fields
func ValidateRoster(roster []PlayerSetup) error {
	if len(roster) < MinPlayers || len(roster) > MaxPlayers {
		return fmt.Errorf("%w: player count must be between %d and %d, got %d", ErrInvalidSetup, MinPlayers, MaxPlayers, len(roster))
	}
	for i, p := range roster {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: player %d name is required", ErrInvalidSetup, i+1)
		}
		if len(p.Name) > MaxPlayerNameLen {
			return fmt.Errorf("%w: player %d name longer than %d", ErrInvalidSetup, i+1, MaxPlayerNameLen)
		}
		if p.Kind != Human && p.Kind != AI {
			return fmt.Errorf("%w: player %d has unknown kind '%s'", ErrInvalidSetup, i+1, p.Kind)
		}
	}
	return nil
}

// InitGameStateFromConfig creates a fresh session state in SETUP
func InitGameStateFromConfig(config *GameConfig, roster []PlayerSetup) *GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	tiles := make([]*Tile, config.Topology.Size())
	for _, spec := range config.Tiles {
		tiles[spec.ID] = &Tile{
			ID:          spec.ID,
			Name:        spec.Name,
			Kind:        spec.Kind,
			Price:       spec.Price,
			BaseRent:    spec.BaseRent,
			Group:       spec.Group,
			Turns:       spec.Turns,
			Description: spec.Description,
		}
	}

	stocks := make([]*Stock, 0, len(config.Stocks))
	for _, spec := range config.Stocks {
		history := append([]int(nil), spec.History...)
		if len(history) == 0 {
			history = []int{spec.Price}
		}
		stocks = append(stocks, &Stock{
			Symbol:        strings.ToUpper(spec.Symbol),
			Name:          spec.Name,
			Price:         spec.Price,
			PreviousPrice: spec.Price,
			History:       trimHistory(history, config.Rules.StockHistorySize),
			Volatility:    spec.Volatility,
			Color:         spec.Color,
		})
	}

	players := make([]*Player, len(roster))
	for i, seat := range roster {
		players[i] = &Player{
			ID:        i,
			Name:      strings.TrimSpace(seat.Name),
			Kind:      seat.Kind,
			Money:     config.Rules.StartingMoney,
			Position:  0,
			Portfolio: make(map[string]Holding),
			Color:     playerColors[i%len(playerColors)],
			Avatar:    seat.Avatar,
		}
	}

	return &GameState{
		ConfigName: config.Name,
		Players:    players,
		Tiles:      tiles,
		Stocks:     stocks,
		Phase:      PhaseSetup,
		Turn:       1,
		Movement:   Movement{State: MoveIdle},
		Log:        []LogEntry{},
	}
}
