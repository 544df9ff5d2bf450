package engine

// ActivePlayers returns the players that are not bankrupt
func ActivePlayers(state *GameState) []*Player {
	var active []*Player
	for _, p := range state.Players {
		if !p.Bankrupt {
			active = append(active, p)
		}
	}
	return active
}

// NetWorth is cash plus listed property value plus stock at market price, minus the loan
func NetWorth(state *GameState, p *Player) int {
	worth := p.Money - p.Loan
	for _, t := range state.Tiles {
		if t.OwnerID != nil && *t.OwnerID == p.ID {
			worth += t.Price
		}
	}
	for _, s := range state.Stocks {
		if h, ok := p.Portfolio[s.Symbol]; ok {
			worth += h.Count * s.Price
		}
	}
	return worth
}

// FindStock returns the listed stock for a symbol, or nil
func FindStock(state *GameState, symbol string) *Stock {
	for _, s := range state.Stocks {
		if s.Symbol == symbol {
			return s
		}
	}
	return nil
}

// CloneState returns a deep copy suitable for handing to readers
func CloneState(state *GameState) *GameState {
	if state == nil {
		return nil
	}
	out := *state

	out.Players = make([]*Player, len(state.Players))
	for i, p := range state.Players {
		cp := *p
		cp.Portfolio = make(map[string]Holding, len(p.Portfolio))
		for k, v := range p.Portfolio {
			cp.Portfolio[k] = v
		}
		out.Players[i] = &cp
	}

	out.Tiles = make([]*Tile, len(state.Tiles))
	for i, t := range state.Tiles {
		ct := *t
		if t.OwnerID != nil {
			owner := *t.OwnerID
			ct.OwnerID = &owner
		}
		out.Tiles[i] = &ct
	}

	out.Stocks = make([]*Stock, len(state.Stocks))
	for i, s := range state.Stocks {
		cs := *s
		cs.History = append([]int(nil), s.History...)
		out.Stocks[i] = &cs
	}

	if state.Decision != nil {
		d := *state.Decision
		if d.Event != nil {
			ev := *d.Event
			d.Event = &ev
		}
		out.Decision = &d
	}
	if state.WinnerID != nil {
		w := *state.WinnerID
		out.WinnerID = &w
	}
	out.Log = append([]LogEntry(nil), state.Log...)
	return &out
}

func trimHistory(history []int, capacity int) []int {
	if capacity > 0 && len(history) > capacity {
		return append([]int(nil), history[len(history)-capacity:]...)
	}
	return history
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
