package monopoly

import "fmt"

func mortgageValue(sq Square) int {
	return sq.Value / 2
}

// unmortgageCost is the mortgage value plus ten percent interest.
func unmortgageCost(sq Square) int {
	return sq.Value/2 + sq.Value/20
}

func (s *GameState) canMortgage(player string, idx int) bool {
	sq := s.Board[idx]
	if !sq.IsProperty() || sq.Owner != player || sq.Mortgaged {
		return false
	}
	if sq.Type == SquareStreet {
		_, highest, _ := s.setLevels(sq.Set)
		return highest == 0
	}
	return true
}

func (s *GameState) canUnmortgage(player string, idx int) bool {
	sq := s.Board[idx]
	return sq.IsProperty() && sq.Owner == player && sq.Mortgaged &&
		s.Players[player].Money >= unmortgageCost(sq)
}

// canUpgrade enforces whole-set ownership and even building.
func (s *GameState) canUpgrade(player string, idx int) bool {
	sq := s.Board[idx]
	if sq.Type != SquareStreet || sq.Owner != player || sq.Level >= MaxLevel {
		return false
	}
	if !s.OwnsWholeSet(player, sq.Set) {
		return false
	}
	lowest, _, mortgaged := s.setLevels(sq.Set)
	return !mortgaged && sq.Level == lowest && s.Players[player].Money >= sq.HouseCost
}

func (s *GameState) canDowngrade(player string, idx int) bool {
	sq := s.Board[idx]
	if sq.Type != SquareStreet || sq.Owner != player || sq.Level == 0 {
		return false
	}
	_, highest, _ := s.setLevels(sq.Set)
	return sq.Level == highest
}

func addMortgageActions(b *actionSet) {
	player := b.player
	for idx, sq := range b.state.Board {
		if !b.state.canMortgage(player, idx) {
			continue
		}
		b.add(ActionMortgage, "Mortgage "+sq.Name, idx, func(s *GameState, _ Params) (string, error) {
			sq := &s.Board[idx]
			s.collectFromBank(player, mortgageValue(*sq))
			sq.Mortgaged = true
			return fmt.Sprintf("%s mortgages %s", player, sq.Name), nil
		})
	}
}

func addUnmortgageActions(b *actionSet) {
	player := b.player
	for idx, sq := range b.state.Board {
		if !b.state.canUnmortgage(player, idx) {
			continue
		}
		b.add(ActionUnmortgage, "Unmortgage "+sq.Name, idx, func(s *GameState, _ Params) (string, error) {
			sq := &s.Board[idx]
			s.payBank(player, unmortgageCost(*sq))
			sq.Mortgaged = false
			return fmt.Sprintf("%s unmortgages %s", player, sq.Name), nil
		})
	}
}

func addUpgradeActions(b *actionSet) {
	player := b.player
	for idx, sq := range b.state.Board {
		if !b.state.canUpgrade(player, idx) {
			continue
		}
		b.add(ActionUpgrade, "Upgrade "+sq.Name, idx, func(s *GameState, _ Params) (string, error) {
			sq := &s.Board[idx]
			s.payBank(player, sq.HouseCost)
			sq.Level++
			return fmt.Sprintf("%s upgrades %s to level %d", player, sq.Name, sq.Level), nil
		})
	}
}

func addDowngradeActions(b *actionSet) {
	player := b.player
	for idx, sq := range b.state.Board {
		if !b.state.canDowngrade(player, idx) {
			continue
		}
		b.add(ActionDowngrade, "Downgrade "+sq.Name, idx, func(s *GameState, _ Params) (string, error) {
			sq := &s.Board[idx]
			s.collectFromBank(player, sq.HouseCost/2)
			sq.Level--
			return fmt.Sprintf("%s downgrades %s to level %d", player, sq.Name, sq.Level), nil
		})
	}
}
