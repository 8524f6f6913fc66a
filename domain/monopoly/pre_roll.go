package monopoly

import "fmt"

func preRollActions(b *actionSet) {
	s, player := b.state, b.player
	p := s.Players[player]

	b.add(ActionEndPreRoll, "End pre-roll", -1, func(s *GameState, _ Params) (string, error) {
		s.Phase = PhaseRoll
		return fmt.Sprintf("%s ends pre-roll", player), nil
	})
	if p.InJail && s.GoojfCHOwner == player {
		b.add(ActionPlayGoojfCH, "Play Get Out of Jail Free Chance", -1, func(s *GameState, _ Params) (string, error) {
			s.GoojfCHOwner = ""
			s.release(player)
			return fmt.Sprintf("%s plays the Chance get out of jail free card", player), nil
		})
	}
	if p.InJail && s.GoojfCCOwner == player {
		b.add(ActionPlayGoojfCC, "Play Get Out of Jail Free Community Chest", -1, func(s *GameState, _ Params) (string, error) {
			s.GoojfCCOwner = ""
			s.release(player)
			return fmt.Sprintf("%s plays the Community Chest get out of jail free card", player), nil
		})
	}
	if p.InJail && p.Money >= JailFine {
		b.add(ActionPayJailFine, fmt.Sprintf("Pay Jail Fine $%d", JailFine), -1, func(s *GameState, _ Params) (string, error) {
			s.payBank(player, JailFine)
			s.release(player)
			return fmt.Sprintf("%s pays $%d to leave jail", player, JailFine), nil
		})
	}
	addMortgageActions(b)
	addUnmortgageActions(b)
	addUpgradeActions(b)
	addDowngradeActions(b)
}
