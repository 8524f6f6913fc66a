package monopoly

import "fmt"

func bankruptcyPreventionActions(b *actionSet) {
	s, player := b.state, b.player
	debt := *s.Debt
	if s.Players[player].Money >= debt.Amount {
		b.add(ActionPayOffDebt, "Pay off debt", -1, func(s *GameState, _ Params) (string, error) {
			s.pay(player, debt.Creditor, debt.Amount)
			s.Phase = debt.NextPhase
			s.Debt = nil
			return fmt.Sprintf("%s pays off debt of %d to %s", player, debt.Amount, debt.Creditor), nil
		})
		return
	}
	addMortgageActions(b)
	addDowngradeActions(b)
	if len(b.actions) > 0 {
		return
	}
	b.add(ActionGoBankrupt, "Go bankrupt", -1, func(s *GameState, _ Params) (string, error) {
		s.goBankrupt(player, debt.Creditor)
		s.Debt = nil
		next := s.giveTurn()
		return fmt.Sprintf("%s goes bankrupt, transfers all assets to %s, %s plays next", player, debt.Creditor, next), nil
	})
}

// goBankrupt hands every asset of player to creditor. Properties returned to
// the bank come back unmortgaged and without buildings.
func (s *GameState) goBankrupt(player, creditor string) {
	s.pay(player, creditor, s.Players[player].Money)
	heir := creditor
	if creditor == Bank {
		heir = ""
	}
	if s.GoojfCCOwner == player {
		s.GoojfCCOwner = heir
	}
	if s.GoojfCHOwner == player {
		s.GoojfCHOwner = heir
	}
	for i := range s.Board {
		sq := &s.Board[i]
		if !sq.IsProperty() || sq.Owner != player {
			continue
		}
		sq.Owner = heir
		if heir == "" {
			sq.Mortgaged = false
			sq.Level = 0
		}
	}
	s.Players[player].Bankrupt = true
}
