package monopoly

import (
	"fmt"

	"github.com/luca-patrignani/monopoly-replica/domain/auction"
)

func postRollActions(b *actionSet) {
	s, player := b.state, b.player
	idx := s.Players[player].Position
	sq := s.Board[idx]
	money := s.Players[player].Money

	switch sq.Type {
	case SquareGo, SquareFreeParking, SquareJail:
		addDoNothing(b)
	case SquareStreet, SquareRail, SquareUtility:
		switch {
		case sq.Owner == "":
			addBuyOrAuction(b, idx)
		case sq.Owner == player || sq.Mortgaged:
			addDoNothing(b)
		case sq.Type == SquareUtility:
			b.add(ActionPayUtilityRent, "Try to pay utility rent", idx, func(s *GameState, _ Params) (string, error) {
				return payUtilityRent(s, player, idx), nil
			})
		default:
			rent := s.Rent(idx)
			owner := sq.Owner
			if money >= rent {
				b.add(ActionPayRent, "Pay rent for "+sq.Name, idx, func(s *GameState, _ Params) (string, error) {
					s.payPlayer(player, owner, rent)
					s.Phase = PhaseDoublesCheck
					return fmt.Sprintf("%s pays rent of %d to %s", player, rent, owner), nil
				})
			} else {
				b.add(ActionPreventOnRent, "Prevent bankruptcy on rent for "+sq.Name, idx, func(s *GameState, _ Params) (string, error) {
					s.enterBankruptcyPrevention(owner, rent, PhaseDoublesCheck)
					return fmt.Sprintf("%s cannot pay rent of %d to %s", player, rent, owner), nil
				})
			}
		}
	case SquareTax:
		amount := sq.Value
		if money >= amount {
			b.add(ActionPayTax, "Pay tax", idx, func(s *GameState, _ Params) (string, error) {
				s.payBank(player, amount)
				s.Phase = PhaseDoublesCheck
				return fmt.Sprintf("%s pays %s of %d", player, sq.Name, amount), nil
			})
		} else {
			b.add(ActionPreventOnTax, "Prevent bankruptcy on tax", idx, func(s *GameState, _ Params) (string, error) {
				s.enterBankruptcyPrevention(Bank, amount, PhaseDoublesCheck)
				return fmt.Sprintf("%s cannot pay %s of %d", player, sq.Name, amount), nil
			})
		}
	case SquareChance, SquareCommunityChest:
		b.add(ActionDrawCard, "Draw and execute card", idx, func(s *GameState, _ Params) (string, error) {
			return drawAndExecuteCard(s, player)
		})
	case SquareGoToJail:
		b.add(ActionGoToJail, "Go to jail", idx, func(s *GameState, _ Params) (string, error) {
			s.goToJail(player)
			return fmt.Sprintf("%s goes to jail", player), nil
		})
	}
}

func addDoNothing(b *actionSet) {
	player := b.player
	b.add(ActionDoNothing, "Do nothing", -1, func(s *GameState, _ Params) (string, error) {
		s.Phase = PhaseDoublesCheck
		return fmt.Sprintf("%s does nothing on %s", player, s.current(player).Name), nil
	})
}

func addBuyOrAuction(b *actionSet, idx int) {
	s, player := b.state, b.player
	sq := s.Board[idx]
	if s.Players[player].Money >= sq.Value {
		b.add(ActionBuyProperty, "Buy property "+sq.Name, idx, func(s *GameState, _ Params) (string, error) {
			s.payBank(player, sq.Value)
			s.Board[idx].Owner = player
			s.Phase = PhaseDoublesCheck
			return fmt.Sprintf("%s buys %s for %d", player, sq.Name, sq.Value), nil
		})
	}
	b.add(ActionAuctionProperty, "Auction property "+sq.Name, idx, func(s *GameState, _ Params) (string, error) {
		s.Auction = auction.Open(idx, player, s.Clock, s.nonBankrupt())
		s.Phase = PhaseAuction
		return fmt.Sprintf("%s puts %s up for auction", player, sq.Name), nil
	})
}

func payUtilityRent(s *GameState, player string, idx int) string {
	d1, d2 := rollDice(s.rng("utility"))
	owner := s.Board[idx].Owner
	rent := (d1 + d2) * s.utilityMultiplier(owner)
	if s.Players[player].Money < rent {
		s.enterBankruptcyPrevention(owner, rent, PhaseDoublesCheck)
		return fmt.Sprintf("%s rolls %d, %d and cannot pay utility rent of %d to %s", player, d1, d2, rent, owner)
	}
	s.payPlayer(player, owner, rent)
	s.Phase = PhaseDoublesCheck
	return fmt.Sprintf("%s rolls %d, %d and pays utility rent of %d to %s", player, d1, d2, rent, owner)
}
