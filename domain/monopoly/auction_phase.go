package monopoly

import (
	"fmt"

	"github.com/luca-patrignani/monopoly-replica/domain/auction"
)

// auctionActions exposes the auction ladder to every participant. Each
// effect only touches the acting player's entry.
func auctionActions(b *actionSet) {
	s, player := b.state, b.player
	a := s.Auction
	if a == nil {
		return
	}
	if _, ok := a.Players[player]; !ok {
		return
	}
	money := s.Players[player].Money
	name := s.Board[a.Asset].Name

	if a.CanBid(player, money) {
		r := BidRange{Min: a.HighestBid() + 1, Max: money}
		b.addBid(fmt.Sprintf("Bid on %s (%d to %d)", name, r.Min, r.Max), r, func(s *GameState, p Params) (string, error) {
			if err := s.Auction.PlaceBid(player, p.Amount, s.Players[player].Money); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s bids %d on %s", player, p.Amount, name), nil
		})
	}
	if a.CanStand(player) {
		b.add(ActionStand, "Stand", a.Asset, func(s *GameState, _ Params) (string, error) {
			if err := s.Auction.Stand(player); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s stands", player), nil
		})
	}
	if a.CanPass(player) {
		b.add(ActionPass, "Pass", a.Asset, func(s *GameState, _ Params) (string, error) {
			if err := s.Auction.Pass(player); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s passes", player), nil
		})
	}
	if a.CanNextRound(player) {
		b.add(ActionNextRound, "Next round", a.Asset, func(s *GameState, _ Params) (string, error) {
			if err := s.Auction.NextRound(player); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s moves to round %d", player, s.Auction.Players[player].Round), nil
		})
	}
	if a.CanChooseWinner(player) {
		b.add(ActionChooseWinner, "Choose winner", a.Asset, func(s *GameState, _ Params) (string, error) {
			w, err := s.Auction.ChooseWinner(player)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s chooses winner %s", player, w), nil
		})
	}
	if a.CanClose(player) {
		b.add(ActionCloseAuction, "Close auction", a.Asset, func(s *GameState, _ Params) (string, error) {
			return closeAuction(s)
		})
	}
}

// closeAuction sells the asset to the agreed winner, or leaves it with the
// bank when nobody bid, and resumes the turn.
func closeAuction(s *GameState) (string, error) {
	a := s.Auction
	w, ok := a.AgreedWinner()
	if !ok {
		return "", fmt.Errorf("%w: no agreed winner", ErrPrecondition)
	}
	sq := &s.Board[a.Asset]
	msg := fmt.Sprintf("auction for %s closes unsold", sq.Name)
	if w != auction.WinnerNone {
		price := a.Players[w].Bid
		s.payBank(w, price)
		sq.Owner = w
		msg = fmt.Sprintf("auction for %s closes, %s buys it for %d", sq.Name, w, price)
	}
	s.Auction = nil
	s.Phase = PhaseDoublesCheck
	return msg, nil
}
