package monopoly

import (
	"errors"
	"fmt"

	"github.com/luca-patrignani/monopoly-replica/domain/auction"
)

// InvariantError reports a snapshot that breaks a game-wide safety property.
// Digest identifies the offending snapshot.
type InvariantError struct {
	Rule   string
	Detail string
	Digest string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s invariant violated on snapshot %.12s: %s", e.Rule, e.Digest, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

type check func(s *GameState) (rule string, detail string)

var checks = []check{
	checkMoney,
	checkPlayers,
	checkBoard,
	checkSetLevels,
	checkPhaseData,
	checkOwners,
	checkAuction,
}

// CheckInvariants validates s and returns an *InvariantError for the first
// property it breaks.
func CheckInvariants(s *GameState) error {
	for _, c := range checks {
		if rule, detail := c(s); rule != "" {
			return &InvariantError{Rule: rule, Detail: detail, Digest: s.Digest()}
		}
	}
	return nil
}

func checkMoney(s *GameState) (string, string) {
	total := s.BankMoney
	if s.BankMoney < 0 {
		return "money conservation", fmt.Sprintf("bank holds %d", s.BankMoney)
	}
	for _, id := range s.Order {
		m := s.Players[id].Money
		if m < 0 || m > TotalMoney {
			return "money range", fmt.Sprintf("%s holds %d", id, m)
		}
		total += m
	}
	if total != TotalMoney {
		return "money conservation", fmt.Sprintf("bank and players hold %d, expected %d", total, TotalMoney)
	}
	return "", ""
}

func checkPlayers(s *GameState) (string, string) {
	if len(s.Players) != len(s.Order) {
		return "players", fmt.Sprintf("%d players for an order of %d", len(s.Players), len(s.Order))
	}
	if s.Active < 0 || s.Active >= len(s.Order) {
		return "players", fmt.Sprintf("active index %d out of range", s.Active)
	}
	for _, id := range s.Order {
		p, ok := s.Players[id]
		if !ok {
			return "players", fmt.Sprintf("no state for %s", id)
		}
		if p.Position < 0 || p.Position >= len(s.Board) {
			return "players", fmt.Sprintf("%s is on square %d", id, p.Position)
		}
		if p.JailTime < 0 || p.JailTime > 2 {
			return "players", fmt.Sprintf("%s has jail time %d", id, p.JailTime)
		}
		if p.ConsecutiveDoubles < 0 || p.ConsecutiveDoubles > 2 {
			return "players", fmt.Sprintf("%s has %d consecutive doubles", id, p.ConsecutiveDoubles)
		}
	}
	return "", ""
}

func checkBoard(s *GameState) (string, string) {
	for i, sq := range s.Board {
		if sq.Type != SquareStreet {
			continue
		}
		if sq.Level < 0 || sq.Level > MaxLevel {
			return "street level", fmt.Sprintf("%s (%d) has level %d", sq.Name, i, sq.Level)
		}
		if sq.Mortgaged && sq.Level != 0 {
			return "street level", fmt.Sprintf("%s is mortgaged with level %d", sq.Name, sq.Level)
		}
		if len(sq.Rent) != MaxLevel+1 {
			return "street level", fmt.Sprintf("%s has %d rent tiers", sq.Name, len(sq.Rent))
		}
	}
	return "", ""
}

// checkSetLevels compares every street with the other streets of its set.
func checkSetLevels(s *GameState) (string, string) {
	for i, a := range s.Board {
		if a.Type != SquareStreet {
			continue
		}
		for j := i + 1; j < len(s.Board); j++ {
			b := s.Board[j]
			if b.Type != SquareStreet || b.Set != a.Set {
				continue
			}
			if a.Level-b.Level > 1 || b.Level-a.Level > 1 {
				return "even building", fmt.Sprintf("%s has level %d but %s has level %d", a.Name, a.Level, b.Name, b.Level)
			}
		}
	}
	return "", ""
}

func checkPhaseData(s *GameState) (string, string) {
	if _, ok := phaseHandlers[s.Phase]; !ok {
		return "phase", fmt.Sprintf("unknown phase %q", s.Phase)
	}
	if (s.Debt != nil) != (s.Phase == PhaseBankruptcyPrevention) {
		return "phase", fmt.Sprintf("debt %v in phase %s", s.Debt, s.Phase)
	}
	if s.Debt != nil {
		if s.Debt.Amount < 0 {
			return "phase", fmt.Sprintf("negative debt %d", s.Debt.Amount)
		}
		if _, ok := s.Players[s.Debt.Creditor]; !ok && s.Debt.Creditor != Bank {
			return "phase", fmt.Sprintf("unknown creditor %q", s.Debt.Creditor)
		}
	}
	if (s.Auction != nil) != (s.Phase == PhaseAuction) {
		return "phase", fmt.Sprintf("auction present=%t in phase %s", s.Auction != nil, s.Phase)
	}
	for _, id := range s.FreeForAllOrder {
		p, ok := s.Players[id]
		if !ok || p.Bankrupt {
			return "phase", fmt.Sprintf("%q cannot be queued for free 4 all", id)
		}
	}
	return "", ""
}

func checkOwners(s *GameState) (string, string) {
	known := func(id string) bool {
		if id == "" {
			return true
		}
		p, ok := s.Players[id]
		return ok && !p.Bankrupt
	}
	for _, sq := range s.Board {
		if sq.IsProperty() && !known(sq.Owner) {
			return "ownership", fmt.Sprintf("%s is owned by %q", sq.Name, sq.Owner)
		}
	}
	if !known(s.GoojfCCOwner) || !known(s.GoojfCHOwner) {
		return "ownership", fmt.Sprintf("get out of jail free cards held by %q and %q", s.GoojfCCOwner, s.GoojfCHOwner)
	}
	if s.Winner != "" {
		if p, ok := s.Players[s.Winner]; !ok || p.Bankrupt {
			return "ownership", fmt.Sprintf("winner %q is not in the game", s.Winner)
		}
	}
	return "", ""
}

func checkAuction(s *GameState) (string, string) {
	if s.Auction == nil {
		return "", ""
	}
	if s.Auction.Asset < 0 || s.Auction.Asset >= len(s.Board) || !s.Board[s.Auction.Asset].IsProperty() {
		return "auction", fmt.Sprintf("asset %d is not a property", s.Auction.Asset)
	}
	if err := auction.Check(s.Auction, s.Money()); err != nil {
		var v *auction.Violation
		if errors.As(err, &v) {
			return "auction " + v.Rule, v.Detail
		}
		return "auction", err.Error()
	}
	return "", ""
}
