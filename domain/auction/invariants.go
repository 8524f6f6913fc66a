package auction

import "fmt"

// Violation describes a broken auction invariant.
type Violation struct {
	Rule   string
	Detail string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s invariant violated: %s", v.Rule, v.Detail)
}

// Check validates the auction against the money each participant holds.
func Check(a *Auction, money map[string]int) error {
	if err := checkSolvability(a, money); err != nil {
		return err
	}
	if err := checkAgreement(a); err != nil {
		return err
	}
	return checkWinWithHigherBid(a)
}

func checkSolvability(a *Auction, money map[string]int) error {
	for _, id := range a.PlayerIDs() {
		ps := a.Players[id]
		m, ok := money[id]
		if !ok {
			return &Violation{Rule: "solvability", Detail: fmt.Sprintf("%s is not a player", id)}
		}
		if ps.Bid < 0 || ps.Bid > m {
			return &Violation{
				Rule:   "solvability",
				Detail: fmt.Sprintf("%s has bid %d but only has %d money", id, ps.Bid, m),
			}
		}
		if ps.Round < 0 {
			return &Violation{Rule: "solvability", Detail: fmt.Sprintf("%s is in round %d", id, ps.Round)}
		}
	}
	return nil
}

func checkAgreement(a *Auction) error {
	ids := a.PlayerIDs()
	for i, p := range ids {
		for _, q := range ids[i+1:] {
			wp, wq := a.Players[p].Winner, a.Players[q].Winner
			if wp != WinnerUnknown && wq != WinnerUnknown && wp != wq {
				return &Violation{
					Rule:   "agreement",
					Detail: fmt.Sprintf("%s chose %s but %s chose %s", p, wp, q, wq),
				}
			}
		}
	}
	return nil
}

// checkWinWithHigherBid requires a declared winner to out-bid every peer
// that has passed or resolved the auction.
func checkWinWithHigherBid(a *Auction) error {
	for _, id := range a.PlayerIDs() {
		w := a.Players[id].Winner
		if w == WinnerUnknown || w == WinnerNone {
			continue
		}
		winner, ok := a.Players[w]
		if !ok {
			return &Violation{Rule: "win with higher bid", Detail: fmt.Sprintf("%s chose unknown player %s", id, w)}
		}
		for _, other := range a.PlayerIDs() {
			ps := a.Players[other]
			if other == w || !(ps.passed() || ps.Resolved()) {
				continue
			}
			if winner.Bid <= ps.Bid {
				return &Violation{
					Rule:   "win with higher bid",
					Detail: fmt.Sprintf("%s won with a bid of %d but %s bid %d", w, winner.Bid, other, ps.Bid),
				}
			}
		}
	}
	return nil
}
