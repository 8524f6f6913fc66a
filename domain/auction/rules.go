package auction

import "fmt"

// canAct is the gate shared by Bid, Stand and Pass.
func (a *Auction) canAct(p string) bool {
	me, ok := a.Players[p]
	if !ok {
		return false
	}
	return !me.passed() &&
		!me.Resolved() &&
		me.LastAction == ActionChange &&
		a.readyForAction(p) &&
		a.otherInSameRound(p)
}

func (a *Auction) readyForAction(p string) bool {
	me := a.Players[p]
	for _, other := range a.Players {
		if other.Round != me.Round && !other.passed() {
			return false
		}
	}
	return true
}

// otherInSameRound counts passed peers too: a lone survivor facing only
// passed players still has to act in that round.
func (a *Auction) otherInSameRound(p string) bool {
	me := a.Players[p]
	for id, other := range a.Players {
		if id != p && other.Round == me.Round {
			return true
		}
	}
	return false
}

func (a *Auction) CanBid(p string, money int) bool {
	return a.canAct(p) && a.HighestBid() < money
}

func (a *Auction) CanStand(p string) bool {
	if !a.canAct(p) {
		return false
	}
	me := a.Players[p]
	for id, other := range a.Players {
		if id != p && other.Bid >= me.Bid {
			return false
		}
	}
	return true
}

func (a *Auction) CanPass(p string) bool {
	return a.canAct(p)
}

func (a *Auction) CanNextRound(p string) bool {
	me, ok := a.Players[p]
	if !ok || me.passed() || me.Resolved() || me.LastAction == ActionChange {
		return false
	}
	for id, other := range a.Players {
		if id == p {
			continue
		}
		if !other.passed() && other.LastAction == ActionChange && other.Round <= me.Round {
			return false
		}
	}
	return true
}

func (a *Auction) CanChooseWinner(p string) bool {
	me, ok := a.Players[p]
	if !ok || me.Resolved() {
		return false
	}
	_, found := a.leader()
	return a.allPassed() || found
}

// CanClose reports whether p may close the auction: only the initiator may,
// and only once every participant has resolved the same winner.
func (a *Auction) CanClose(p string) bool {
	if p != a.Initiator {
		return false
	}
	_, ok := a.AgreedWinner()
	return ok
}

// AgreedWinner returns the winner every participant has resolved, if any.
func (a *Auction) AgreedWinner() (string, bool) {
	winner := ""
	for _, ps := range a.Players {
		if !ps.Resolved() {
			return "", false
		}
		if winner != "" && ps.Winner != winner {
			return "", false
		}
		winner = ps.Winner
	}
	return winner, winner != ""
}

func (a *Auction) allPassed() bool {
	for _, ps := range a.Players {
		if !ps.passed() {
			return false
		}
	}
	return true
}

// leader finds the player who has not passed while every other player has
// passed with both a lower bid and a lower round.
func (a *Auction) leader() (string, bool) {
	for _, id := range a.PlayerIDs() {
		me := a.Players[id]
		if me.passed() {
			continue
		}
		if a.dominates(id) {
			return id, true
		}
	}
	return "", false
}

func (a *Auction) dominates(p string) bool {
	me := a.Players[p]
	for id, other := range a.Players {
		if id == p {
			continue
		}
		if !other.passed() || me.Bid <= other.Bid || me.Round <= other.Round {
			return false
		}
	}
	return true
}

// PlaceBid records a bid of amount for p, who holds money.
func (a *Auction) PlaceBid(p string, amount, money int) error {
	if !a.CanBid(p, money) {
		return fmt.Errorf("%w: %s cannot bid", ErrPrecondition, p)
	}
	if amount <= a.HighestBid() || amount > money {
		return fmt.Errorf("%w: bid %d outside (%d, %d]", ErrPrecondition, amount, a.HighestBid(), money)
	}
	ps := a.Players[p]
	ps.Bid = amount
	ps.LastAction = ActionBid
	a.Players[p] = ps
	return nil
}

func (a *Auction) Stand(p string) error {
	if !a.CanStand(p) {
		return fmt.Errorf("%w: %s cannot stand", ErrPrecondition, p)
	}
	ps := a.Players[p]
	ps.LastAction = ActionStand
	a.Players[p] = ps
	return nil
}

func (a *Auction) Pass(p string) error {
	if !a.CanPass(p) {
		return fmt.Errorf("%w: %s cannot pass", ErrPrecondition, p)
	}
	ps := a.Players[p]
	ps.LastAction = ActionPass
	a.Players[p] = ps
	return nil
}

func (a *Auction) NextRound(p string) error {
	if !a.CanNextRound(p) {
		return fmt.Errorf("%w: %s cannot move to the next round", ErrPrecondition, p)
	}
	ps := a.Players[p]
	ps.Round++
	ps.LastAction = ActionChange
	a.Players[p] = ps
	return nil
}

// ChooseWinner resolves the winner from p's view and returns it.
func (a *Auction) ChooseWinner(p string) (string, error) {
	if !a.CanChooseWinner(p) {
		return "", fmt.Errorf("%w: %s cannot choose a winner", ErrPrecondition, p)
	}
	winner := WinnerNone
	if !a.allPassed() {
		winner, _ = a.leader()
	}
	ps := a.Players[p]
	ps.Winner = winner
	a.Players[p] = ps
	return winner, nil
}
