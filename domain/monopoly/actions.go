package monopoly

import (
	"fmt"
)

type ActionKind string

const (
	ActionEndPreRoll      ActionKind = "end-pre-roll"
	ActionPlayGoojfCH     ActionKind = "play-goojf-ch"
	ActionPlayGoojfCC     ActionKind = "play-goojf-cc"
	ActionPayJailFine     ActionKind = "pay-jail-fine"
	ActionMortgage        ActionKind = "mortgage"
	ActionUnmortgage      ActionKind = "unmortgage"
	ActionUpgrade         ActionKind = "upgrade"
	ActionDowngrade       ActionKind = "downgrade"
	ActionRollAndMove     ActionKind = "roll-and-move"
	ActionRollInJail      ActionKind = "roll-in-jail"
	ActionDoNothing       ActionKind = "do-nothing"
	ActionPayRent         ActionKind = "pay-rent"
	ActionPreventOnRent   ActionKind = "prevent-bankruptcy-on-rent"
	ActionPayUtilityRent  ActionKind = "pay-utility-rent"
	ActionPayTax          ActionKind = "pay-tax"
	ActionPreventOnTax    ActionKind = "prevent-bankruptcy-on-tax"
	ActionBuyProperty     ActionKind = "buy-property"
	ActionAuctionProperty ActionKind = "auction-property"
	ActionDrawCard        ActionKind = "draw-card"
	ActionGoToJail        ActionKind = "go-to-jail"
	ActionDoublesCheck    ActionKind = "doubles-check"
	ActionConcludeFreeAll ActionKind = "conclude-free-4-all"
	ActionGiveTurn        ActionKind = "give-turn"
	ActionPayOffDebt      ActionKind = "pay-off-debt"
	ActionGoBankrupt      ActionKind = "go-bankrupt"
	ActionBid             ActionKind = "bid"
	ActionStand           ActionKind = "stand"
	ActionPass            ActionKind = "pass"
	ActionNextRound       ActionKind = "next-round"
	ActionChooseWinner    ActionKind = "choose-winner"
	ActionCloseAuction    ActionKind = "close-auction"
	ActionTerminate       ActionKind = "terminate"
)

// BidRange bounds the amount of a bid, both ends included.
type BidRange struct {
	Min int
	Max int
}

// Params carries the input an action needs besides the snapshot.
type Params struct {
	Amount int
}

type effect func(s *GameState, p Params) (string, error)

// Action is one legal move of a player on the snapshot it was enumerated
// from. Applying it to any other snapshot fails.
type Action struct {
	Label  string
	Kind   ActionKind
	Player string
	// Square is the board index the action refers to, or -1.
	Square int
	// Bid is set for actions that need an amount.
	Bid *BidRange

	basis  string
	effect effect
}

// Basis is the digest of the snapshot the action was enumerated on.
func (a Action) Basis() string {
	return a.basis
}

// Apply derives the next snapshot from s. It returns the new snapshot and a
// description of what happened; s is left untouched.
func (a Action) Apply(s *GameState, p Params) (*GameState, string, error) {
	if a.effect == nil {
		return nil, "", fmt.Errorf("%w: empty action", ErrPrecondition)
	}
	if s.Digest() != a.basis {
		return nil, "", fmt.Errorf("%w: %q was enumerated for another snapshot", ErrPrecondition, a.Label)
	}
	if a.Bid != nil && (p.Amount < a.Bid.Min || p.Amount > a.Bid.Max) {
		return nil, "", fmt.Errorf("%w: amount %d outside [%d, %d]", ErrPrecondition, p.Amount, a.Bid.Min, a.Bid.Max)
	}
	next := s.Clone()
	next.seed = a.basis
	msg, err := a.effect(next, p)
	next.seed = ""
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", a.Label, err)
	}
	next.Clock = s.Clock + 1
	return next, msg, nil
}

// actionSet collects the actions of one player on one snapshot.
type actionSet struct {
	state   *GameState
	player  string
	basis   string
	actions []Action
}

func (b *actionSet) add(kind ActionKind, label string, square int, fn effect) {
	b.actions = append(b.actions, Action{
		Label:  label,
		Kind:   kind,
		Player: b.player,
		Square: square,
		basis:  b.basis,
		effect: fn,
	})
}

func (b *actionSet) addBid(label string, r BidRange, fn effect) {
	b.add(ActionBid, label, -1, fn)
	b.actions[len(b.actions)-1].Bid = &r
}

type phaseHandler struct {
	// turnBound phases only answer for the active player.
	turnBound bool
	enabled   func(b *actionSet)
}

var phaseHandlers = map[Phase]phaseHandler{
	PhasePreRoll:              {turnBound: true, enabled: preRollActions},
	PhaseRoll:                 {turnBound: true, enabled: rollActions},
	PhasePostRoll:             {turnBound: true, enabled: postRollActions},
	PhaseDoublesCheck:         {turnBound: true, enabled: doublesCheckActions},
	PhaseBankruptcyPrevention: {turnBound: true, enabled: bankruptcyPreventionActions},
	PhaseFreeForAll:           {turnBound: false, enabled: freeForAllActions},
	PhaseAuction:              {turnBound: false, enabled: auctionActions},
}

// EnabledActions lists what player may do on s, in a stable order. An empty
// list is an ordinary outcome: the player has to wait for its peers.
func EnabledActions(player string, s *GameState) []Action {
	if s.Terminated() {
		return nil
	}
	p, ok := s.Players[player]
	if !ok {
		return nil
	}
	b := &actionSet{state: s, player: player, basis: s.Digest()}
	if len(s.nonBankrupt()) == 1 {
		terminationActions(b)
		return b.actions
	}
	if p.Bankrupt {
		return nil
	}
	h, ok := phaseHandlers[s.Phase]
	if !ok {
		return nil
	}
	if h.turnBound && s.ActivePlayer() != player {
		return nil
	}
	h.enabled(b)
	return b.actions
}
