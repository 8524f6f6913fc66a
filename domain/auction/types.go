package auction

import (
	"errors"
	"sort"
)

type LastAction string

const (
	ActionChange LastAction = "CHANGE"
	ActionBid    LastAction = "BID"
	ActionStand  LastAction = "STAND"
	ActionPass   LastAction = "PASS"
)

// Winner values that are not a player id.
const (
	WinnerUnknown = "UNKNOWN"
	WinnerNone    = "NONE"
)

var (
	ErrPrecondition = errors.New("auction: precondition violated")
	ErrUnreachable  = errors.New("auction: unreachable state")
)

// PlayerState is the part of an auction owned by a single player.
type PlayerState struct {
	Bid        int        `yaml:"bid"`
	LastAction LastAction `yaml:"last_action"`
	Round      int        `yaml:"round"`
	Winner     string     `yaml:"winner"`
}

// Resolved reports whether the player has chosen a winner.
func (ps PlayerState) Resolved() bool {
	return ps.Winner != WinnerUnknown
}

func (ps PlayerState) passed() bool {
	return ps.LastAction == ActionPass
}

type Auction struct {
	Asset     int    `yaml:"asset"`
	Initiator string `yaml:"initiator"`
	// Opened is the game clock at which the auction was opened.
	Opened  uint64                 `yaml:"opened"`
	Players map[string]PlayerState `yaml:"players"`
}

// Open starts an auction on asset where every listed player begins at
// round 0 with no bid.
func Open(asset int, initiator string, opened uint64, players []string) *Auction {
	a := &Auction{
		Asset:     asset,
		Initiator: initiator,
		Opened:    opened,
		Players:   make(map[string]PlayerState, len(players)),
	}
	for _, p := range players {
		a.Players[p] = PlayerState{
			Bid:        0,
			LastAction: ActionChange,
			Round:      0,
			Winner:     WinnerUnknown,
		}
	}
	return a
}

func (a *Auction) Clone() *Auction {
	if a == nil {
		return nil
	}
	c := *a
	c.Players = make(map[string]PlayerState, len(a.Players))
	for id, ps := range a.Players {
		c.Players[id] = ps
	}
	return &c
}

// SameAuction reports whether a and b describe the same auction, possibly
// observed at different points of its progress.
func (a *Auction) SameAuction(b *Auction) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Asset != b.Asset || a.Initiator != b.Initiator || a.Opened != b.Opened {
		return false
	}
	if len(a.Players) != len(b.Players) {
		return false
	}
	for id := range a.Players {
		if _, ok := b.Players[id]; !ok {
			return false
		}
	}
	return true
}

// PlayerIDs returns the participants in a stable order.
func (a *Auction) PlayerIDs() []string {
	ids := make([]string, 0, len(a.Players))
	for id := range a.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a *Auction) HighestBid() int {
	highest := 0
	for _, ps := range a.Players {
		highest = max(highest, ps.Bid)
	}
	return highest
}
