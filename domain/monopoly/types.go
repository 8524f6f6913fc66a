package monopoly

import (
	"errors"

	"github.com/luca-patrignani/monopoly-replica/domain/auction"
)

// TotalMoney is the amount of money in the game, split between the bank and
// the players. It never changes.
const TotalMoney = 20580

const (
	DefaultStartingMoney = 1500
	Bank                 = "bank"
	JailIndex            = 10
	JailFine             = 50
	GoSalary             = 200
	MaxLevel             = 5
)

var (
	ErrPrecondition = errors.New("precondition violated")
	ErrInvariant    = errors.New("invariant violated")
	ErrUnreachable  = errors.New("unreachable state")
)

type Phase string

const (
	PhasePreRoll              Phase = "pre-roll"
	PhaseRoll                 Phase = "roll"
	PhasePostRoll             Phase = "post-roll"
	PhaseDoublesCheck         Phase = "doubles-check"
	PhaseFreeForAll           Phase = "free-4-all"
	PhaseBankruptcyPrevention Phase = "bankruptcy-prevention"
	PhaseAuction              Phase = "auction"
)

type SquareType string

const (
	SquareGo             SquareType = "go"
	SquareStreet         SquareType = "street"
	SquareRail           SquareType = "rail"
	SquareUtility        SquareType = "util"
	SquareTax            SquareType = "tax"
	SquareChance         SquareType = "chance"
	SquareCommunityChest SquareType = "cc"
	SquareJail           SquareType = "jail"
	SquareGoToJail       SquareType = "go_to_jail"
	SquareFreeParking    SquareType = "free_parking"
)

type Player struct {
	Money              int  `yaml:"money"`
	Position           int  `yaml:"position"`
	InJail             bool `yaml:"in_jail"`
	JailTime           int  `yaml:"jail_time"`
	ConsecutiveDoubles int  `yaml:"consecutive_doubles"`
	Bankrupt           bool `yaml:"bankrupt"`
}

// Square is one board entry. Only property squares use owner and mortgage,
// and only streets use rent, house cost, level and set.
type Square struct {
	Type      SquareType `yaml:"type"`
	Name      string     `yaml:"name,omitempty"`
	Value     int        `yaml:"value,omitempty"`
	Owner     string     `yaml:"owner,omitempty"`
	Mortgaged bool       `yaml:"mortgaged,omitempty"`
	Rent      []int      `yaml:"rent,omitempty,flow"`
	HouseCost int        `yaml:"house_cost,omitempty"`
	Level     int        `yaml:"level,omitempty"`
	Set       int        `yaml:"set,omitempty"`
}

func (sq Square) IsProperty() bool {
	return sq.Type == SquareStreet || sq.Type == SquareRail || sq.Type == SquareUtility
}

// Debt is owed by the active player while the game is in bankruptcy
// prevention. Creditor is a player id or Bank.
type Debt struct {
	Creditor  string `yaml:"creditor"`
	Amount    int    `yaml:"amount"`
	NextPhase Phase  `yaml:"next_phase"`
}

// GameState is one snapshot of the game. Snapshots are never modified once
// built: actions and merges derive new ones with Clone.
type GameState struct {
	Phase           Phase              `yaml:"phase"`
	Order           []string           `yaml:"order,flow"`
	Active          int                `yaml:"active"`
	Players         map[string]*Player `yaml:"players"`
	Board           []Square           `yaml:"board"`
	BankMoney       int                `yaml:"bank_money"`
	Debt            *Debt              `yaml:"debt,omitempty"`
	FreeForAllOrder []string           `yaml:"free_for_all_order,omitempty,flow"`
	GoojfCCOwner    string             `yaml:"goojf_cc_owner,omitempty"`
	GoojfCHOwner    string             `yaml:"goojf_ch_owner,omitempty"`
	Auction         *auction.Auction   `yaml:"auction,omitempty"`
	Winner          string             `yaml:"winner,omitempty"`
	// Clock counts the actions folded into this snapshot.
	Clock uint64 `yaml:"clock"`

	// seed is the digest of the snapshot an action is being applied to.
	// It is only set while the action's effect runs.
	seed string
}

func (s *GameState) ActivePlayer() string {
	return s.Order[s.Active]
}

// Terminated reports whether the game has a winner.
func (s *GameState) Terminated() bool {
	return s.Winner != ""
}

func (s *GameState) current(player string) *Square {
	return &s.Board[s.Players[player].Position]
}

func (s *GameState) Clone() *GameState {
	c := *s
	c.Order = append([]string(nil), s.Order...)
	c.Players = make(map[string]*Player, len(s.Players))
	for id, p := range s.Players {
		cp := *p
		c.Players[id] = &cp
	}
	c.Board = make([]Square, len(s.Board))
	for i, sq := range s.Board {
		sq.Rent = append([]int(nil), sq.Rent...)
		c.Board[i] = sq
	}
	if s.Debt != nil {
		d := *s.Debt
		c.Debt = &d
	}
	if s.FreeForAllOrder != nil {
		c.FreeForAllOrder = append([]string(nil), s.FreeForAllOrder...)
	}
	c.Auction = s.Auction.Clone()
	return &c
}
