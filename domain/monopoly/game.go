package monopoly

import (
	"fmt"

	"github.com/luca-patrignani/monopoly-replica/domain/auction"
)

// NewGame builds the initial snapshot: every player starts on GO with
// startingMoney, the bank keeps the rest and the first player is active.
func NewGame(players []string, startingMoney int) (*GameState, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("at least 2 players are required, got %d", len(players))
	}
	if startingMoney < 0 || startingMoney*len(players) > TotalMoney {
		return nil, fmt.Errorf("starting money %d does not fit %d players", startingMoney, len(players))
	}
	s := &GameState{
		Phase:     PhasePreRoll,
		Order:     append([]string(nil), players...),
		Players:   make(map[string]*Player, len(players)),
		Board:     NewBoard(),
		BankMoney: TotalMoney - startingMoney*len(players),
	}
	for _, id := range players {
		if err := ValidatePlayerID(id); err != nil {
			return nil, err
		}
		if _, dup := s.Players[id]; dup {
			return nil, fmt.Errorf("duplicate player %q", id)
		}
		s.Players[id] = &Player{Money: startingMoney}
	}
	return s, nil
}

// ValidatePlayerID rejects ids that collide with reserved values.
func ValidatePlayerID(id string) error {
	switch id {
	case "", Bank, auction.WinnerUnknown, auction.WinnerNone:
		return fmt.Errorf("invalid player id %q", id)
	}
	return nil
}

// collectFromBank pays amount to player, or whatever the bank has left.
func (s *GameState) collectFromBank(player string, amount int) {
	amount = min(amount, s.BankMoney)
	s.Players[player].Money += amount
	s.BankMoney -= amount
}

func (s *GameState) payBank(player string, amount int) {
	s.Players[player].Money -= amount
	s.BankMoney += amount
}

func (s *GameState) payPlayer(from, to string, amount int) {
	s.Players[from].Money -= amount
	s.Players[to].Money += amount
}

func (s *GameState) pay(from, creditor string, amount int) {
	if creditor == Bank {
		s.payBank(from, amount)
		return
	}
	s.payPlayer(from, creditor, amount)
}

// moveTo places player on square idx and pays the GO salary when the move
// wrapped around the board.
func (s *GameState) moveTo(player string, idx int) {
	p := s.Players[player]
	if idx < p.Position {
		s.collectFromBank(player, GoSalary)
	}
	p.Position = idx
}

func (s *GameState) moveBy(player string, steps int) {
	s.moveTo(player, (s.Players[player].Position+steps)%len(s.Board))
}

func (s *GameState) goToJail(player string) {
	p := s.Players[player]
	p.InJail = true
	p.ConsecutiveDoubles = 0
	p.Position = JailIndex
	s.startFreeForAll()
}

func (s *GameState) release(player string) {
	p := s.Players[player]
	p.InJail = false
	p.JailTime = 0
}

// startFreeForAll queues every non-bankrupt player, starting from the
// active one.
func (s *GameState) startFreeForAll() {
	queue := make([]string, 0, len(s.Order))
	for i := range s.Order {
		id := s.Order[(s.Active+i)%len(s.Order)]
		if !s.Players[id].Bankrupt {
			queue = append(queue, id)
		}
	}
	s.FreeForAllOrder = queue
	s.Phase = PhaseFreeForAll
}

// giveTurn hands the turn to the next non-bankrupt player in order.
func (s *GameState) giveTurn() string {
	next := (s.Active + 1) % len(s.Order)
	for s.Players[s.Order[next]].Bankrupt && next != s.Active {
		next = (next + 1) % len(s.Order)
	}
	s.FreeForAllOrder = nil
	s.Active = next
	s.Phase = PhasePreRoll
	return s.Order[next]
}

func (s *GameState) enterBankruptcyPrevention(creditor string, amount int, next Phase) {
	s.Debt = &Debt{Creditor: creditor, Amount: amount, NextPhase: next}
	s.Phase = PhaseBankruptcyPrevention
}
