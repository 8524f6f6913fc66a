package monopoly

import "fmt"

func doublesCheckActions(b *actionSet) {
	player := b.player
	b.add(ActionDoublesCheck, "Doubles check", -1, func(s *GameState, _ Params) (string, error) {
		if s.Players[player].ConsecutiveDoubles > 0 {
			s.Phase = PhasePreRoll
			return fmt.Sprintf("%s has rolled doubles, gets another turn", player), nil
		}
		s.startFreeForAll()
		return fmt.Sprintf("%s has not rolled doubles, free 4 all starts", player), nil
	})
}

// freeForAllActions lets the head of the queue manage its properties out of
// turn. Once the queue is drained the active player passes the turn on.
func freeForAllActions(b *actionSet) {
	s, player := b.state, b.player
	if len(s.FreeForAllOrder) == 0 {
		if s.ActivePlayer() != player {
			return
		}
		b.add(ActionGiveTurn, "Give turn to next active player", -1, func(s *GameState, _ Params) (string, error) {
			next := s.giveTurn()
			return fmt.Sprintf("%s gives the turn to %s", player, next), nil
		})
		return
	}
	if s.FreeForAllOrder[0] != player {
		return
	}
	b.add(ActionConcludeFreeAll, "Conclude free 4 all actions", -1, func(s *GameState, _ Params) (string, error) {
		s.FreeForAllOrder = s.FreeForAllOrder[1:]
		return fmt.Sprintf("%s concludes free 4 all actions", player), nil
	})
	addUnmortgageActions(b)
	addMortgageActions(b)
	addUpgradeActions(b)
	addDowngradeActions(b)
}

func terminationActions(b *actionSet) {
	player := b.player
	b.add(ActionTerminate, "Terminate", -1, func(s *GameState, _ Params) (string, error) {
		alive := s.nonBankrupt()
		if len(alive) != 1 {
			return "", fmt.Errorf("%w: %d players are still in the game", ErrPrecondition, len(alive))
		}
		s.Winner = alive[0]
		return fmt.Sprintf("%s terminates, winner: %s", player, s.Winner), nil
	})
}
