package monopoly

import "fmt"

func rollActions(b *actionSet) {
	player := b.player
	if !b.state.Players[player].InJail {
		b.add(ActionRollAndMove, "Roll and move", -1, func(s *GameState, _ Params) (string, error) {
			return rollAndMove(s, player), nil
		})
		return
	}
	b.add(ActionRollInJail, "Roll in jail", -1, func(s *GameState, _ Params) (string, error) {
		return rollInJail(s, player), nil
	})
}

func rollAndMove(s *GameState, player string) string {
	d1, d2 := rollDice(s.rng("roll"))
	p := s.Players[player]
	if d1 == d2 {
		if p.ConsecutiveDoubles == 2 {
			s.goToJail(player)
			return fmt.Sprintf("%s rolls %d, %d, third consecutive doubles, goes to jail", player, d1, d2)
		}
		p.ConsecutiveDoubles++
	} else {
		p.ConsecutiveDoubles = 0
	}
	s.moveBy(player, d1+d2)
	s.Phase = PhasePostRoll
	return fmt.Sprintf("%s rolls %d, %d, moves to %s", player, d1, d2, s.current(player).Name)
}

func rollInJail(s *GameState, player string) string {
	d1, d2 := rollDice(s.rng("roll"))
	p := s.Players[player]
	switch {
	case d1 == d2:
		s.release(player)
		s.moveBy(player, d1+d2)
		s.Phase = PhasePostRoll
		return fmt.Sprintf("%s rolls %d, %d in jail, doubles, moves to %s", player, d1, d2, s.current(player).Name)
	case p.JailTime == 2:
		s.release(player)
		s.moveBy(player, d1+d2)
		if p.Money >= JailFine {
			s.payBank(player, JailFine)
			s.Phase = PhasePostRoll
			return fmt.Sprintf("%s rolls %d, %d in jail, missed doubles 3x, pays $%d, moves to %s",
				player, d1, d2, JailFine, s.current(player).Name)
		}
		s.enterBankruptcyPrevention(Bank, JailFine, PhasePostRoll)
		return fmt.Sprintf("%s rolls %d, %d in jail, missed doubles 3x, cannot pay $%d", player, d1, d2, JailFine)
	default:
		p.JailTime++
		s.startFreeForAll()
		return fmt.Sprintf("%s rolls %d, %d in jail, missed doubles %dx, stays in jail", player, d1, d2, p.JailTime)
	}
}
