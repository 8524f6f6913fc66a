package monopoly

import "testing"

func newTestGame(t *testing.T, players ...string) *GameState {
	t.Helper()
	s, err := NewGame(players, DefaultStartingMoney)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// setMoney moves money between the bank and player so totals stay intact.
func setMoney(s *GameState, player string, money int) {
	s.BankMoney += s.Players[player].Money - money
	s.Players[player].Money = money
}

func find(t *testing.T, actions []Action, kind ActionKind) Action {
	t.Helper()
	for _, a := range actions {
		if a.Kind == kind {
			return a
		}
	}
	t.Fatalf("no %s action among %v", kind, labels(actions))
	return Action{}
}

func has(actions []Action, kind ActionKind) bool {
	for _, a := range actions {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func labels(actions []Action) []string {
	l := make([]string, len(actions))
	for i, a := range actions {
		l[i] = a.Label
	}
	return l
}

// step applies the action of the given kind and checks the invariants of
// the resulting snapshot.
func step(t *testing.T, s *GameState, player string, kind ActionKind, p Params) *GameState {
	t.Helper()
	a := find(t, EnabledActions(player, s), kind)
	next, _, err := a.Apply(s, p)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckInvariants(next); err != nil {
		t.Fatal(err)
	}
	return next
}

// withDice bumps the clock of s until the roll seeded from it satisfies ok.
func withDice(t *testing.T, s *GameState, salt string, ok func(d1, d2 int) bool) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if ok(rollDice(s.rng(salt))) {
			return
		}
		s.Clock++
	}
	t.Fatal("no suitable roll found")
}

func doubles(d1, d2 int) bool { return d1 == d2 }

func notDoubles(d1, d2 int) bool { return d1 != d2 }
