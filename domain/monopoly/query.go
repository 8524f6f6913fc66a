package monopoly

// OwnsWholeSet reports whether owner holds every street of set.
func (s *GameState) OwnsWholeSet(owner string, set int) bool {
	found := false
	for _, sq := range s.Board {
		if sq.Type != SquareStreet || sq.Set != set {
			continue
		}
		if sq.Owner != owner {
			return false
		}
		found = true
	}
	return found
}

// OwnedRailroadCount counts the railroads of owner, mortgaged or not.
func (s *GameState) OwnedRailroadCount(owner string) int {
	return s.countOwned(owner, SquareRail)
}

// OwnedUtilityCount counts the utilities of owner, mortgaged or not.
func (s *GameState) OwnedUtilityCount(owner string) int {
	return s.countOwned(owner, SquareUtility)
}

func (s *GameState) countOwned(owner string, t SquareType) int {
	n := 0
	for _, sq := range s.Board {
		if sq.Type == t && sq.Owner == owner {
			n++
		}
	}
	return n
}

// setLevels returns the lowest and highest building level in set, and
// whether any street of the set is mortgaged.
func (s *GameState) setLevels(set int) (lowest, highest int, mortgaged bool) {
	lowest, highest = MaxLevel, 0
	for _, sq := range s.Board {
		if sq.Type != SquareStreet || sq.Set != set {
			continue
		}
		lowest = min(lowest, sq.Level)
		highest = max(highest, sq.Level)
		mortgaged = mortgaged || sq.Mortgaged
	}
	return lowest, highest, mortgaged
}

// Rent is what a visitor owes the owner of the property at idx. Utility
// rent depends on a dice roll and is computed by the caller from the
// multiplier returned by utilityMultiplier.
func (s *GameState) Rent(idx int) int {
	sq := s.Board[idx]
	switch sq.Type {
	case SquareStreet:
		if sq.Level == 0 && s.OwnsWholeSet(sq.Owner, sq.Set) {
			return sq.Rent[0] * 2
		}
		return sq.Rent[sq.Level]
	case SquareRail:
		n := s.OwnedRailroadCount(sq.Owner)
		if n == 0 {
			return 0
		}
		return 25 << (n - 1)
	}
	return 0
}

func (s *GameState) utilityMultiplier(owner string) int {
	if s.OwnedUtilityCount(owner) == 2 {
		return 10
	}
	return 4
}

func (s *GameState) nonBankrupt() []string {
	var ids []string
	for _, id := range s.Order {
		if !s.Players[id].Bankrupt {
			ids = append(ids, id)
		}
	}
	return ids
}

// Money returns the money of every player, keyed by id.
func (s *GameState) Money() map[string]int {
	m := make(map[string]int, len(s.Players))
	for id, p := range s.Players {
		m[id] = p.Money
	}
	return m
}
