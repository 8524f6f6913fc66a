package auction

import "fmt"

// MergePlayer reconciles two views of the same player's sub-state and keeps
// the more informed one.
func MergePlayer(local, peer PlayerState) (PlayerState, error) {
	switch {
	case local == peer:
		return local, nil
	case peer.Round > local.Round:
		return peer, nil
	case peer.Round < local.Round:
		return local, nil
	case peer.Resolved() && !local.Resolved():
		return peer, nil
	case !peer.Resolved() && local.Resolved():
		return local, nil
	case peer.LastAction != ActionChange && local.LastAction == ActionChange:
		return peer, nil
	case peer.LastAction == ActionChange && local.LastAction != ActionChange:
		return local, nil
	}
	return PlayerState{}, fmt.Errorf("%w: cannot order %+v and %+v", ErrUnreachable, local, peer)
}

// Merge folds peer into local player by player. It returns the merged
// auction and whether it differs from local. Neither input is modified.
func Merge(local, peer *Auction) (*Auction, bool, error) {
	if !local.SameAuction(peer) {
		return nil, false, fmt.Errorf("%w: merging different auctions", ErrUnreachable)
	}
	merged := local.Clone()
	changed := false
	for _, id := range local.PlayerIDs() {
		ps, err := MergePlayer(local.Players[id], peer.Players[id])
		if err != nil {
			return nil, false, fmt.Errorf("player %s: %w", id, err)
		}
		if ps != local.Players[id] {
			changed = true
		}
		merged.Players[id] = ps
	}
	return merged, changed, nil
}
