package monopoly

import (
	"fmt"

	"github.com/luca-patrignani/monopoly-replica/domain/auction"
)

// Reconcile folds the peer's snapshot into the local one and reports whether
// the result differs from local. Neither input is modified.
//
// Two views of the same running auction are merged player by player. Any
// other pair of snapshots is ordered by clock: only one player may act on a
// snapshot outside an auction, so the later clock carries all the progress.
func Reconcile(local, peer *GameState) (*GameState, bool, error) {
	localDigest := local.Digest()
	if localDigest == peer.Digest() {
		return local, false, nil
	}
	if local.Phase == PhaseAuction && peer.Phase == PhaseAuction && local.Auction.SameAuction(peer.Auction) {
		return mergeAuction(local, peer, localDigest)
	}
	switch {
	case peer.Clock > local.Clock:
		return peer.Clone(), true, nil
	case peer.Clock < local.Clock:
		return local, false, nil
	}
	return nil, false, fmt.Errorf("%w: snapshots %.12s and %.12s diverge at clock %d",
		ErrUnreachable, localDigest, peer.Digest(), local.Clock)
}

func mergeAuction(local, peer *GameState, localDigest string) (*GameState, bool, error) {
	if !sameOutsideAuction(local, peer) {
		return nil, false, fmt.Errorf("%w: snapshots in the same auction differ outside it", ErrUnreachable)
	}
	a, _, err := auction.Merge(local.Auction, peer.Auction)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	merged := local.Clone()
	merged.Auction = a
	merged.Clock = max(local.Clock, peer.Clock)
	if merged.Digest() == localDigest {
		return local, false, nil
	}
	return merged, true, nil
}

func sameOutsideAuction(a, b *GameState) bool {
	x, y := a.Clone(), b.Clone()
	x.Auction, y.Auction = nil, nil
	x.Clock, y.Clock = 0, 0
	return x.Digest() == y.Digest()
}
