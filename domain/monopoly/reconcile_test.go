package monopoly

import (
	"errors"
	"testing"

	"github.com/luca-patrignani/monopoly-replica/domain/auction"
)

func TestReconcileEqual(t *testing.T) {
	s := newTestGame(t, "p0", "p1")
	merged, changed, err := Reconcile(s, s.Clone())
	if err != nil || changed || merged != s {
		t.Fatalf("expected local back unchanged, got %v %t", err, changed)
	}
}

func TestReconcileLaterClockWins(t *testing.T) {
	s := newTestGame(t, "p0", "p1")
	next := step(t, s, "p0", ActionEndPreRoll, Params{})

	merged, changed, err := Reconcile(s, next)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || !Equal(merged, next) {
		t.Fatal("expected the later snapshot")
	}
	if merged == next {
		t.Fatal("reconcile must not hand out the peer's snapshot")
	}

	merged, changed, err = Reconcile(next, s)
	if err != nil || changed || merged != next {
		t.Fatalf("expected local to stay, got %v %t", err, changed)
	}
}

func TestReconcileDivergence(t *testing.T) {
	s := newTestGame(t, "p0", "p1")
	a := s.Clone()
	a.Players["p0"].Position = 3
	b := s.Clone()
	b.Players["p0"].Position = 4
	if _, _, err := Reconcile(a, b); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected unreachable error, got %v", err)
	}
}

func TestReconcileAuction(t *testing.T) {
	s := newTestGame(t, "p1", "p2")
	s.Phase = PhasePostRoll
	s.Players["p1"].Position = 1
	s = step(t, s, "p1", ActionAuctionProperty, Params{})

	a := step(t, s, "p1", ActionBid, Params{Amount: 10})
	b := step(t, s.Clone(), "p2", ActionPass, Params{})
	if a.Clock != b.Clock {
		t.Fatalf("both views advanced once, clocks %d and %d", a.Clock, b.Clock)
	}

	merged, changed, err := Reconcile(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected the peer's pass to be merged")
	}
	if ps := merged.Auction.Players["p1"]; ps.Bid != 10 {
		t.Fatalf("lost the local bid: %+v", ps)
	}
	if ps := merged.Auction.Players["p2"]; ps.LastAction != auction.ActionPass {
		t.Fatalf("lost the peer's pass: %+v", ps)
	}
	if err := CheckInvariants(merged); err != nil {
		t.Fatal(err)
	}

	back, _, err := Reconcile(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(back, merged) {
		t.Fatal("merge order must not matter")
	}

	again, changed, err := Reconcile(merged, a)
	if err != nil || changed || again != merged {
		t.Fatalf("merging an older view must be a no-op, got %v %t", err, changed)
	}
}

func TestReconcileAuctionDifferingOutside(t *testing.T) {
	s := newTestGame(t, "p1", "p2")
	s.Phase = PhasePostRoll
	s.Players["p1"].Position = 1
	s = step(t, s, "p1", ActionAuctionProperty, Params{})
	other := s.Clone()
	other.Players["p2"].Position = 7
	other.Clock++
	if _, _, err := Reconcile(s, other); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected unreachable error, got %v", err)
	}
}
