package monopoly

import (
	"bytes"
	"strings"
	"testing"

	"github.com/luca-patrignani/monopoly-replica/domain/auction"
)

func TestEncodeDecode(t *testing.T) {
	s := newTestGame(t, "p0", "p1", "p2")
	s.Phase = PhaseAuction
	s.Board[1].Owner = "p1"
	s.Board[3].Owner = "p1"
	s.Board[3].Level = 1
	s.FreeForAllOrder = []string{"p2"}
	s.Auction = auction.Open(5, "p0", 3, []string{"p0", "p1", "p2"})
	s.Clock = 9

	b, err := Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Encode(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, again) {
		t.Fatalf("encoding is not stable:\n%s\n---\n%s", b, again)
	}
	if !Equal(s, decoded) {
		t.Fatal("decoded snapshot differs")
	}
	if !strings.Contains(string(b), "phase: auction") {
		t.Fatalf("unexpected encoding:\n%s", b)
	}
}

func TestDecodeRejectsIncompleteSnapshot(t *testing.T) {
	tests := []string{
		"phase: pre-roll\n",
		"order: [p0]\nboard: [{type: go}]\n",
		"order: [p0, p1]\nplayers: {p0: {money: 1}}\nboard: [{type: go}]\n",
		"order: [\n",
	}
	for _, in := range tests {
		if _, err := Decode([]byte(in)); err == nil {
			t.Errorf("expected error decoding %q", in)
		}
	}
}

func TestDigest(t *testing.T) {
	a := newTestGame(t, "p0", "p1")
	b := newTestGame(t, "p0", "p1")
	if a.Digest() != b.Digest() {
		t.Fatal("equal snapshots must share a digest")
	}
	b.Clock++
	if a.Digest() == b.Digest() {
		t.Fatal("the clock is part of the digest")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := newTestGame(t, "p0", "p1")
	s.Auction = auction.Open(1, "p0", 0, []string{"p0", "p1"})
	s.Debt = &Debt{Creditor: Bank, Amount: 5}
	s.FreeForAllOrder = []string{"p0"}
	before := s.Digest()

	c := s.Clone()
	c.Players["p0"].Money = 0
	c.Board[1].Owner = "p1"
	c.Board[1].Rent[0] = 99
	c.Auction.Players["p0"] = auction.PlayerState{Bid: 3}
	c.Debt.Amount = 7
	c.FreeForAllOrder[0] = "p1"
	c.Order[0] = "x"
	if s.Digest() != before {
		t.Fatal("clone shares state with the original")
	}
}

func TestSeededRand(t *testing.T) {
	a := SeededRand("abc", "roll")
	b := SeededRand("abc", "roll")
	c := SeededRand("abc", "card")
	same, diff := true, false
	for i := 0; i < 16; i++ {
		x, y, z := a.Uint64(), b.Uint64(), c.Uint64()
		same = same && x == y
		diff = diff || x != z
	}
	if !same || !diff {
		t.Fatalf("expected equal seeds to agree and salts to differ: %t %t", same, diff)
	}
}
