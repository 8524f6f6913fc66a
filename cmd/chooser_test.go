package main

import (
	"testing"

	"github.com/luca-patrignani/monopoly-replica/domain/auction"
	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
)

func TestOptionIndex(t *testing.T) {
	i, err := optionIndex("3. Buy Baltic Avenue", 3)
	if err != nil || i != 2 {
		t.Fatalf("expected index 2, got %d %v", i, err)
	}
	for _, bad := range []string{"Buy", "0. x", "4. x", "a. x"} {
		if _, err := optionIndex(bad, 3); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestParseAmount(t *testing.T) {
	r := monopoly.BidRange{Min: 10, Max: 20}
	if a, err := parseAmount(" 15 ", r); err != nil || a != 15 {
		t.Fatalf("expected 15, got %d %v", a, err)
	}
	for _, bad := range []string{"9", "21", "ten", ""} {
		if _, err := parseAmount(bad, r); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestPrintState(t *testing.T) {
	s, err := monopoly.NewGame([]string{"p0", "p1"}, monopoly.DefaultStartingMoney)
	if err != nil {
		t.Fatal(err)
	}
	s.Board[1].Owner = "p1"
	s.Board[1].Mortgaged = true
	s.Players["p1"].InJail = true
	s.Debt = &monopoly.Debt{Creditor: monopoly.Bank, Amount: 50}
	s.Auction = auction.Open(3, "p0", 0, []string{"p0", "p1"})
	printState(s, "p0")
	if got := owned(s, "p1"); len(got) != 1 || got[0] != 1 {
		t.Fatalf("unexpected owned squares %v", got)
	}
	s.Winner = "p0"
	printState(s, "p1")
}
