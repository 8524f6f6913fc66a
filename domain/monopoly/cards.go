package monopoly

import (
	"fmt"
	"math/rand/v2"
)

type CardKind string

const (
	CardCollect   CardKind = "collect"
	CardPay       CardKind = "pay"
	CardAdvanceTo CardKind = "advance_to"
	CardGoToJail  CardKind = "go_to_jail"
	CardGoojfCC   CardKind = "goojf_cc"
	CardGoojfCH   CardKind = "goojf_ch"
)

type Card struct {
	Kind   CardKind
	Text   string
	Amount int
	Square int
}

// The get out of jail free card is always last in its deck so that it can
// be left out of the draw while someone holds it.
var communityChestCards = []Card{
	{Kind: CardCollect, Text: "Bank error in your favor", Amount: 200},
	{Kind: CardCollect, Text: "Holiday fund matures", Amount: 100},
	{Kind: CardCollect, Text: "From sale of stock you get", Amount: 50},
	{Kind: CardPay, Text: "Doctor's fee", Amount: 50},
	{Kind: CardPay, Text: "Hospital fees", Amount: 100},
	{Kind: CardAdvanceTo, Text: "Advance to Go", Square: 0},
	{Kind: CardGoToJail, Text: "Go to jail"},
	{Kind: CardGoojfCC, Text: "Get out of jail free"},
}

var chanceCards = []Card{
	{Kind: CardAdvanceTo, Text: "Advance to Go", Square: 0},
	{Kind: CardAdvanceTo, Text: "Advance to Illinois Avenue", Square: 24},
	{Kind: CardAdvanceTo, Text: "Advance to St. Charles Place", Square: 11},
	{Kind: CardAdvanceTo, Text: "Advance to Boardwalk", Square: 39},
	{Kind: CardCollect, Text: "Bank pays you dividend", Amount: 50},
	{Kind: CardPay, Text: "Speeding fine", Amount: 15},
	{Kind: CardGoToJail, Text: "Go to jail"},
	{Kind: CardGoojfCH, Text: "Get out of jail free"},
}

func drawCard(r *rand.Rand, deck []Card, goojfHeld bool) Card {
	n := len(deck)
	if goojfHeld {
		n--
	}
	return deck[r.IntN(n)]
}

func drawAndExecuteCard(s *GameState, player string) (string, error) {
	r := s.rng("card")
	var card Card
	switch s.current(player).Type {
	case SquareCommunityChest:
		card = drawCard(r, communityChestCards, s.GoojfCCOwner != "")
	case SquareChance:
		card = drawCard(r, chanceCards, s.GoojfCHOwner != "")
	default:
		return "", fmt.Errorf("%w: no card to draw on %s", ErrUnreachable, s.current(player).Name)
	}
	msg, err := executeCard(s, player, card)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s draws %q, %s", player, card.Text, msg), nil
}

func executeCard(s *GameState, player string, card Card) (string, error) {
	switch card.Kind {
	case CardCollect:
		s.collectFromBank(player, card.Amount)
		s.Phase = PhaseDoublesCheck
		return fmt.Sprintf("collects %d", card.Amount), nil
	case CardPay:
		if s.Players[player].Money < card.Amount {
			s.enterBankruptcyPrevention(Bank, card.Amount, PhaseDoublesCheck)
			return fmt.Sprintf("cannot pay %d", card.Amount), nil
		}
		s.payBank(player, card.Amount)
		s.Phase = PhaseDoublesCheck
		return fmt.Sprintf("pays %d", card.Amount), nil
	case CardAdvanceTo:
		// The phase stays post-roll so the new square gets resolved.
		s.moveTo(player, card.Square)
		return fmt.Sprintf("advances to %s", s.Board[card.Square].Name), nil
	case CardGoToJail:
		s.goToJail(player)
		return "goes to jail", nil
	case CardGoojfCC:
		s.GoojfCCOwner = player
		s.Phase = PhaseDoublesCheck
		return "keeps the card", nil
	case CardGoojfCH:
		s.GoojfCHOwner = player
		s.Phase = PhaseDoublesCheck
		return "keeps the card", nil
	}
	return "", fmt.Errorf("%w: unknown card kind %q", ErrUnreachable, card.Kind)
}
