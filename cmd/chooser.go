package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/replica"
)

// interactiveChooser asks the player at the terminal.
type interactiveChooser struct{}

func (interactiveChooser) Choose(ctx context.Context, player string, s *monopoly.GameState, actions []monopoly.Action) (replica.Choice, error) {
	printState(s, player)
	options := make([]string, len(actions))
	for i, a := range actions {
		options[i] = fmt.Sprintf("%d. %s", i+1, a.Label)
	}
	for {
		if err := ctx.Err(); err != nil {
			return replica.Choice{}, err
		}
		selected, err := pterm.DefaultInteractiveSelect.WithDefaultText("Select your next action").WithOptions(options).Show()
		if err != nil {
			return replica.Choice{}, err
		}
		index, err := optionIndex(selected, len(actions))
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		choice := replica.Choice{Index: index}
		if r := actions[index].Bid; r != nil {
			text, err := pterm.DefaultInteractiveTextInput.
				WithDefaultText(fmt.Sprintf("Enter the amount to bid (%d-%d)", r.Min, r.Max)).
				WithDefaultValue(strconv.Itoa(r.Min)).Show()
			if err != nil {
				return replica.Choice{}, err
			}
			amount, err := parseAmount(text, *r)
			if err != nil {
				pterm.Error.Printfln("Invalid amount: %s", err.Error())
				continue
			}
			choice.Amount = amount
		}
		return choice, nil
	}
}

func optionIndex(option string, n int) (int, error) {
	prefix, _, ok := strings.Cut(option, ".")
	if !ok {
		return 0, fmt.Errorf("unknown option %q", option)
	}
	i, err := strconv.Atoi(prefix)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("unknown option %q", option)
	}
	return i - 1, nil
}

func parseAmount(text string, r monopoly.BidRange) (int, error) {
	amount, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, err
	}
	if amount < r.Min || amount > r.Max {
		return 0, fmt.Errorf("%d is outside %d-%d", amount, r.Min, r.Max)
	}
	return amount, nil
}
