package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/replica"
)

func printBanner() {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("M", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("onopoly", pterm.FgDarkGray.ToStyle()),
	).Render()
}

// printState renders one panel per player, the board and the phase. me is
// highlighted when not empty.
func printState(s *monopoly.GameState, me string, additionalPanel ...pterm.Panel) {
	var panels []pterm.Panel
	for _, id := range s.Order {
		panels = append(panels, pterm.Panel{Data: printPlayerInfo(s, id, id == me)})
	}
	board := pterm.Panel{Data: printBoardInfo(s)}
	dashboard := []pterm.Panel{{Data: printPhaseInfo(s)}}
	dashboard = append(dashboard, additionalPanel...)

	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		panels,
		{board},
		dashboard,
	}).Render()
}

func printPlayerInfo(s *monopoly.GameState, id string, main bool) string {
	hpadding := 2
	if main {
		hpadding = 6
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(hpadding).WithTopPadding(1).WithBottomPadding(1)
	p := s.Players[id]
	var status string
	switch {
	case p.Bankrupt:
		status = pterm.LightRed("Bankrupt")
	case p.InJail:
		status = pterm.LightYellow(fmt.Sprintf("In jail (%d)", p.JailTime))
	case id == s.ActivePlayer():
		status = pterm.LightGreen("Playing")
	default:
		status = pterm.FgDarkGray.Sprint("Waiting")
	}
	title := id
	if main {
		title = pterm.LightCyan(id)
	}
	return pbox.WithTitle(title).WithTitleTopLeft().Sprintf("%s\nMoney: %d\nOn: %s\nOwns: %d", status, p.Money, s.Board[p.Position].Name, len(owned(s, id)))
}

func printBoardInfo(s *monopoly.GameState) string {
	var lines []string
	for i, sq := range s.Board {
		if !sq.IsProperty() || sq.Owner == "" {
			continue
		}
		line := fmt.Sprintf("%2d %-22s %s", i, sq.Name, sq.Owner)
		if sq.Level > 0 {
			line += fmt.Sprintf(" level %d", sq.Level)
		}
		if sq.Mortgaged {
			line += pterm.LightRed(" mortgaged")
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, "no property owned yet")
	}
	lines = append(lines, fmt.Sprintf("bank: %d", s.BankMoney))
	return pterm.DefaultBox.WithTitle("Board").WithTitleTopLeft().Sprint(strings.Join(lines, "\n"))
}

func printPhaseInfo(s *monopoly.GameState) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4)
	if s.Terminated() {
		return pbox.WithTitle(pterm.LightGreen("|GAME OVER|")).WithTitleTopCenter().Sprintf("%s won after %d actions", pterm.LightCyan(s.Winner), s.Clock)
	}
	info := fmt.Sprintf("Phase: %s\nTurn of: %s\nClock: %d", s.Phase, s.ActivePlayer(), s.Clock)
	if s.Debt != nil {
		info += fmt.Sprintf("\nOwes %d to %s", s.Debt.Amount, s.Debt.Creditor)
	}
	if a := s.Auction; a != nil {
		info += fmt.Sprintf("\nAuction of %s", s.Board[a.Asset].Name)
		for _, id := range s.Order {
			if ps, ok := a.Players[id]; ok {
				info += fmt.Sprintf("\n  %s: %d (%s)", id, ps.Bid, ps.LastAction)
			}
		}
	}
	return pbox.WithTitle(pterm.LightYellow("|TURN|")).WithTitleTopCenter().Sprint(info)
}

func owned(s *monopoly.GameState, id string) []int {
	var squares []int
	for i, sq := range s.Board {
		if sq.IsProperty() && sq.Owner == id {
			squares = append(squares, i)
		}
	}
	return squares
}

// commitCount is the number of blocks of a replica.
type commitCount struct {
	replica string
	blocks  int
}

func printSummary(results []replica.Result, commits [][]commitCount) {
	data := pterm.TableData{{"Game", "Winner", "Steps", "Commits"}}
	for i, r := range results {
		winner := r.Winner
		if !r.Terminated {
			winner = pterm.LightRed("none (step limit)")
		}
		data = append(data, []string{r.Game, winner, fmt.Sprint(r.Steps), formatCommits(commits[i])})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatCommits(commits []commitCount) string {
	sort.Slice(commits, func(i, j int) bool { return commits[i].replica < commits[j].replica })
	parts := make([]string, len(commits))
	for i, c := range commits {
		parts[i] = fmt.Sprintf("%s:%d", c.replica, c.blocks)
	}
	return strings.Join(parts, " ")
}
