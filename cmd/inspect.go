package main

import (
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/monopoly-replica/storage"
)

// runInspect verifies every chain of the data directory and shows the
// latest snapshot of one replica.
func runInspect(cfg *Config) error {
	store, err := storage.Open(cfg.dataDir, storage.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer store.Close()

	game, ok, err := store.Game()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no game stored in %s", cfg.dataDir)
	}
	replicas, err := store.Replicas()
	if err != nil {
		return err
	}
	if len(replicas) == 0 {
		return fmt.Errorf("no replica stored in %s", cfg.dataDir)
	}

	data := pterm.TableData{{"Replica", "Blocks", "Clock", "Phase", "Last message", "Chain"}}
	for _, id := range replicas {
		bc, err := store.Load(id)
		if err != nil {
			data = append(data, []string{id, "-", "-", "-", "-", pterm.LightRed(err.Error())})
			continue
		}
		b, err := bc.Latest()
		if err != nil {
			return err
		}
		data = append(data, []string{id, fmt.Sprint(bc.Len()), fmt.Sprint(b.State.Clock), string(b.State.Phase), b.Message, pterm.LightGreen("verified")})
	}
	pterm.Info.Printfln("Game %s", game)
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	id := cfg.replica
	if id == "" {
		id = replicas[0]
	}
	b, err := store.Latest(id)
	if err != nil {
		return err
	}
	printState(b.State, id)
	return nil
}
