package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"github.com/luca-patrignani/monopoly-replica/replica"
	"github.com/luca-patrignani/monopoly-replica/storage"
)

// runSimulate plays cfg.games games one after the other and prints a
// summary of all of them.
func runSimulate(ctx context.Context, cfg *Config) error {
	logger := slog.Default()
	var results []replica.Result
	var commits [][]commitCount
	for g := 0; g < cfg.games; g++ {
		game := uuid.NewString()
		r, c, err := simulateGame(ctx, cfg, game, g, logger.With("game", game))
		if err != nil {
			return fmt.Errorf("game %s: %w", game, err)
		}
		results = append(results, r)
		commits = append(commits, c)
	}
	printSummary(results, commits)
	return nil
}

func simulateGame(ctx context.Context, cfg *Config, game string, n int, logger *slog.Logger) (replica.Result, []commitCount, error) {
	store, closeStore, err := openStore(cfg, game)
	if err != nil {
		return replica.Result{}, nil, err
	}
	defer closeStore()

	opts := []replica.SimulationOption{
		replica.WithMaxSteps(cfg.maxSteps),
		replica.WithSimulationLogger(logger),
	}
	if cfg.seed != "" {
		seed := cfg.seed
		if cfg.games > 1 {
			seed = fmt.Sprintf("%s/%d", cfg.seed, n)
		}
		opts = append(opts, replica.WithSeed(seed))
	}
	sim, err := replica.NewSimulation(game, cfg.players, cfg.startingMoney, store, opts...)
	if err != nil {
		return replica.Result{}, nil, err
	}
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Playing game %s ...", game))
	result, err := sim.Run(ctx)
	if err != nil {
		spinner.Fail()
		return replica.Result{}, nil, err
	}
	spinner.Success()

	counts := make([]commitCount, 0, len(cfg.players))
	for _, p := range cfg.players {
		b, err := store.Latest(p)
		if err != nil {
			return replica.Result{}, nil, err
		}
		counts = append(counts, commitCount{replica: p, blocks: b.Index + 1})
	}
	return result, counts, nil
}

// openStore keeps the ledgers in memory unless a data directory is
// configured, in which case every game gets its own subdirectory.
func openStore(cfg *Config, game string) (replica.Store, func(), error) {
	if cfg.dataDir == "" {
		return replica.NewMemoryStore(), func() {}, nil
	}
	store, err := storage.Open(filepath.Join(cfg.dataDir, game), storage.WithLogger(slog.Default()))
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			slog.Default().Warn("could not close store", "dir", store.Dir(), "err", err)
		}
	}, nil
}
