package replica

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/ledger"
)

const DefaultMaxSteps = 200000

// Result summarizes a simulation run.
type Result struct {
	Game       string
	Winner     string
	Steps      int
	Terminated bool
}

// Simulation runs every replica of one game in a single process. A seeded
// scheduler picks which replica advances at each step.
type Simulation struct {
	game     string
	players  []string
	store    Store
	nodes    []*Node
	schedule *rand.Rand
	maxSteps int
	seed     string
	genesis  *monopoly.GameState
	chooser  Chooser
	logger   *slog.Logger
}

type SimulationOption func(*Simulation)

func WithMaxSteps(n int) SimulationOption {
	return func(s *Simulation) {
		s.maxSteps = n
	}
}

// WithSeed changes the scheduler seed, which defaults to the game id.
func WithSeed(seed string) SimulationOption {
	return func(s *Simulation) {
		s.seed = seed
	}
}

// WithGenesis starts the game from state instead of a fresh board. The players
// are then taken from its turn order.
func WithGenesis(state *monopoly.GameState) SimulationOption {
	return func(s *Simulation) {
		s.genesis = state
	}
}

func WithChooser(c Chooser) SimulationOption {
	return func(s *Simulation) {
		s.chooser = c
	}
}

func WithSimulationLogger(logger *slog.Logger) SimulationOption {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// NewSimulation registers one replica per player in store, every one starting
// from the same genesis snapshot.
func NewSimulation(game string, players []string, startingMoney int, store Store, opts ...SimulationOption) (*Simulation, error) {
	sim := &Simulation{
		game:     game,
		store:    store,
		maxSteps: DefaultMaxSteps,
		seed:     game,
		chooser:  RandomChooser{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(sim)
	}
	if sim.genesis == nil {
		g, err := monopoly.NewGame(players, startingMoney)
		if err != nil {
			return nil, err
		}
		sim.genesis = g
	}
	sim.players = append([]string(nil), sim.genesis.Order...)
	if err := monopoly.CheckInvariants(sim.genesis); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	sim.schedule = monopoly.SeededRand(sim.genesis.Digest(), "schedule/"+sim.seed)

	transport := LocalTransport{Store: store}
	for _, id := range sim.players {
		signer := ledger.DeriveSigner([]byte(game + "/" + id))
		if err := store.Register(game, id, signer, sim.genesis); err != nil {
			return nil, err
		}
		var peers []string
		for _, other := range sim.players {
			if other != id {
				peers = append(peers, other)
			}
		}
		sim.nodes = append(sim.nodes, NewNode(id, peers, store, transport, sim.chooser, WithLogger(sim.logger)))
	}
	return sim, nil
}

func (s *Simulation) Game() string {
	return s.game
}

// Run advances randomly picked replicas until all of them report the end of
// the game or the step limit is reached.
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	res := Result{Game: s.game}
	done := make(map[string]bool, len(s.nodes))
	for res.Steps < s.maxSteps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		pending := make([]*Node, 0, len(s.nodes))
		for _, n := range s.nodes {
			if !done[n.ID()] {
				pending = append(pending, n)
			}
		}
		if len(pending) == 0 {
			res.Terminated = true
			break
		}
		n := pending[s.schedule.IntN(len(pending))]
		out, err := n.AdvanceOneStep(ctx)
		res.Steps++
		if err != nil {
			return res, fmt.Errorf("step %d: %w", res.Steps, err)
		}
		if out.Status == Terminated {
			done[n.ID()] = true
			res.Winner = out.Winner
		}
	}
	if !res.Terminated && len(done) == len(s.nodes) {
		res.Terminated = true
	}
	s.logger.Info("simulation finished", "game", s.game, "steps", res.Steps, "winner", res.Winner, "terminated", res.Terminated)
	return res, nil
}
