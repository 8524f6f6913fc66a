package replica

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
)

type Status int

const (
	Continuing Status = iota
	Terminated
)

func (s Status) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "continuing"
}

// Outcome describes what a step did. Action is the label of the applied action,
// empty for merges and idle steps.
type Outcome struct {
	Status Status
	Winner string
	Merged bool
	Action string
}

// StepError is returned when a step produced a snapshot that must not be
// committed. Snapshot is the rejected snapshot.
type StepError struct {
	Replica  string
	Snapshot *monopoly.GameState
	Err      error
}

func (e *StepError) Error() string {
	digest := ""
	if e.Snapshot != nil {
		digest = e.Snapshot.Digest()
	}
	return fmt.Sprintf("replica %s rejected snapshot %.12s: %v", e.Replica, digest, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Node struct {
	id        string
	peers     []string
	store     Store
	transport Transport
	chooser   Chooser
	logger    *slog.Logger
	nextPeer  int
}

type Option func(*Node)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) {
		n.logger = logger
	}
}

// NewNode creates the replica id of a game played with peers. The replica's
// chain must already be registered in store.
func NewNode(id string, peers []string, store Store, transport Transport, chooser Chooser, opts ...Option) *Node {
	n := &Node{
		id:        id,
		peers:     append([]string(nil), peers...),
		store:     store,
		transport: transport,
		chooser:   chooser,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With("replica", id)
	return n
}

func (n *Node) ID() string {
	return n.id
}

// AdvanceOneStep applies one legal action of the player, or merges from one
// peer when the player has none, and commits the result.
func (n *Node) AdvanceOneStep(ctx context.Context) (Outcome, error) {
	latest, err := n.store.Latest(n.id)
	if err != nil {
		return Outcome{}, fmt.Errorf("read latest snapshot of %s: %w", n.id, err)
	}
	s := latest.State
	if s.Terminated() {
		return outcome(s), nil
	}
	actions := LegalActions(n.id, s)
	if len(actions) == 0 {
		return n.merge(ctx, s)
	}

	choice, err := n.chooser.Choose(ctx, n.id, s, actions)
	if err != nil {
		return Outcome{}, fmt.Errorf("choose action: %w", err)
	}
	if choice.Index < 0 || choice.Index >= len(actions) {
		return Outcome{}, fmt.Errorf("%w: choice %d of %d actions", monopoly.ErrPrecondition, choice.Index, len(actions))
	}
	a := actions[choice.Index]
	next, msg, err := a.Apply(s, monopoly.Params{Amount: choice.Amount})
	if err != nil {
		return Outcome{}, &StepError{Replica: n.id, Snapshot: s, Err: err}
	}
	if err := n.commit(next, msg); err != nil {
		return Outcome{}, err
	}
	n.logger.Info(msg, "action", a.Label, "phase", next.Phase, "clock", next.Clock)
	o := outcome(next)
	o.Action = a.Label
	return o, nil
}

func (n *Node) merge(ctx context.Context, s *monopoly.GameState) (Outcome, error) {
	if len(n.peers) == 0 {
		return outcome(s), nil
	}
	peer := n.peers[n.nextPeer%len(n.peers)]
	n.nextPeer++

	remote, err := n.transport.FetchPeerLatest(ctx, peer)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		n.logger.Warn("could not fetch peer snapshot", "peer", peer, "err", err)
		return outcome(s), nil
	}
	merged, changed, err := monopoly.Reconcile(s, remote)
	if err != nil {
		n.logger.Error("merge failed", "peer", peer, "digest", s.Digest(), "err", err)
		return Outcome{}, &StepError{Replica: n.id, Snapshot: remote, Err: err}
	}
	if !changed {
		n.logger.Debug("merge brought nothing new", "peer", peer, "clock", s.Clock)
		return outcome(s), nil
	}
	if err := n.commit(merged, "merge from "+peer); err != nil {
		return Outcome{}, err
	}
	n.logger.Info("merged peer snapshot", "peer", peer, "phase", merged.Phase, "clock", merged.Clock)
	o := outcome(merged)
	o.Merged = true
	return o, nil
}

// commit persists s once it passes every invariant.
func (n *Node) commit(s *monopoly.GameState, message string) error {
	if err := monopoly.CheckInvariants(s); err != nil {
		n.logger.Error("snapshot rejected", "err", err)
		return &StepError{Replica: n.id, Snapshot: s, Err: err}
	}
	if _, err := n.store.Commit(n.id, s, message); err != nil {
		return fmt.Errorf("commit snapshot of %s: %w", n.id, err)
	}
	return nil
}

func outcome(s *monopoly.GameState) Outcome {
	if s.Terminated() {
		return Outcome{Status: Terminated, Winner: s.Winner}
	}
	return Outcome{Status: Continuing}
}

// IsFatal reports whether err leaves the replica unable to go on.
func IsFatal(err error) bool {
	var se *StepError
	return errors.As(err, &se)
}
