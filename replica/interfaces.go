package replica

import (
	"context"
	"errors"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/ledger"
)

// ErrUnavailable reports that a peer's snapshot could not be obtained. It is
// always recoverable.
var ErrUnavailable = errors.New("peer unavailable")

var ErrUnknownReplica = errors.New("unknown replica")

// Store defines the persistence a Node relies on. Implementations keep one
// signed chain of snapshots per replica.
type Store interface {
	// Register prepares the chain of replica. An existing chain is resumed
	// and must be signed by signer; otherwise a new chain is started with
	// genesis as its first block.
	Register(game, replica string, signer *ledger.Signer, genesis *monopoly.GameState) error

	// Commit appends state to the chain of replica and returns the new block.
	Commit(replica string, state *monopoly.GameState, message string) (ledger.Block, error)

	// Latest returns the last block committed by replica.
	Latest(replica string) (ledger.Block, error)
}

// Transport fetches the latest snapshot of a peer. Every failure is reported
// as ErrUnavailable.
type Transport interface {
	FetchPeerLatest(ctx context.Context, peer string) (*monopoly.GameState, error)
}

// Choice selects actions[Index] and, for bids, the amount.
type Choice struct {
	Index  int
	Amount int
}

// Chooser picks which legal action a player takes. actions is never empty.
type Chooser interface {
	Choose(ctx context.Context, player string, s *monopoly.GameState, actions []monopoly.Action) (Choice, error)
}

// LegalActions lists the actions player may take on s.
func LegalActions(player string, s *monopoly.GameState) []monopoly.Action {
	return monopoly.EnabledActions(player, s)
}
