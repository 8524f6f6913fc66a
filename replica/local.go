package replica

import (
	"context"
	"fmt"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
)

// LocalTransport reads peers' snapshots straight from a Store shared by every
// replica of the process.
type LocalTransport struct {
	Store Store
}

func (t LocalTransport) FetchPeerLatest(ctx context.Context, peer string) (*monopoly.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	b, err := t.Store.Latest(peer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return b.State.Clone(), nil
}

// RandomChooser picks an action uniformly at random. The randomness is derived
// from the snapshot and the player, so a replay makes the same choices.
type RandomChooser struct{}

func (RandomChooser) Choose(_ context.Context, player string, _ *monopoly.GameState, actions []monopoly.Action) (Choice, error) {
	r := monopoly.SeededRand(actions[0].Basis(), "choose/"+player)
	c := Choice{Index: r.IntN(len(actions))}
	if bid := actions[c.Index].Bid; bid != nil {
		c.Amount = bid.Min + r.IntN(bid.Max-bid.Min+1)
	}
	return c, nil
}
