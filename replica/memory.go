package replica

import (
	"fmt"
	"sort"
	"sync"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/ledger"
)

// MemoryStore keeps every replica's blockchain in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	chains map[string]*ledger.Blockchain
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chains: make(map[string]*ledger.Blockchain)}
}

func (m *MemoryStore) Register(game, replica string, signer *ledger.Signer, genesis *monopoly.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bc, ok := m.chains[replica]; ok {
		if bc.Game() != game {
			return fmt.Errorf("%w: %s plays %s", ledger.ErrForeignGame, replica, bc.Game())
		}
		latest, _ := bc.Latest()
		if latest.PublicKey != signer.PublicKey() {
			return fmt.Errorf("%w: %s is registered with another key", ledger.ErrBadSignature, replica)
		}
		return nil
	}
	bc, err := ledger.NewBlockchain(game, replica, signer, genesis, "genesis")
	if err != nil {
		return fmt.Errorf("register %s: %w", replica, err)
	}
	m.chains[replica] = bc
	return nil
}

func (m *MemoryStore) Commit(replica string, state *monopoly.GameState, message string) (ledger.Block, error) {
	bc, err := m.Chain(replica)
	if err != nil {
		return ledger.Block{}, err
	}
	return bc.Append(state, message)
}

func (m *MemoryStore) Latest(replica string) (ledger.Block, error) {
	bc, err := m.Chain(replica)
	if err != nil {
		return ledger.Block{}, err
	}
	return bc.Latest()
}

// Chain returns the blockchain of replica.
func (m *MemoryStore) Chain(replica string) (*ledger.Blockchain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bc, ok := m.chains[replica]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReplica, replica)
	}
	return bc, nil
}

// Replicas lists the registered replicas in order.
func (m *MemoryStore) Replicas() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.chains))
	for id := range m.chains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
