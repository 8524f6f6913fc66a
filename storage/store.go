package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/ledger"
	"github.com/luca-patrignani/monopoly-replica/replica"
)

const indexFile = "index.db"

var _ replica.Store = (*Store)(nil)

// Store keeps replica chains on disk. It implements replica.Store.
type Store struct {
	dir    string
	index  *index
	logger *slog.Logger

	mu     sync.RWMutex
	chains map[string]*ledger.Blockchain
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens the store rooted at dir, creating it when needed.
func Open(dir string, opts ...Option) (*Store, error) {
	ix, err := openIndex(filepath.Join(dir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	s := &Store{
		dir:    dir,
		index:  ix,
		logger: slog.Default(),
		chains: make(map[string]*ledger.Blockchain),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.index.close()
}

func (s *Store) Dir() string {
	return s.dir
}

// Game returns the id of the game recorded in the store, if any.
func (s *Store) Game() (string, bool, error) {
	return s.index.meta("game")
}

// Register resumes the chain of id from its block files or starts it with
// genesis. A store holds a single game.
func (s *Store) Register(game, id string, signer *ledger.Signer, genesis *monopoly.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recorded, ok, err := s.index.meta("game")
	if err != nil {
		return err
	}
	if ok && recorded != game {
		return fmt.Errorf("%w: store holds game %s, not %s", ledger.ErrForeignGame, recorded, game)
	}
	if !ok {
		if err := s.index.setMeta("game", game); err != nil {
			return err
		}
	}

	blocks, err := readBlocks(s.dir, id)
	if err != nil {
		return fmt.Errorf("load chain of %s: %w", id, err)
	}
	if len(blocks) > 0 {
		bc, err := ledger.Restore(blocks, signer)
		if err != nil {
			return fmt.Errorf("restore chain of %s: %w", id, err)
		}
		if bc.Game() != game || bc.Replica() != id {
			return fmt.Errorf("%w: chain of %s/%s found for %s/%s", ledger.ErrForeignGame, bc.Game(), bc.Replica(), game, id)
		}
		s.chains[id] = bc
		s.logger.Info("resumed chain", "replica", id, "blocks", bc.Len())
		return nil
	}

	bc, err := ledger.NewBlockchain(game, id, signer, genesis, "genesis")
	if err != nil {
		return err
	}
	first, _ := bc.Latest()
	if err := s.persist(first); err != nil {
		return err
	}
	s.chains[id] = bc
	return nil
}

func (s *Store) Commit(id string, state *monopoly.GameState, message string) (ledger.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bc, ok := s.chains[id]
	if !ok {
		return ledger.Block{}, fmt.Errorf("%w: %s", replica.ErrUnknownReplica, id)
	}
	// the chain only moves on once the block is on disk
	b, err := bc.Next(state, message)
	if err != nil {
		return ledger.Block{}, err
	}
	if err := s.persist(b); err != nil {
		return ledger.Block{}, fmt.Errorf("persist block %d of %s: %w", b.Index, id, err)
	}
	if err := bc.Add(b); err != nil {
		return ledger.Block{}, err
	}
	return b, nil
}

func (s *Store) persist(b ledger.Block) error {
	path := blockPath(s.dir, b.Replica, b.Index)
	if err := writeBlock(path, b); err != nil {
		return err
	}
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		rel = path
	}
	return s.index.record(b, rel)
}

// Latest returns the last block of id. Replicas that were not registered
// are read from disk.
func (s *Store) Latest(id string) (ledger.Block, error) {
	s.mu.RLock()
	bc, ok := s.chains[id]
	s.mu.RUnlock()
	if ok {
		return bc.Latest()
	}
	bc, err := s.Load(id)
	if err != nil {
		return ledger.Block{}, err
	}
	return bc.Latest()
}

// Load reads and verifies the chain of id without taking ownership of it.
func (s *Store) Load(id string) (*ledger.Blockchain, error) {
	blocks, err := readBlocks(s.dir, id)
	if err != nil {
		return nil, fmt.Errorf("load chain of %s: %w", id, err)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: %s", replica.ErrUnknownReplica, id)
	}
	return ledger.Restore(blocks, nil)
}

// Replicas lists the replicas with at least one commit.
func (s *Store) Replicas() ([]string, error) {
	return s.index.replicas()
}

// Commits lists the indexed commits of id in order.
func (s *Store) Commits(id string) ([]Commit, error) {
	return s.index.commits(id)
}
