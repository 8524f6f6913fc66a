package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
)

var (
	ErrEmpty       = errors.New("blockchain is empty")
	ErrForeignGame = errors.New("block belongs to another game")
	ErrReadOnly    = errors.New("blockchain has no signer")
)

type Blockchain struct {
	mu      sync.RWMutex
	game    string
	replica string
	signer  *Signer
	blocks  []Block
	now     func() time.Time
}

// NewBlockchain creates a blockchain whose genesis block holds the initial
// snapshot. The genesis block has index 0 and previous hash "0".
func NewBlockchain(game, replica string, signer *Signer, genesis *monopoly.GameState, message string) (*Blockchain, error) {
	if signer == nil {
		return nil, ErrReadOnly
	}
	bc := &Blockchain{game: game, replica: replica, signer: signer, now: time.Now}
	block := Block{
		Index:     0,
		Timestamp: bc.now().Unix(),
		PrevHash:  "0",
		Game:      game,
		Replica:   replica,
		Message:   message,
		State:     genesis.Clone(),
	}
	if err := bc.seal(&block); err != nil {
		return nil, err
	}
	bc.blocks = append(bc.blocks, block)
	return bc, nil
}

// Restore rebuilds a blockchain from stored blocks and verifies it. With a nil
// signer the result is read only; otherwise the signer must own the chain.
func Restore(blocks []Block, signer *Signer) (*Blockchain, error) {
	if len(blocks) == 0 {
		return nil, ErrEmpty
	}
	first := blocks[0]
	bc := &Blockchain{
		game:    first.Game,
		replica: first.Replica,
		signer:  signer,
		blocks:  append([]Block(nil), blocks...),
		now:     time.Now,
	}
	if err := bc.Verify(); err != nil {
		return nil, err
	}
	if signer != nil && signer.PublicKey() != first.PublicKey {
		return nil, fmt.Errorf("%w: chain of %s is signed with another key", ErrBadSignature, first.Replica)
	}
	return bc, nil
}

// Append commits a snapshot with its message and returns the new block.
func (bc *Blockchain) Append(state *monopoly.GameState, message string) (Block, error) {
	block, err := bc.Next(state, message)
	if err != nil {
		return Block{}, err
	}
	if err := bc.Add(block); err != nil {
		return Block{}, err
	}
	return block, nil
}

// Next seals the block that would follow the latest one without adding it
// to the chain, so it can be stored elsewhere first.
func (bc *Blockchain) Next(state *monopoly.GameState, message string) (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if bc.signer == nil {
		return Block{}, ErrReadOnly
	}
	latest := bc.blocks[len(bc.blocks)-1]
	block := Block{
		Index:     latest.Index + 1,
		Timestamp: bc.now().Unix(),
		PrevHash:  latest.Hash,
		Game:      bc.game,
		Replica:   bc.replica,
		Message:   message,
		State:     state.Clone(),
	}
	if err := bc.seal(&block); err != nil {
		return Block{}, err
	}
	return block, nil
}

// Add appends a block sealed by Next. It fails if the chain moved on since.
func (bc *Blockchain) Add(block Block) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.signer == nil {
		return ErrReadOnly
	}
	if err := bc.validateBlock(block, bc.blocks[len(bc.blocks)-1]); err != nil {
		return fmt.Errorf("invalid block: %w", err)
	}
	bc.blocks = append(bc.blocks, block)
	return nil
}

func (bc *Blockchain) seal(b *Block) error {
	b.PublicKey = bc.signer.PublicKey()
	b.Hash = calculateHash(*b)
	sig, err := bc.signer.Sign([]byte(b.Hash))
	if err != nil {
		return err
	}
	b.Signature = sig
	return nil
}

func (bc *Blockchain) Game() string {
	return bc.game
}

func (bc *Blockchain) Replica() string {
	return bc.replica
}

// Latest returns the most recently added block.
func (bc *Blockchain) Latest() (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if len(bc.blocks) == 0 {
		return Block{}, ErrEmpty
	}
	return bc.blocks[len(bc.blocks)-1], nil
}

// GetByIndex retrieves a block by its index in the chain.
func (bc *Blockchain) GetByIndex(index int) (*Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if index < 0 || index >= len(bc.blocks) {
		return nil, fmt.Errorf("index %d out of range", index)
	}
	b := bc.blocks[index]
	return &b, nil
}

func (bc *Blockchain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// Blocks returns a copy of every block, genesis first.
func (bc *Blockchain) Blocks() []Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return append([]Block(nil), bc.blocks...)
}

// Verify validates the integrity of the entire chain: the genesis block, the
// hash links and every signature.
func (bc *Blockchain) Verify() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if len(bc.blocks) == 0 {
		return ErrEmpty
	}
	genesis := bc.blocks[0]
	if genesis.Index != 0 || genesis.PrevHash != "0" {
		return fmt.Errorf("invalid genesis block")
	}
	if err := genesis.Verify(); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	for i := 1; i < len(bc.blocks); i++ {
		if err := bc.validateBlock(bc.blocks[i], bc.blocks[i-1]); err != nil {
			return fmt.Errorf("block %d invalid: %w", i, err)
		}
	}
	return nil
}

// validateBlock verifies a block against the previous one.
func (bc *Blockchain) validateBlock(current, previous Block) error {
	if current.Index != previous.Index+1 {
		return fmt.Errorf("invalid index: expected %d, got %d", previous.Index+1, current.Index)
	}
	if current.PrevHash != previous.Hash {
		return fmt.Errorf("invalid prev hash: expected %s, got %s", previous.Hash, current.PrevHash)
	}
	if current.Game != bc.game || current.Replica != bc.replica {
		return fmt.Errorf("%w: %s/%s in chain %s/%s", ErrForeignGame, current.Game, current.Replica, bc.game, bc.replica)
	}
	if current.PublicKey != previous.PublicKey {
		return fmt.Errorf("%w: signer changed", ErrBadSignature)
	}
	return current.Verify()
}

// calculateHash computes the sha256 of the block header and the digest of
// its snapshot.
func calculateHash(b Block) string {
	digest := ""
	if b.State != nil {
		digest = b.State.Digest()
	}
	data := fmt.Sprintf("%d%d%s%s%s%s%s%s",
		b.Index,
		b.Timestamp,
		b.PrevHash,
		b.Game,
		b.Replica,
		b.Message,
		digest,
		b.PublicKey,
	)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
