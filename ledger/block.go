package ledger

import (
	"fmt"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"gopkg.in/yaml.v3"
)

// Block is one snapshot committed by a replica.
type Block struct {
	Index     int                 `yaml:"index"`
	Timestamp int64               `yaml:"timestamp"`
	PrevHash  string              `yaml:"prev_hash"`
	Hash      string              `yaml:"hash"`
	Game      string              `yaml:"game"`
	Replica   string              `yaml:"replica"`
	Message   string              `yaml:"message"`
	State     *monopoly.GameState `yaml:"state"`
	PublicKey string              `yaml:"public_key"`
	Signature string              `yaml:"signature"`
}

// Verify checks the block on its own: the hash must cover its content and
// the signature must match the embedded public key.
func (b Block) Verify() error {
	if b.State == nil {
		return fmt.Errorf("block %d has no state", b.Index)
	}
	if expected := calculateHash(b); b.Hash != expected {
		return fmt.Errorf("invalid hash: expected %s, got %s", expected, b.Hash)
	}
	if err := VerifySignature(b.PublicKey, []byte(b.Hash), b.Signature); err != nil {
		return fmt.Errorf("block %d: %w", b.Index, err)
	}
	return nil
}

func EncodeBlock(b Block) ([]byte, error) {
	out, err := yaml.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode block: %w", err)
	}
	return out, nil
}

// DecodeBlock parses a block and verifies it.
func DecodeBlock(data []byte) (Block, error) {
	var b Block
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Block{}, fmt.Errorf("decode block: %w", err)
	}
	if err := b.Verify(); err != nil {
		return Block{}, fmt.Errorf("decode block: %w", err)
	}
	return b, nil
}
