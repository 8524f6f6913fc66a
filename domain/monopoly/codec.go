package monopoly

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
)

// Encode renders the snapshot as YAML. The encoding is canonical: map keys
// are sorted, so equal snapshots always encode to the same bytes.
func Encode(s *GameState) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func Decode(b []byte) (*GameState, error) {
	var s GameState
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(s.Order) == 0 || len(s.Board) == 0 || s.Players == nil {
		return nil, fmt.Errorf("decode snapshot: missing order, players or board")
	}
	for _, id := range s.Order {
		if s.Players[id] == nil {
			return nil, fmt.Errorf("decode snapshot: no state for player %q", id)
		}
	}
	return &s, nil
}

// Digest is the hex sha256 of the canonical encoding.
func (s *GameState) Digest() string {
	b, err := Encode(s)
	if err != nil {
		panic(err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Equal compares two snapshots by content.
func Equal(a, b *GameState) bool {
	return a.Digest() == b.Digest()
}

// rng returns a generator seeded from the snapshot content and salt, so the
// same snapshot always rolls the same dice on every replica. Inside an effect
// the seed is the snapshot the action was enumerated on.
func (s *GameState) rng(salt string) *rand.Rand {
	if s.seed != "" {
		return SeededRand(s.seed, salt)
	}
	return SeededRand(s.Digest(), salt)
}

// SeededRand derives a deterministic generator from a digest and a salt.
func SeededRand(digest, salt string) *rand.Rand {
	sum := sha256.Sum256([]byte(digest + "/" + salt))
	return rand.New(rand.NewPCG(
		binary.BigEndian.Uint64(sum[:8]),
		binary.BigEndian.Uint64(sum[8:16]),
	))
}

func rollDice(r *rand.Rand) (int, int) {
	return r.IntN(6) + 1, r.IntN(6) + 1
}
