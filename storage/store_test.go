package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/ledger"
	"github.com/luca-patrignani/monopoly-replica/replica"
)

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func genesis(t *testing.T) *monopoly.GameState {
	t.Helper()
	g, err := monopoly.NewGame([]string{"p0", "p1"}, monopoly.DefaultStartingMoney)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestCommitWritesBlocksAndIndex(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	signer := ledger.DeriveSigner([]byte("p0"))
	if err := s.Register("g1", "p0", signer, genesis(t)); err != nil {
		t.Fatal(err)
	}
	next := genesis(t)
	next.Phase = monopoly.PhaseRoll
	next.Clock = 1
	b, err := s.Commit("p0", next, "p0 ends pre-roll")
	if err != nil {
		t.Fatal(err)
	}
	if b.Index != 1 {
		t.Fatalf("expected index 1, got %d", b.Index)
	}
	for _, idx := range []int{0, 1} {
		if _, err := os.Stat(blockPath(dir, "p0", idx)); err != nil {
			t.Fatalf("block %d not written: %v", idx, err)
		}
	}

	commits, err := s.Commits("p0")
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	c := commits[1]
	if c.Hash != b.Hash || c.PrevHash != commits[0].Hash || c.Phase != "roll" || c.Clock != 1 || c.Message != "p0 ends pre-roll" {
		t.Fatalf("unexpected commit row %+v", c)
	}
	if c.Path != filepath.Join("p0", "blocks", "00000001.yml.zst") {
		t.Fatalf("unexpected path %s", c.Path)
	}

	// The index is a plain sqlite database.
	db, err := sql.Open("sqlite", filepath.Join(dir, indexFile))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var game string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'game'`).Scan(&game); err != nil {
		t.Fatal(err)
	}
	if game != "g1" {
		t.Fatalf("expected game g1, got %s", game)
	}
}

func TestReopenResumesChain(t *testing.T) {
	dir := t.TempDir()
	signer := ledger.DeriveSigner([]byte("p0"))

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Register("g1", "p0", signer, genesis(t)); err != nil {
		t.Fatal(err)
	}
	next := genesis(t)
	next.Clock = 1
	committed, err := s.Commit("p0", next, "commit")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s = openStore(t, dir)
	if err := s.Register("g1", "p0", signer, genesis(t)); err != nil {
		t.Fatal(err)
	}
	latest, err := s.Latest("p0")
	if err != nil {
		t.Fatal(err)
	}
	if latest.Hash != committed.Hash || !monopoly.Equal(latest.State, next) {
		t.Fatal("reopened store lost the last commit")
	}
	next.Clock = 2
	if b, err := s.Commit("p0", next, "after reopen"); err != nil || b.Index != 2 {
		t.Fatalf("commit after reopen: %v", err)
	}

	if err := s.Register("g2", "p1", signer, genesis(t)); !errors.Is(err, ledger.ErrForeignGame) {
		t.Fatalf("expected foreign game, got %v", err)
	}
	if err := s.Register("g1", "p0", ledger.DeriveSigner([]byte("x")), genesis(t)); !errors.Is(err, ledger.ErrBadSignature) {
		t.Fatalf("expected bad signature, got %v", err)
	}
}

func TestCorruptBlockIsRejected(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	if err := s.Register("g1", "p0", ledger.DeriveSigner([]byte("p0")), genesis(t)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(blockPath(dir, "p0", 0), []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("p0"); err == nil {
		t.Fatal("corrupt chain loaded")
	}
}

func TestLatestOfUnknownReplica(t *testing.T) {
	s := openStore(t, t.TempDir())
	if _, err := s.Latest("p9"); !errors.Is(err, replica.ErrUnknownReplica) {
		t.Fatalf("expected unknown replica, got %v", err)
	}
	if _, err := s.Commit("p9", genesis(t), "x"); !errors.Is(err, replica.ErrUnknownReplica) {
		t.Fatalf("expected unknown replica, got %v", err)
	}
}

// TestSimulationOnDisk runs a short simulation against the disk store and
// reloads every chain from the block files.
func TestSimulationOnDisk(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	sim, err := replica.NewSimulation("g1", []string{"p0", "p1"}, monopoly.DefaultStartingMoney, s, replica.WithMaxSteps(60))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	ids, err := s.Replicas()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 replicas, got %v", ids)
	}
	for _, id := range ids {
		bc, err := s.Load(id)
		if err != nil {
			t.Fatal(err)
		}
		commits, err := s.Commits(id)
		if err != nil {
			t.Fatal(err)
		}
		if len(commits) != bc.Len() {
			t.Fatalf("%s: %d commits indexed for %d blocks", id, len(commits), bc.Len())
		}
	}
}

// TestFailedWriteIsNotCommitted verifies that a block that could not be
// written is neither served nor breaks the chain on disk.
func TestFailedWriteIsNotCommitted(t *testing.T) {
	dir := t.TempDir()
	signer := ledger.DeriveSigner([]byte("p0"))
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Register("g1", "p0", signer, genesis(t)); err != nil {
		t.Fatal(err)
	}
	// a directory in place of the temporary file makes the write fail
	blocked := blockPath(dir, "p0", 1) + ".tmp"
	if err := os.MkdirAll(blocked, 0o755); err != nil {
		t.Fatal(err)
	}
	next := genesis(t)
	next.Phase = monopoly.PhaseRoll
	next.Clock = 1
	if _, err := s.Commit("p0", next, "lost"); err == nil {
		t.Fatal("expected the commit to fail")
	}
	latest, err := s.Latest("p0")
	if err != nil {
		t.Fatal(err)
	}
	if latest.Index != 0 || latest.State.Phase != monopoly.PhasePreRoll {
		t.Fatalf("unwritten block is visible: index %d phase %s", latest.Index, latest.State.Phase)
	}

	if err := os.Remove(blocked); err != nil {
		t.Fatal(err)
	}
	b, err := s.Commit("p0", next, "retried")
	if err != nil {
		t.Fatal(err)
	}
	if b.Index != 1 {
		t.Fatalf("expected the retry to be block 1, got %d", b.Index)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s = openStore(t, dir)
	if err := s.Register("g1", "p0", signer, genesis(t)); err != nil {
		t.Fatalf("reopen after a failed write: %v", err)
	}
	latest, err = s.Latest("p0")
	if err != nil {
		t.Fatal(err)
	}
	if latest.Hash != b.Hash {
		t.Fatal("reopened chain does not end with the retried block")
	}
}
