package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/ledger"
	"github.com/luca-patrignani/monopoly-replica/replica"
)

func newStore(t *testing.T, game string, players ...string) (*replica.MemoryStore, *monopoly.GameState) {
	t.Helper()
	genesis, err := monopoly.NewGame(players, monopoly.DefaultStartingMoney)
	if err != nil {
		t.Fatal(err)
	}
	store := replica.NewMemoryStore()
	for _, p := range players {
		if err := store.Register(game, p, ledger.DeriveSigner([]byte(p)), genesis); err != nil {
			t.Fatal(err)
		}
	}
	return store, genesis
}

func listen(t *testing.T, ids []string) (map[string]net.Listener, map[string]string) {
	t.Helper()
	listeners, addresses, err := CreateListeners(ids)
	if err != nil {
		t.Fatal(err)
	}
	return listeners, addresses
}

func startPeers(ids []string, listeners map[string]net.Listener, addresses map[string]string, source Source, opts ...PeerOption) map[string]Peer {
	peers := make(map[string]Peer)
	for _, id := range ids {
		peers[id] = NewPeer(id, "g1", addresses, listeners[id], source, opts...)
	}
	return peers
}

func closePeers(peers map[string]Peer) {
	for _, p := range peers {
		p.Close()
	}
}

func TestFetchPeerLatest(t *testing.T) {
	ids := []string{"p0", "p1", "p2"}
	store, genesis := newStore(t, "g1", ids...)
	listeners, addresses := listen(t, ids)
	peers := startPeers(ids, listeners, addresses, store, WithTimeout(5*time.Second))
	defer closePeers(peers)

	fatal := make(chan error, len(ids))
	for _, id := range ids {
		go func() {
			for _, other := range ids {
				if other == id {
					continue
				}
				s, err := peers[id].FetchPeerLatest(context.Background(), other)
				if err != nil {
					fatal <- err
					return
				}
				if !monopoly.Equal(s, genesis) {
					fatal <- fmt.Errorf("%s got a different snapshot from %s", id, other)
					return
				}
			}
			fatal <- nil
		}()
	}
	for range ids {
		if err := <-fatal; err != nil {
			t.Fatal(err)
		}
	}
}

func TestFetchReportsUnavailable(t *testing.T) {
	store, _ := newStore(t, "g1", "p0")
	listeners, addresses := listen(t, []string{"p0", "p1", "p2"})
	p0 := NewPeer("p0", "g1", addresses, listeners["p0"], store)
	defer p0.Close()
	// p1 is not registered in the store, so it has nothing to serve.
	p1 := NewPeer("p1", "g1", addresses, listeners["p1"], store)
	defer p1.Close()
	// p2 never serves.
	listeners["p2"].Close()

	for _, peer := range []string{"p1", "p2", "p9"} {
		s, err := p0.FetchPeerLatest(context.Background(), peer)
		if !errors.Is(err, replica.ErrUnavailable) {
			t.Errorf("expected %s to be unavailable, got %v", peer, err)
		}
		if s != nil {
			t.Errorf("expected no snapshot from %s", peer)
		}
	}
}

func TestFetchRejectsForeignGame(t *testing.T) {
	store, _ := newStore(t, "g2", "p0", "p1")
	listeners, addresses := listen(t, []string{"p0", "p1"})
	peers := startPeers([]string{"p0", "p1"}, listeners, addresses, store)
	defer closePeers(peers)

	_, err := peers["p0"].FetchPeerLatest(context.Background(), "p1")
	if !errors.Is(err, replica.ErrUnavailable) || !errors.Is(err, ledger.ErrForeignGame) {
		t.Fatalf("expected a foreign game to be unavailable, got %v", err)
	}
}

func TestFetchRejectsUnexpectedKey(t *testing.T) {
	store, _ := newStore(t, "g1", "p0", "p1")
	listeners, addresses := listen(t, []string{"p0", "p1"})
	keys := map[string]string{"p1": ledger.DeriveSigner([]byte("someone else")).PublicKey()}
	peers := startPeers([]string{"p0", "p1"}, listeners, addresses, store, WithPeerKeys(keys))
	defer closePeers(peers)

	_, err := peers["p0"].FetchPeerLatest(context.Background(), "p1")
	if !errors.Is(err, ledger.ErrBadSignature) {
		t.Fatalf("expected the pinned key to be enforced, got %v", err)
	}
}

func TestFetchHonoursContext(t *testing.T) {
	store, _ := newStore(t, "g1", "p0", "p1")
	listeners, addresses := listen(t, []string{"p0", "p1"})
	peers := startPeers([]string{"p0", "p1"}, listeners, addresses, store)
	defer closePeers(peers)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := peers["p0"].FetchPeerLatest(ctx, "p1"); !errors.Is(err, replica.ErrUnavailable) {
		t.Fatalf("expected a cancelled fetch to fail, got %v", err)
	}
}

func TestFetchRejectsOversizedBlock(t *testing.T) {
	listeners, addresses := listen(t, []string{"p0", "p1"})
	defer listeners["p0"].Close()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	bomb := enc.EncodeAll(make([]byte, maxBlockSize+1), nil)
	if len(bomb) >= maxBlockSize {
		t.Fatalf("compressed payload is %d bytes", len(bomb))
	}
	server := &http.Server{Handler: http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Write(bomb)
	})}
	go server.Serve(listeners["p1"])
	defer server.Close()

	p0 := Peer{ID: "p0", Game: "g1", Addresses: map[string]string{"p1": "http://" + addresses["p1"]}, client: &http.Client{Timeout: 5 * time.Second}}
	if _, err := p0.FetchPeerLatest(context.Background(), "p1"); !errors.Is(err, replica.ErrUnavailable) {
		t.Fatalf("expected an oversized block to be refused, got %v", err)
	}
	if _, err := decompress(bomb); err == nil {
		t.Fatal("expected decompress to enforce the size limit")
	}
}

func TestCreateListeners(t *testing.T) {
	listeners, addresses, err := CreateListeners([]string{"p0", "p1"})
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"p0", "p1"} {
		if listeners[id].Addr().String() != addresses[id] {
			t.Errorf("address of %s is %s", id, addresses[id])
		}
		listeners[id].Close()
	}
	if _, _, err := CreateListeners([]string{"p0", "p0"}); err == nil {
		t.Fatal("expected duplicate ids to be refused")
	}
}

// TestNodesOverHTTP verifies that an idle node catches up with the active
// one by fetching its snapshot through a Peer.
func TestNodesOverHTTP(t *testing.T) {
	ids := []string{"p0", "p1"}
	store, _ := newStore(t, "g1", ids...)
	listeners, addresses := listen(t, ids)
	peers := startPeers(ids, listeners, addresses, store, WithTimeout(5*time.Second))
	defer closePeers(peers)

	n0 := replica.NewNode("p0", []string{"p1"}, store, peers["p0"], replica.RandomChooser{})
	n1 := replica.NewNode("p1", []string{"p0"}, store, peers["p1"], replica.RandomChooser{})

	out, err := n0.AdvanceOneStep(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.Merged {
		t.Fatal("the active player should act")
	}
	out, err = n1.AdvanceOneStep(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !out.Merged {
		t.Fatalf("expected p1 to merge, got %+v", out)
	}
	b0, _ := store.Latest("p0")
	b1, _ := store.Latest("p1")
	if !monopoly.Equal(b0.State, b1.State) {
		t.Fatal("replicas did not converge")
	}
}
