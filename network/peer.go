package network

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/ledger"
	"github.com/luca-patrignani/monopoly-replica/replica"
)

const (
	latestPath   = "/latest"
	maxBlockSize = 16 << 20
)

// Source provides the block a peer serves.
type Source interface {
	Latest(replica string) (ledger.Block, error)
}

// Peer serves the latest block of its replica over HTTP and fetches the
// latest blocks of the other replicas of the same game.
// Addresses[id] contains the address to reach the peer with that id.
type Peer struct {
	ID        string
	Game      string
	Addresses map[string]string
	server    *http.Server
	client    *http.Client
	tlsConfig *tls.Config
	timeout   time.Duration
	keys      map[string]string
	logger    *slog.Logger
}

type PeerOption func(Peer) Peer

// NewPeer starts serving the block of id from source on l.
func NewPeer(id, game string, addresses map[string]string, l net.Listener, source Source, opts ...PeerOption) Peer {
	p := Peer{
		ID:        id,
		Game:      game,
		Addresses: copyMap(addresses),
		client:    &http.Client{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		p = opt(p)
	}
	p.client.Timeout = p.timeout
	for i, addr := range p.Addresses {
		if !strings.Contains(addr, "://") {
			p.Addresses[i] = p.scheme() + addr
		}
	}
	mux := http.NewServeMux()
	mux.Handle("GET "+latestPath, &latestHandler{id: id, source: source, logger: p.logger})
	p.server = &http.Server{Handler: mux}
	if p.tlsConfig != nil && len(p.tlsConfig.Certificates) > 0 {
		l = tls.NewListener(l, p.tlsConfig)
	}
	go func() {
		err := p.server.Serve(l)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("peer stopped serving", "replica", id, "err", err)
		}
	}()
	return p
}

func (p Peer) scheme() string {
	if p.tlsConfig != nil {
		return "https://"
	}
	return "http://"
}

func (p Peer) Close() error {
	return p.server.Shutdown(context.Background())
}

// FetchPeerLatest downloads and verifies the latest block of peer. Every
// failure is reported as replica.ErrUnavailable.
func (p Peer) FetchPeerLatest(ctx context.Context, peer string) (*monopoly.GameState, error) {
	b, err := p.fetch(ctx, peer)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", replica.ErrUnavailable, peer, err)
	}
	return b.State, nil
}

func (p Peer) fetch(ctx context.Context, peer string) (ledger.Block, error) {
	addr, ok := p.Addresses[peer]
	if !ok {
		return ledger.Block{}, fmt.Errorf("no address")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+latestPath, nil)
	if err != nil {
		return ledger.Block{}, err
	}
	req.Header.Set("Replica", p.ID)
	resp, err := p.client.Do(req)
	if err != nil {
		return ledger.Block{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ledger.Block{}, fmt.Errorf("status code %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBlockSize))
	if err != nil {
		return ledger.Block{}, err
	}
	data, err := decompress(body)
	if err != nil {
		return ledger.Block{}, err
	}
	b, err := ledger.DecodeBlock(data)
	if err != nil {
		return ledger.Block{}, err
	}
	if b.Game != p.Game {
		return ledger.Block{}, fmt.Errorf("%w: %s", ledger.ErrForeignGame, b.Game)
	}
	if b.Replica != peer {
		return ledger.Block{}, fmt.Errorf("block of %s served for %s", b.Replica, peer)
	}
	if key, ok := p.keys[peer]; ok && key != b.PublicKey {
		return ledger.Block{}, fmt.Errorf("%w: unexpected key for %s", ledger.ErrBadSignature, peer)
	}
	return b, nil
}

var (
	blockEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil)
	})
	blockDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBlockSize))
	})
)

// decompress inflates a served block. Blocks larger than maxBlockSize once
// decompressed are rejected.
func decompress(body []byte) ([]byte, error) {
	dec, err := blockDecoder()
	if err != nil {
		return nil, err
	}
	data, err := dec.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return data, nil
}

type latestHandler struct {
	id     string
	source Source
	logger *slog.Logger
}

func (h *latestHandler) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	b, err := h.source.Latest(h.id)
	if err != nil {
		h.logger.Warn("no block to serve", "replica", h.id, "err", err)
		rw.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	data, err := ledger.EncodeBlock(b)
	if err != nil {
		h.logger.Error("could not encode block", "replica", h.id, "err", err)
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}
	enc, err := blockEncoder()
	if err != nil {
		h.logger.Error("no zstd encoder", "err", err)
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/zstd")
	rw.Header().Set("Clock", strconv.FormatUint(b.State.Clock, 10))
	rw.WriteHeader(http.StatusOK)
	if _, err := io.Copy(rw, bytes.NewReader(enc.EncodeAll(data, nil))); err != nil {
		h.logger.Debug("could not write block", "replica", h.id, "peer", req.Header.Get("Replica"), "err", err)
	}
}

// CreateListeners opens one localhost listener per id. On error the
// listeners opened so far are closed.
func CreateListeners(ids []string) (map[string]net.Listener, map[string]string, error) {
	listeners := make(map[string]net.Listener)
	addresses := make(map[string]string)
	closeAll := func() {
		for _, l := range listeners {
			l.Close()
		}
	}
	for _, id := range ids {
		if _, ok := listeners[id]; ok {
			closeAll()
			return nil, nil, fmt.Errorf("duplicate replica id %q", id)
		}
		l, err := net.Listen("tcp", "localhost:0")
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("listen for %s: %w", id, err)
		}
		listeners[id] = l
		addresses[id] = l.Addr().String()
	}
	return listeners, addresses, nil
}

func copyMap(original map[string]string) map[string]string {
	copied := make(map[string]string)
	for k, v := range original {
		copied[k] = v
	}
	return copied
}
