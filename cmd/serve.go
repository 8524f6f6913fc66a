package main

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"github.com/luca-patrignani/monopoly-replica/discovery"
	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/ledger"
	"github.com/luca-patrignani/monopoly-replica/network"
	"github.com/luca-patrignani/monopoly-replica/replica"
)

func runServe(ctx context.Context, cfg *Config) error {
	logger := slog.Default().With("replica", cfg.id)
	if cfg.interactive {
		printBanner()
	}
	if cfg.game == "" {
		cfg.game = uuid.NewString()
		pterm.Info.Printfln("Started game %s, pass --game %s to the other replicas", cfg.game, cfg.game)
	}

	l, err := net.Listen("tcp", cfg.listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.listen, err)
	}
	pterm.Info.Printfln("Replica %s listening on %s", cfg.id, l.Addr().String())

	store, closeStore, err := openStore(cfg, cfg.game)
	if err != nil {
		l.Close()
		return err
	}
	defer closeStore()

	signer, err := loadSigner(cfg.dataDir, cfg.game, cfg.id)
	if err != nil {
		l.Close()
		return err
	}
	genesis, err := monopoly.NewGame(cfg.players, cfg.startingMoney)
	if err != nil {
		l.Close()
		return err
	}
	if err := store.Register(cfg.game, cfg.id, signer, genesis); err != nil {
		l.Close()
		return err
	}

	addresses, keys, err := peerAddresses(ctx, cfg, l, signer, logger)
	if err != nil {
		l.Close()
		return err
	}
	opts := []network.PeerOption{
		network.WithTimeout(5 * time.Second),
		network.WithPeerKeys(keys),
		network.WithLogger(logger),
	}
	tlsOpts, err := tlsOptions(cfg)
	if err != nil {
		l.Close()
		return err
	}
	opts = append(opts, tlsOpts...)
	peer := network.NewPeer(cfg.id, cfg.game, addresses, l, store, opts...)
	defer peer.Close()

	var chooser replica.Chooser = replica.RandomChooser{}
	if cfg.interactive {
		chooser = interactiveChooser{}
	}
	peers := make([]string, 0, len(addresses))
	for id := range addresses {
		peers = append(peers, id)
	}
	sort.Strings(peers)
	node := replica.NewNode(cfg.id, peers, store, peer, chooser, replica.WithLogger(logger))
	return play(ctx, cfg, node, store, logger)
}

// play advances the replica until the game is over, then keeps serving the
// final snapshot so late peers can still learn the winner.
func play(ctx context.Context, cfg *Config, node *replica.Node, store replica.Store, logger *slog.Logger) error {
	for steps := 0; steps < cfg.maxSteps; steps++ {
		out, err := node.AdvanceOneStep(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var stepErr *replica.StepError
			if errors.As(err, &stepErr) {
				printState(stepErr.Snapshot, cfg.id)
			}
			return err
		}
		if out.Status == replica.Terminated {
			b, err := store.Latest(cfg.id)
			if err != nil {
				return err
			}
			printState(b.State, cfg.id)
			pterm.Success.Printfln("%s won, serving the final snapshot until interrupted", out.Winner)
			<-ctx.Done()
			return nil
		}
		if out.Merged && cfg.interactive {
			b, err := store.Latest(cfg.id)
			if err == nil {
				printState(b.State, cfg.id)
			}
		}
		if !out.Merged && out.Action == "" {
			select {
			case <-time.After(cfg.backoff):
			case <-ctx.Done():
				return nil
			}
		}
	}
	return fmt.Errorf("no winner after %d steps", cfg.maxSteps)
}

// peerAddresses collects the peers given on the command line and, when a
// port range is configured, the ones found by discovery.
func peerAddresses(ctx context.Context, cfg *Config, l net.Listener, signer *ledger.Signer, logger *slog.Logger) (map[string]string, map[string]string, error) {
	given, err := parsePeers(cfg.peers)
	if err != nil {
		return nil, nil, err
	}
	local := l.Addr().(*net.TCPAddr)
	subnet, subnetErr := subnetOfListener(l.(*net.TCPListener))
	addresses := make(map[string]string)
	for id, addr := range given {
		if cfg.playerIndex(id) < 0 || id == cfg.id {
			return nil, nil, fmt.Errorf("peer %q is not another player of %v", id, cfg.players)
		}
		resolved, err := resolvePeer(local, addr)
		if err != nil {
			return nil, nil, fmt.Errorf("peer %s: %w", id, err)
		}
		host, _, _ := net.SplitHostPort(resolved)
		if ip := net.ParseIP(host); subnetErr == nil && ip != nil && !subnet.Contains(ip) {
			logger.Warn("peer is outside the local subnet", "peer", id, "address", resolved, "subnet", subnet.String())
		}
		addresses[id] = resolved
	}
	keys := make(map[string]string)
	if cfg.discoverPorts == "" {
		return addresses, keys, nil
	}

	start, end, err := parsePortRange(cfg.discoverPorts)
	if err != nil {
		return nil, nil, err
	}
	self := discovery.Entry{Game: cfg.game, Replica: cfg.id, Address: l.Addr().String(), PublicKey: signer.PublicKey()}
	d, err := discovery.NewWithOptions(self, discovery.WithPortRange(start, end), discovery.WithAttempts(60))
	if err != nil {
		return nil, nil, fmt.Errorf("discovery: %w", err)
	}
	defer d.Close()
	missing := len(cfg.players) - 1 - len(addresses)
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Looking for %d more replicas ...", missing))
	found, err := d.Collect(ctx, missing)
	if err != nil {
		spinner.Fail()
		return nil, nil, err
	}
	spinner.Success()
	for id, e := range found {
		if cfg.playerIndex(id) < 0 {
			logger.Warn("ignoring replica of an unknown player", "peer", id, "address", e.Address)
			continue
		}
		if _, ok := addresses[id]; !ok {
			addresses[id] = e.Address
		}
		if e.PublicKey != "" {
			keys[id] = e.PublicKey
		}
	}
	return addresses, keys, nil
}

func tlsOptions(cfg *Config) ([]network.PeerOption, error) {
	if cfg.tlsCert == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(cfg.tlsCert, cfg.tlsKey)
	if err != nil {
		return nil, fmt.Errorf("load tls key pair: %w", err)
	}
	opts := []network.PeerOption{network.WithCertificate(cert)}
	if cfg.tlsCA != "" {
		pem, err := os.ReadFile(cfg.tlsCA)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificate found in %s", cfg.tlsCA)
		}
		opts = append(opts, network.WithLimitedCAs(pool))
	}
	return opts, nil
}

// loadSigner returns the key of the replica. With a data directory the key
// seed is kept next to the ledgers so a restarted replica can resume.
func loadSigner(dataDir, game, id string) (*ledger.Signer, error) {
	if dataDir == "" {
		return ledger.NewSigner(), nil
	}
	path := filepath.Join(dataDir, game, id+".key")
	seed, err := os.ReadFile(path)
	if err == nil {
		return ledger.DeriveSigner(seed), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	seed = make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, seed, 0o600); err != nil {
		return nil, err
	}
	return ledger.DeriveSigner(seed), nil
}
