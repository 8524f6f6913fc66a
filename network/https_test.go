package network

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/replica"
)

func createHttpsListeners(ids []string) (map[string]net.Listener, map[string]string, map[string]tls.Certificate, *x509.CertPool, error) {
	listeners, addresses, err := CreateListeners(ids)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	certs := make(map[string]tls.Certificate)
	certPool := x509.NewCertPool()
	for _, id := range ids {
		cert, err := GenerateSelfSignedCert(addresses[id])
		if err != nil {
			return nil, nil, nil, nil, err
		}
		certs[id] = cert.TLS
		certPool.AppendCertsFromPEM(cert.CertPEM)
	}
	return listeners, addresses, certs, certPool, nil
}

func TestHttpsFetchPeerLatest(t *testing.T) {
	ids := []string{"p0", "p1", "p2"}
	store, genesis := newStore(t, "g1", ids...)
	listeners, addresses, certs, certPool, err := createHttpsListeners(ids)
	if err != nil {
		t.Fatal(err)
	}
	peers := make(map[string]Peer)
	for _, id := range ids {
		peers[id] = NewPeer(id, "g1", addresses, listeners[id], store,
			WithCertificate(certs[id]), WithLimitedCAs(certPool), WithTimeout(5*time.Second))
	}
	defer closePeers(peers)

	fatal := make(chan error, len(ids))
	for _, id := range ids {
		go func() {
			for _, other := range ids {
				if other == id {
					continue
				}
				s, err := peers[id].FetchPeerLatest(context.Background(), other)
				if err == nil && !monopoly.Equal(s, genesis) {
					err = errors.New("snapshot differs from genesis")
				}
				if err != nil {
					fatal <- err
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

func TestHttpsRejectsUnknownClient(t *testing.T) {
	ids := []string{"p0", "p1"}
	store, _ := newStore(t, "g1", ids...)
	listeners, addresses, certs, certPool, err := createHttpsListeners(ids)
	if err != nil {
		t.Fatal(err)
	}
	p0 := NewPeer("p0", "g1", addresses, listeners["p0"], store,
		WithCertificate(certs["p0"]), WithLimitedCAs(certPool))
	defer p0.Close()

	stranger, err := GenerateSelfSignedCert("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	p1 := NewPeer("p1", "g1", addresses, listeners["p1"], store,
		WithCertificate(stranger.TLS), WithLimitedCAs(certPool))
	defer p1.Close()

	if _, err := p1.FetchPeerLatest(context.Background(), "p0"); !errors.Is(err, replica.ErrUnavailable) {
		t.Fatalf("expected an untrusted client to be refused, got %v", err)
	}
}

func TestGenerateSelfSignedCert(t *testing.T) {
	cert, err := GenerateSelfSignedCert("127.0.0.1:7000", "replica.local")
	if err != nil {
		t.Fatal(err)
	}
	pair, err := tls.X509KeyPair(cert.CertPEM, cert.KeyPEM)
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}
	if err := leaf.VerifyHostname("127.0.0.1"); err != nil {
		t.Error(err)
	}
	if err := leaf.VerifyHostname("replica.local"); err != nil {
		t.Error(err)
	}
	if _, err := GenerateSelfSignedCert(); err == nil {
		t.Error("expected an error without hosts")
	}
}
