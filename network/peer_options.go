package network

import (
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"net/http"
	"time"
)

func WithTimeout(timeout time.Duration) PeerOption {
	return func(p Peer) Peer {
		p.timeout = timeout
		return p
	}
}

// WithCertificate serves over TLS with cert and presents it to other peers.
func WithCertificate(cert tls.Certificate) PeerOption {
	return func(p Peer) Peer {
		if p.tlsConfig == nil {
			p.tlsConfig = &tls.Config{}
		}
		p.tlsConfig.Certificates = append(p.tlsConfig.Certificates, cert)
		p.client.Transport = &http.Transport{
			TLSClientConfig: p.tlsConfig,
		}
		return p
	}
}

// WithLimitedCAs only trusts, and only accepts clients with, certificates
// from certPool.
func WithLimitedCAs(certPool *x509.CertPool) PeerOption {
	return func(p Peer) Peer {
		if p.tlsConfig == nil {
			p.tlsConfig = &tls.Config{}
		}
		p.tlsConfig.RootCAs = certPool
		p.tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		p.tlsConfig.ClientCAs = certPool
		p.client.Transport = &http.Transport{
			TLSClientConfig: p.tlsConfig,
		}
		return p
	}
}

// WithPeerKeys pins the public key each peer must sign its blocks with.
func WithPeerKeys(keys map[string]string) PeerOption {
	return func(p Peer) Peer {
		p.keys = copyMap(keys)
		return p
	}
}

func WithLogger(logger *slog.Logger) PeerOption {
	return func(p Peer) Peer {
		p.logger = logger
		return p
	}
}
