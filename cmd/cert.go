package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/monopoly-replica/network"
)

// runCert writes cert.pem and key.pem for the given hosts into dir. The
// cert.pem files of all replicas, concatenated, make the --tls-ca bundle.
func runCert(dir string, hosts []string) error {
	cert, err := network.GenerateSelfSignedCert(hosts...)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(certPath, cert.CertPEM, 0o644); err != nil {
		return fmt.Errorf("write certificate: %w", err)
	}
	if err := os.WriteFile(keyPath, cert.KeyPEM, 0o600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	pterm.Success.Printfln("Wrote %s and %s for %v", certPath, keyPath, hosts)
	return nil
}
