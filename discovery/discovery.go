package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"
)

// Entry announces a replica of a game and where its peer listens.
type Entry struct {
	Game      string `yaml:"game"`
	Replica   string `yaml:"replica"`
	Address   string `yaml:"address"`
	PublicKey string `yaml:"public_key,omitempty"`
}

func New(entry Entry, port uint16) (*Discover, error) {
	return NewWithPortRange(entry, port, port, 2)
}

type handler struct {
	announcement []byte
}

func (h handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(h.announcement)
}

func NewWithPortRange(entry Entry, startPort, endPort uint16, attempts uint) (*Discover, error) {
	return NewWithOptions(entry,
		WithPortRange(startPort, endPort),
		WithAttempts(attempts),
	)
}

// search announces every replica of the same game found in the port range
// that was not seen before.
func (d *Discover) search(ctx context.Context) {
	for port := d.startPort; port <= d.endPort; port++ {
		if port == d.port {
			continue
		}
		e, err := d.fetch(ctx, port)
		if err != nil || e.Game != d.self.Game || e.Replica == d.self.Replica {
			continue
		}
		if _, ok := d.seen[e.Replica]; ok {
			continue
		}
		d.seen[e.Replica] = struct{}{}
		select {
		case d.Entries <- e:
		case <-ctx.Done():
			return
		}
	}
}

func (d *Discover) fetch(ctx context.Context, port uint16) (Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://localhost:%d", port), nil)
	if err != nil {
		return Entry{}, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return Entry{}, err
	}
	defer resp.Body.Close()
	buf, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := yaml.Unmarshal(buf, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Collect waits until n replicas other than this one have been found and
// returns them by replica id.
func (d *Discover) Collect(ctx context.Context, n int) (map[string]Entry, error) {
	found := make(map[string]Entry)
	for len(found) < n {
		select {
		case e := <-d.Entries:
			found[e.Replica] = e
		case <-ctx.Done():
			return found, fmt.Errorf("found %d of %d replicas: %w", len(found), n, ctx.Err())
		}
	}
	return found, nil
}

func (d *Discover) Port() uint16 {
	return d.port
}

func (d *Discover) Close() error {
	d.cancel()
	return d.server.Shutdown(context.Background())
}
