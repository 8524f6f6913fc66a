package discovery

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"
)

type Discover struct {
	Entries   chan Entry
	self      Entry
	seen      map[string]struct{}
	port      uint16
	startPort uint16
	endPort   uint16
	server    *http.Server
	client    *http.Client
	attempts  uint
	interval  time.Duration
	cancel    context.CancelFunc
}

type option func(Discover) Discover

func NewWithOptions(entry Entry, opts ...option) (*Discover, error) {
	d := Discover{
		Entries:   make(chan Entry),
		self:      entry,
		seen:      make(map[string]struct{}),
		startPort: 9000,
		endPort:   9010,
		attempts:  1,
		interval:  time.Second,
		client:    &http.Client{Timeout: time.Second},
	}
	for _, opt := range opts {
		d = opt(d)
	}
	announcement, err := yaml.Marshal(entry)
	if err != nil {
		return nil, err
	}

	var l net.Listener
	var port uint16
	for port = d.startPort; port <= d.endPort; port++ {
		l, err = net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			d.port = port
			break
		}
	}
	if err != nil {
		return nil, err
	}
	d.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: handler{announcement: announcement},
	}
	go func() {
		if err := d.server.Serve(l); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	go func() {
		for range d.attempts {
			d.search(ctx)
			select {
			case <-time.After(d.interval):
			case <-ctx.Done():
				return
			}
		}
	}()
	return &d, nil
}

func WithPortRange(startPort, endPort uint16) option {
	return func(d Discover) Discover {
		d.startPort = startPort
		d.endPort = endPort
		return d
	}
}

func WithPort(port uint16) option {
	return WithPortRange(port, port)
}

func WithAttempts(attempts uint) option {
	return func(d Discover) Discover {
		d.attempts = attempts
		return d
	}
}

func WithInterval(interval time.Duration) option {
	return func(d Discover) Discover {
		d.interval = interval
		return d
	}
}
