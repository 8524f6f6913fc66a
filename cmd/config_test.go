package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		players:       []string{"p0", "p1", "p2"},
		startingMoney: 1500,
		maxSteps:      10,
		games:         1,
		id:            "p0",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"one player", func(c *Config) { c.players = []string{"p0"} }, false},
		{"duplicate player", func(c *Config) { c.players = []string{"p0", "p0"} }, false},
		{"reserved id", func(c *Config) { c.players = []string{"p0", "bank"} }, false},
		{"unknown id", func(c *Config) { c.players = []string{"p0", "UNKNOWN"} }, false},
		{"negative money", func(c *Config) { c.startingMoney = -1 }, false},
		{"too much money", func(c *Config) { c.startingMoney = 7000 }, false},
		{"no steps", func(c *Config) { c.maxSteps = 0 }, false},
		{"no games", func(c *Config) { c.games = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			if err := c.validate(); (err == nil) != tt.ok {
				t.Fatalf("validate() = %v, want ok %t", err, tt.ok)
			}
		})
	}
}

func TestValidateServe(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"stranger", func(c *Config) { c.id = "p9" }, false},
		{"game id", func(c *Config) { c.game = "6f1c0f7e-3c4b-4f0e-9d2a-8a7c2b1e5d44" }, true},
		{"bad game id", func(c *Config) { c.game = "monopoly" }, false},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, false},
		{"ca without cert", func(c *Config) { c.tlsCA = "ca.pem" }, false},
		{"bad port range", func(c *Config) { c.discoverPorts = "9010-9000" }, false},
		{"bad peer", func(c *Config) { c.peers = []string{"p1"} }, false},
		{"peers", func(c *Config) { c.peers = []string{"p1=localhost:7001", "p2=localhost:7002"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			if err := c.validateServe(); (err == nil) != tt.ok {
				t.Fatalf("validateServe() = %v, want ok %t", err, tt.ok)
			}
		})
	}
}

func TestEnvironmentFillsFlags(t *testing.T) {
	t.Setenv("MONOPOLY_STARTING_MONEY", "1000")
	t.Setenv("MONOPOLY_PLAYERS", "a,b")
	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"simulate", "--max-steps", "1"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if cfg.startingMoney != 1000 {
		t.Errorf("expected starting money from the environment, got %d", cfg.startingMoney)
	}
	if strings.Join(cfg.players, ",") != "a,b" {
		t.Errorf("expected players from the environment, got %v", cfg.players)
	}
	if cfg.maxSteps != 1 {
		t.Errorf("the command line must win, got %d steps", cfg.maxSteps)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monopoly.yml")
	if err := os.WriteFile(path, []byte("players: [x, y, z]\nmax-steps: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"simulate", "--config", path})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.Join(cfg.players, ",") != "x,y,z" || cfg.maxSteps != 3 {
		t.Fatalf("config file not applied: %v %d", cfg.players, cfg.maxSteps)
	}
}

func TestSimulateAndInspect(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"simulate", "--players", "p0,p1", "--max-steps", "50", "--data-dir", dir, "--seed", "s"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	games, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 || !games[0].IsDir() {
		t.Fatalf("expected one game directory, got %v", games)
	}

	cfg = &Config{}
	cmd = newCmd(cfg)
	cmd.SetArgs([]string{"inspect", "--data-dir", filepath.Join(dir, games[0].Name()), "--replica", "p1"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
}

func TestInspectRequiresDataDir(t *testing.T) {
	cmd := newCmd(&Config{})
	cmd.SetArgs([]string{"inspect"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error without a data directory")
	}
}

func TestCertFeedsServeOptions(t *testing.T) {
	dir := t.TempDir()
	cmd := newCmd(&Config{})
	cmd.SetArgs([]string{"cert", "--host", "127.0.0.1", "--host", "localhost", "--out", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	cfg := validConfig()
	cfg.tlsCert = filepath.Join(dir, "cert.pem")
	cfg.tlsKey = filepath.Join(dir, "key.pem")
	cfg.tlsCA = cfg.tlsCert
	opts, err := tlsOptions(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 2 {
		t.Fatalf("expected certificate and CA options, got %d", len(opts))
	}
}
