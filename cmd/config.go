package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luca-patrignani/monopoly-replica/domain/monopoly"
	"github.com/luca-patrignani/monopoly-replica/replica"
)

type Config struct {
	configFile    string
	players       []string
	startingMoney int
	dataDir       string
	maxSteps      int
	games         int
	seed          string
	verbose       bool

	// serve
	game          string
	id            string
	listen        string
	peers         []string
	discoverPorts string
	interactive   bool
	backoff       time.Duration
	tlsCert       string
	tlsKey        string
	tlsCA         string

	// inspect
	replica string

	// cert
	certHosts []string
	certDir   string
}

func (c *Config) validate() error {
	if len(c.players) < 2 {
		return fmt.Errorf("at least 2 players are required, got %d", len(c.players))
	}
	seen := make(map[string]struct{})
	for _, p := range c.players {
		if err := monopoly.ValidatePlayerID(p); err != nil {
			return err
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("duplicate player %q", p)
		}
		seen[p] = struct{}{}
	}
	if c.startingMoney < 0 || c.startingMoney*len(c.players) > monopoly.TotalMoney {
		return fmt.Errorf("invalid starting money (must be between 0-%d for %d players): %d",
			monopoly.TotalMoney/len(c.players), len(c.players), c.startingMoney)
	}
	if c.maxSteps < 1 {
		return fmt.Errorf("invalid max steps (must be positive): %d", c.maxSteps)
	}
	if c.games < 1 {
		return fmt.Errorf("invalid number of games (must be positive): %d", c.games)
	}
	return nil
}

func (c *Config) validateServe() error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.playerIndex(c.id) < 0 {
		return fmt.Errorf("replica %q is not one of the players %v", c.id, c.players)
	}
	if c.game != "" {
		if _, err := uuid.Parse(c.game); err != nil {
			return fmt.Errorf("invalid game id %q: %w", c.game, err)
		}
	}
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.tlsCA != "" && c.tlsCert == "" {
		return errors.New("--tls-ca requires --tls-cert and --tls-key")
	}
	if c.discoverPorts != "" {
		if _, _, err := parsePortRange(c.discoverPorts); err != nil {
			return err
		}
	}
	if _, err := parsePeers(c.peers); err != nil {
		return err
	}
	return nil
}

func (c *Config) playerIndex(id string) int {
	for i, p := range c.players {
		if p == id {
			return i
		}
	}
	return -1
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MONOPOLY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "monopoly",
		Short:         "Monopoly played by replicas that reconcile their snapshots pairwise.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.configFile != "" {
				v.SetConfigFile(cfg.configFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			setupLogger(cfg.verbose)
			return nil
		},
	}

	fs := cmd.PersistentFlags()
	normalize(fs)
	fs.StringVarP(&cfg.configFile, "config", "c", "", "path to a yaml config file (env: MONOPOLY_CONFIG)")
	fs.StringSliceVar(&cfg.players, "players", []string{"p0", "p1", "p2"}, "player ids in turn order (env: MONOPOLY_PLAYERS)")
	fs.IntVar(&cfg.startingMoney, "starting-money", monopoly.DefaultStartingMoney, "money every player starts with (env: MONOPOLY_STARTING_MONEY)")
	fs.StringVarP(&cfg.dataDir, "data-dir", "d", "", "directory to persist the ledgers in, in memory if empty (env: MONOPOLY_DATA_DIR)")
	fs.IntVar(&cfg.maxSteps, "max-steps", replica.DefaultMaxSteps, "steps after which a simulation gives up (env: MONOPOLY_MAX_STEPS)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display debug output (env: MONOPOLY_VERBOSE)")

	cmd.AddCommand(newSimulateCmd(cfg), newServeCmd(cfg), newInspectCmd(cfg), newCertCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("monopoly v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newSimulateCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play whole games between in-process replicas choosing at random.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return runSimulate(cmd.Context(), cfg)
		},
	}
	fs := cmd.Flags()
	normalize(fs)
	fs.IntVarP(&cfg.games, "games", "g", 1, "number of independent games (env: MONOPOLY_GAMES)")
	fs.StringVar(&cfg.seed, "seed", "", "seed of the scheduler, the game id if empty (env: MONOPOLY_SEED)")
	return cmd
}

func newServeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run one replica and reconcile with its peers over HTTP.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.games = 1
			if err := cfg.validateServe(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	fs := cmd.Flags()
	normalize(fs)
	fs.StringVar(&cfg.game, "game", "", "id shared by every replica of the game, a new one if empty (env: MONOPOLY_GAME)")
	fs.StringVar(&cfg.id, "id", "p0", "player id of this replica (env: MONOPOLY_ID)")
	fs.StringVarP(&cfg.listen, "listen", "l", "localhost:0", "address to serve the replica on (env: MONOPOLY_LISTEN)")
	fs.StringArrayVarP(&cfg.peers, "peer", "p", nil, "peer replica as id=host:port, repeatable (env: MONOPOLY_PEER)")
	fs.StringVar(&cfg.discoverPorts, "discover-ports", "", "localhost port range to discover peers on, as start-end (env: MONOPOLY_DISCOVER_PORTS)")
	fs.BoolVarP(&cfg.interactive, "interactive", "i", false, "choose actions at the terminal (env: MONOPOLY_INTERACTIVE)")
	fs.DurationVar(&cfg.backoff, "backoff", 200*time.Millisecond, "pause when a step changed nothing (env: MONOPOLY_BACKOFF)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: MONOPOLY_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: MONOPOLY_TLS_KEY)")
	fs.StringVar(&cfg.tlsCA, "tls-ca", "", "path to the certificates peers must present (env: MONOPOLY_TLS_CA)")
	return cmd
}

func newInspectCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Verify the ledgers of a data directory and show a replica's latest snapshot.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.dataDir == "" {
				return errors.New("--data-dir is required")
			}
			return runInspect(cfg)
		},
	}
	fs := cmd.Flags()
	normalize(fs)
	fs.StringVarP(&cfg.replica, "replica", "r", "", "replica to show, the first one if empty (env: MONOPOLY_REPLICA)")
	return cmd
}

func newCertCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cert",
		Short: "Generate a self-signed certificate for serving a replica over TLS.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cfg.certHosts) == 0 {
				return errors.New("at least one --host is required")
			}
			return runCert(cfg.certDir, cfg.certHosts)
		},
	}
	fs := cmd.Flags()
	normalize(fs)
	fs.StringSliceVar(&cfg.certHosts, "host", nil, "ip or name the replica is reached at, repeatable (env: MONOPOLY_HOST)")
	fs.StringVarP(&cfg.certDir, "out", "o", ".", "directory to write cert.pem and key.pem to (env: MONOPOLY_OUT)")
	return cmd
}

func normalize(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// bindFlags fills every flag not set on the command line from the
// environment or the config file.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if f.Changed || !v.IsSet(f.Name) || err != nil {
			return
		}
		switch f.Value.Type() {
		case "stringSlice", "stringArray":
			// the first Set replaces the default, later ones append
			for _, s := range v.GetStringSlice(f.Name) {
				if err = fs.Set(f.Name, s); err != nil {
					return
				}
			}
		default:
			err = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
	return err
}
