package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"blindrelay/internal/config"
	"blindrelay/internal/instrument"
	"blindrelay/internal/log"
	"blindrelay/internal/relay"
	"blindrelay/internal/services/relaystore"
)

const shutdownTimeout = 10 * time.Second

// Flags holds the command line configuration.
type Flags struct {
	ConfigFile   string
	ValidateOnly bool
}

func newRootCommand() *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Blind single-use invitation relay",
		Example: `  # Start with a configuration file
  relay --config /etc/blindrelay/relay.toml

  # Override the listen address from the environment
  RELAY_SERVER_ADDRESS=:9000 relay -f relay.toml

  # Check a configuration file and exit
  relay -f relay.toml --validate-only`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(flags.ConfigFile)
			if err != nil {
				return fmt.Errorf("failed to load config file '%v': %w", flags.ConfigFile, err)
			}
			if flags.ValidateOnly {
				fmt.Fprintln(cmd.OutOrStdout(), "config OK")
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&flags.ConfigFile, "config", "f", "relay.toml",
		"path to the relay configuration file (TOML format)")
	cmd.Flags().BoolVar(&flags.ValidateOnly, "validate-only", false,
		"load and validate the configuration, then exit")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	backend, err := log.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	if err != nil {
		return err
	}
	lg := backend.GetLogger("relay")

	records, err := cfg.Storage.Open()
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	defer func() {
		if err := records.Close(); err != nil {
			lg.Errorf("close store: %v", err)
		}
	}()

	keys, err := cfg.Keyring()
	if err != nil {
		return err
	}

	svc := relaystore.New(records, backend.GetLogger("relaystore"), relaystore.WithTTL(cfg.Storage.TTL))

	var opts []relay.HandlerOption
	if cfg.Metrics.Enable {
		instrument.Init()
		opts = append(opts, relay.WithMetrics())
	}
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           relay.NewHandler(svc, keys, backend.GetLogger("http"), opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	sweepDone := make(chan error, 1)
	go func() { sweepDone <- svc.Run(sweepCtx, cfg.Storage.SweepInterval) }()

	serveErr := make(chan error, 1)
	go func() {
		lg.Noticef("listening on %s (%s store, ttl %s, %d clients)",
			cfg.Server.Address, cfg.Storage.Backend, cfg.Storage.TTL, len(cfg.Clients))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		lg.Notice("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	stopSweep()
	<-sweepDone
	return err
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
