package commands

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"blindrelay/internal/app"
)

var (
	home       string
	passphrase string
	relayURL   string
	logLevel   string
	wire       *app.Wire
)

var errNoPassphrase = errors.New("passphrase required (-p)")

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the command tree.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "blindrelay",
		Short:         "Hand a secret to an invitee through an untrusted relay",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".blindrelay")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			w, err := app.NewWire(app.Config{
				Home:     home,
				RelayURL: relayURL,
				HTTP:     &http.Client{Timeout: 30 * time.Second},
				LogLevel: logLevel,
			})
			if err != nil {
				return err
			}
			wire = w
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.blindrelay)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting local keys")
	root.PersistentFlags().StringVar(&relayURL, "relay", "http://127.0.0.1:8080", "relay base URL")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "WARNING", "ERROR, WARNING, NOTICE, INFO or DEBUG")

	root.AddCommand(sessionCmd(), inviteCmd(), acceptCmd(), invitationsCmd())
	return root
}

// openApp unlocks the session for commands that talk to the relay.
func openApp() (*app.App, error) {
	if passphrase == "" {
		return nil, errNoPassphrase
	}
	return wire.Open(passphrase)
}
