package app

import (
	"net/http"

	"gopkg.in/op/go-logging.v1"

	"blindrelay/internal/domain"
	"blindrelay/internal/log"
	"blindrelay/internal/store"
)

// Wire bundles the local stores and shared clients for the CLI.
type Wire struct {
	Sessions    domain.SessionStore
	Invitations domain.InvitationStore
	HTTP        *http.Client
	RelayURL    string
	Log         *log.Backend
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "-"
	}
	level := cfg.LogLevel
	if level == "" {
		level = "WARNING"
	}
	backend, err := log.New(logFile, level, false)
	if err != nil {
		return nil, err
	}

	return &Wire{
		Sessions:    store.NewSessionFileStore(cfg.Home),
		Invitations: store.NewInvitationFileStore(cfg.Home),
		HTTP:        httpClient,
		RelayURL:    cfg.RelayURL,
		Log:         backend,
	}, nil
}

// Logger returns a logger for module.
func (w *Wire) Logger(module string) *logging.Logger {
	return w.Log.GetLogger(module)
}
