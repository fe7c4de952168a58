// Package config provides the relay server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"blindrelay/internal/domain"
	"blindrelay/internal/store"
)

const (
	defaultAddress       = "127.0.0.1:8080"
	defaultLogLevel      = "NOTICE"
	defaultBackend       = BackendMemory
	defaultTTL           = 336 * time.Hour
	defaultSweepInterval = time.Minute

	// EnvPrefix is prepended to every environment override.
	EnvPrefix = "RELAY_"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Server is the HTTP listener configuration.
type Server struct {
	// Address is the host:port to listen on.
	Address string `env:"ADDRESS"`
}

func (s *Server) validate() error {
	if s.Address == "" {
		s.Address = defaultAddress
	}
	return nil
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool `env:"DISABLE"`

	// File specifies the log file, if omitted stdout will be used.
	File string `env:"FILE"`

	// Level specifies the log level.
	Level string `env:"LEVEL"`
}

func (l *Logging) validate() error {
	lvl := strings.ToUpper(l.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", l.Level)
	}
	l.Level = lvl
	return nil
}

// Storage selects and configures the record store.
type Storage struct {
	// Backend is one of memory, bolt or sqlite.
	Backend string `env:"BACKEND"`

	// Path is the database file for the bolt and sqlite backends.
	Path string `env:"PATH"`

	// TTL is how long an unfetched invitation is kept. Zero keeps it until
	// fetched. Defaults to two weeks when absent.
	TTL time.Duration `env:"TTL"`

	// SweepInterval is how often expired invitations are purged.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`
}

func (s *Storage) validate() error {
	s.Backend = strings.ToLower(s.Backend)
	switch s.Backend {
	case "":
		s.Backend = defaultBackend
	case BackendMemory:
	case BackendBolt, BackendSQLite:
		if s.Path == "" {
			return fmt.Errorf("config: Storage: Path is required for the %s backend", s.Backend)
		}
	default:
		return fmt.Errorf("config: Storage: Backend '%v' is invalid", s.Backend)
	}
	if s.TTL < 0 {
		return errors.New("config: Storage: TTL must not be negative")
	}
	if s.SweepInterval < 0 {
		return errors.New("config: Storage: SweepInterval must not be negative")
	}
	if s.SweepInterval == 0 {
		s.SweepInterval = defaultSweepInterval
	}
	return nil
}

// Open opens the configured record store.
func (s *Storage) Open(opts ...store.Option) (domain.RecordStore, error) {
	switch s.Backend {
	case BackendBolt:
		return store.OpenBoltStore(s.Path, opts...)
	case BackendSQLite:
		return store.OpenSQLiteStore(s.Path, opts...)
	default:
		return store.NewMemoryStore(opts...), nil
	}
}

// Metrics controls the Prometheus endpoint.
type Metrics struct {
	// Enable serves /metrics on the relay listener.
	Enable bool `env:"ENABLE"`
}

// Client is one client allowed to use the relay.
type Client struct {
	// ID is the value the client sends in X-Client-Id.
	ID string

	// SessionKey is the 32 byte session key, hex encoded.
	SessionKey string
}

// Config is the top level relay configuration.
type Config struct {
	Server  *Server  `envPrefix:"SERVER_"`
	Logging *Logging `envPrefix:"LOGGING_"`
	Storage *Storage `envPrefix:"STORAGE_"`
	Metrics *Metrics `envPrefix:"METRICS_"`
	Clients []*Client `env:"-"`
}

// Validate fills in defaults and checks the configuration.
func (cfg *Config) Validate() error {
	if cfg.Server == nil {
		cfg.Server = &Server{}
	}
	if cfg.Logging == nil {
		cfg.Logging = &Logging{}
	}
	if cfg.Storage == nil {
		cfg.Storage = &Storage{TTL: defaultTTL}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &Metrics{}
	}
	if err := cfg.Server.validate(); err != nil {
		return err
	}
	if err := cfg.Logging.validate(); err != nil {
		return err
	}
	if err := cfg.Storage.validate(); err != nil {
		return err
	}
	if len(cfg.Clients) == 0 {
		return errors.New("config: no Clients configured")
	}
	if _, err := cfg.sessionKeys(); err != nil {
		return err
	}
	return nil
}

// Keyring returns the session keyring for the configured clients.
func (cfg *Config) Keyring() (*store.StaticKeyring, error) {
	keys, err := cfg.sessionKeys()
	if err != nil {
		return nil, err
	}
	return store.NewStaticKeyring(keys), nil
}

func (cfg *Config) sessionKeys() (map[domain.ClientID]domain.SessionKey, error) {
	keys := make(map[domain.ClientID]domain.SessionKey, len(cfg.Clients))
	for i, c := range cfg.Clients {
		if c == nil || c.ID == "" {
			return nil, fmt.Errorf("config: Clients[%d]: ID is not set", i)
		}
		id := domain.ClientID(c.ID)
		if _, dup := keys[id]; dup {
			return nil, fmt.Errorf("config: Clients[%d]: duplicate ID '%v'", i, c.ID)
		}
		k, err := domain.ParseSessionKey(c.SessionKey)
		if err != nil {
			return nil, fmt.Errorf("config: Clients[%d]: SessionKey: %w", i, err)
		}
		keys[id] = k
	}
	return keys, nil
}

// Load parses the provided buffer b as a config file body, applies
// environment overrides, validates, and returns the Config.
func Load(b []byte) (*Config, error) {
	if b == nil {
		return nil, errors.New("config: no nil buffer as config file")
	}
	cfg := &Config{
		Server:  &Server{},
		Logging: &Logging{},
		Storage: &Storage{},
		Metrics: &Metrics{},
	}
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if !md.IsDefined("Storage", "TTL") {
		cfg.Storage.TTL = defaultTTL
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
