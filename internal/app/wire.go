package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"autonym/internal/domain"
	"autonym/internal/keysource"
	"autonym/internal/services/controller"
	"autonym/internal/services/message"
	"autonym/internal/store"
)

// Wire bundles all stores and services for the CLI.
type Wire struct {
	Config     Config
	Logger     *slog.Logger
	Registry   *prometheus.Registry
	Log        domain.KeyEventLog
	Keyring    domain.Keyring
	Controller *controller.Service
	Messages   *message.Service

	closer io.Closer
}

// NewWire constructs the dependency graph from cfg. Log output goes to w.
func NewWire(cfg Config, w io.Writer) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg.Log, w)
	if err != nil {
		return nil, err
	}

	wire := &Wire{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		Keyring:  store.NewKeyringFileStore(cfg.Home, cfg.Keystore),
	}

	switch cfg.Store.Driver {
	case DriverSQLite:
		sq, err := store.OpenKELSQLite(cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		wire.Log = sq
		wire.closer = sq
	default:
		wire.Log = store.NewKELFileStore(cfg.Home)
	}
	logger.Debug("wired", "home", cfg.Home, "store", cfg.Store.Driver)

	wire.Controller = controller.New(
		wire.Log,
		wire.Keyring,
		keysource.NewRandom(nil),
		logger.With("component", "controller"),
		controller.NewMetrics(wire.Registry),
	)
	wire.Messages = message.New(
		wire.Controller,
		wire.Keyring,
		logger.With("component", "message"),
		message.NewMetrics(wire.Registry),
	)
	return wire, nil
}

// Close releases the log store.
func (w *Wire) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
