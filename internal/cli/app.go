package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/treatbank/mintd/internal/config"
	"github.com/treatbank/mintd/internal/keys"
	ledgerhorizon "github.com/treatbank/mintd/internal/ledger/horizon"
	"github.com/treatbank/mintd/internal/service"
	"github.com/treatbank/mintd/internal/storage/history"
)

// app bundles everything a command needs to run facade operations.
type app struct {
	cfg      *config.Config
	svc      *service.Service
	history  history.Store
	registry *prometheus.Registry
	log      *slog.Logger
}

// buildApp loads configuration and wires the facade. withHistory controls
// whether the on-disk record store is opened; one-off read commands that do
// not append records still open it to serve listings.
func buildApp(withHistory bool) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log := newLogger()

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	client := ledgerhorizon.New(cfg.ResolvedHorizonURL(), cfg.NetworkPassphrase(), timeout)

	var funder keys.Funder
	if cfg.IsTestnet() {
		funder = keys.NewFriendbot(cfg.FriendbotURL, &http.Client{Timeout: timeout})
	}

	var hist history.Store
	if withHistory {
		hist, err = history.Open(cfg.History.Backend, history.Options{
			Path:        cfg.History.Path,
			Compression: cfg.History.Compression,
		})
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	metrics := service.NewMetrics(registry)

	return &app{
		cfg:      cfg,
		svc:      service.New(cfg, client, funder, hist, metrics, log),
		history:  hist,
		registry: registry,
		log:      log,
	}, nil
}

func (a *app) close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.Warn("failed to close history store", "err", err)
		}
	}
}
