package ioc

import (
	"context"
	"fmt"
	"sync"

	"github.com/openioc/vmecore/internal/api/rest"
	"github.com/openioc/vmecore/internal/api/websocket"
	"github.com/openioc/vmecore/internal/auth"
	"github.com/openioc/vmecore/internal/config"
	"github.com/openioc/vmecore/internal/devsup"
	"github.com/openioc/vmecore/internal/hpe1368a"
	"github.com/openioc/vmecore/internal/scan"
	"github.com/openioc/vmecore/internal/storage"
	"go.uber.org/zap"
)

// DeviceTypeHPE1368A is the device type name records use to select the
// HPE1368A support set.
const DeviceTypeHPE1368A = "hpe1368a"

// Lifecycle wires driver, device support, record manager and the monitor
// surface together and owns startup and graceful shutdown. The update
// archive and operator auth are optional, enabled by configuration.
type Lifecycle struct {
	config   *config.Config
	logger   *zap.Logger
	driver   *hpe1368a.Sim
	manager  *Manager
	hub      *websocket.Hub
	rest     *rest.Server
	postgres *storage.PostgresClient
	archiver *storage.Archiver

	shutdownOnce sync.Once
}

func NewLifecycle(cfg *config.Config, logger *zap.Logger) (*Lifecycle, error) {
	driver := hpe1368a.NewSim(cfg.Driver.Cards)

	registry := devsup.NewRegistry()
	registry.Register(DeviceTypeHPE1368A, devsup.NewHPE1368A(driver, logger))

	hub := websocket.NewHub(logger)

	l := &Lifecycle{
		config: cfg,
		logger: logger,
		driver: driver,
		hub:    hub,
	}

	sink := scan.Sink(hub)
	if cfg.Archive.Enabled {
		postgres, err := storage.NewPostgresClient(context.Background(), cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to archive: %w", err)
		}
		if err := postgres.EnsureSchema(context.Background()); err != nil {
			postgres.Close()
			return nil, err
		}
		l.postgres = postgres
		l.archiver = storage.NewArchiver(postgres, logger)
		sink = scan.Combine(hub, l.archiver)
	}

	manager, err := NewManager(cfg.Database.SearchPaths, registry, sink, cfg.Scan.DefaultInterval, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create record manager: %w", err)
	}
	l.manager = manager

	var authService *auth.Service
	if cfg.Auth.Enabled {
		authService = auth.NewService(cfg.Auth, logger)
	}

	l.rest = rest.NewServer(cfg, manager, logger, hub, authService, l.postgres)

	return l, nil
}

// Manager returns the record manager.
func (l *Lifecycle) Manager() *Manager {
	return l.manager
}

// Driver returns the simulated card bank.
func (l *Lifecycle) Driver() *hpe1368a.Sim {
	return l.driver
}

// Start loads the configured record databases, starts scanning and brings
// up the monitor surface.
func (l *Lifecycle) Start() error {
	go l.hub.Run()

	if l.archiver != nil {
		l.archiver.Start()
	}

	for _, db := range l.config.Database.Load {
		if err := l.manager.LoadDatabase(db); err != nil {
			return err
		}
	}

	if err := l.manager.StartScanning(); err != nil {
		return fmt.Errorf("failed to start scanner: %w", err)
	}

	if err := l.rest.Start(); err != nil {
		return fmt.Errorf("failed to start REST server: %w", err)
	}

	l.hub.Broadcast(websocket.NewSystemStatusMessage("running", len(l.manager.Records())))
	l.logger.Info("I/O core started",
		zap.Int("records", len(l.manager.Records())),
		zap.Int("cards", l.config.Driver.Cards),
		zap.Bool("archive", l.archiver != nil))

	return nil
}

// Shutdown stops scanning and drains the monitor surface, then the
// archive.
func (l *Lifecycle) Shutdown(ctx context.Context) error {
	var err error
	l.shutdownOnce.Do(func() {
		l.hub.Broadcast(websocket.NewSystemStatusMessage("stopping", len(l.manager.Records())))
		l.manager.StopScanning()
		err = l.rest.Shutdown(ctx)
		l.hub.Stop()

		if l.archiver != nil {
			l.archiver.Stop()
		}
		if l.postgres != nil {
			l.postgres.Close()
		}
	})
	return err
}
