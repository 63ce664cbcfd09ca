package slots

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Storage drivers accepted in Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config selects and configures the slot backend.
type Config struct {
	Driver        string
	SQLitePath    string
	SQLiteDebug   bool
	RedisAddr     string
	RedisPassword string
	PostgresURL   string
}

// PluginModule owns the slot backend as a mono plugin module.
// Plugins start first and stop last, so the store outlives every module using it.
type PluginModule struct {
	container types.ServiceContainer
	cfg       Config
	backend   Backend
	store     Store
	logger    types.Logger
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
)

// NewPluginModule creates the plugin; the backend is opened in Start.
func NewPluginModule(cfg Config, logger types.Logger) *PluginModule {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	return &PluginModule{cfg: cfg, logger: logger}
}

// NewPluginModuleWithBackend creates the plugin around an already open backend.
func NewPluginModuleWithBackend(backend Backend, logger types.Logger) *PluginModule {
	return &PluginModule{
		cfg:     Config{Driver: "custom"},
		backend: backend,
		store:   NewStore(backend),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "slots"
}

// Start opens the configured backend.
func (m *PluginModule) Start(ctx context.Context) error {
	if m.backend == nil {
		backend, err := openBackend(ctx, m.cfg)
		if err != nil {
			return err
		}
		m.backend = backend
		m.store = NewStore(backend)
	}
	m.logger.Info("Slots plugin started", "driver", m.cfg.Driver)
	return nil
}

// Stop closes the backend.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.backend != nil {
		if err := m.backend.Close(); err != nil {
			m.logger.Error("Failed to close slot backend", "error", err)
			return fmt.Errorf("failed to close slot backend: %w", err)
		}
	}
	m.logger.Info("Slots plugin stopped")
	return nil
}

// SetContainer sets the service container for this plugin.
func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

// Container returns the service container for this plugin.
func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// Port returns the slot store. It is nil until Start has run.
func (m *PluginModule) Port() Store {
	return m.store
}

// Health pings the backend.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.backend == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "backend not initialized",
		}
	}
	if err := m.backend.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.cfg.Driver,
		},
	}
}

func openBackend(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Driver {
	case DriverSQLite:
		b, err := OpenSQLite(cfg.SQLitePath, cfg.SQLiteDebug)
		if err != nil {
			return nil, fmt.Errorf("sqlite backend: %w", err)
		}
		return b, nil
	case DriverRedis:
		b, err := OpenRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("redis backend: %w", err)
		}
		return b, nil
	case DriverPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("postgres backend: DATABASE_URL is required")
		}
		b, err := OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("postgres backend: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
