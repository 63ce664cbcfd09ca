package api

import (
	"context"
	"fmt"

	"github.com/example/channel-board-demo/modules/activity"
	"github.com/example/channel-board-demo/modules/channel"
	"github.com/example/channel-board-demo/modules/search"
	"github.com/example/channel-board-demo/modules/session"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	ClientToken ClientTokenConfig
}

// APIModule is the driving adapter that serves the screens and the REST API.
// It reaches the other modules only through their ports.
type APIModule struct {
	app      *fiber.App
	port     int
	tokens   *ClientTokenManager
	sessions session.SessionPort
	channels channel.ChannelPort
	search   search.SearchPort
	activity activity.ActivityPort
	checks   map[string]mono.HealthCheckableModule
	logger   types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg Config, logger types.Logger) *APIModule {
	return &APIModule{
		port:   cfg.Port,
		tokens: NewClientTokenManager(cfg.ClientToken),
		checks: make(map[string]mono.HealthCheckableModule),
		logger: logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"session", "channel", "search", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "session":
		m.sessions = session.NewSessionAdapter(container)
	case "channel":
		m.channels = channel.NewChannelAdapter(container)
	case "search":
		m.search = search.NewSearchAdapter(container)
	case "activity":
		m.activity = activity.NewActivityAdapter(container)
	}
}

// AddHealthCheck includes a module in the /health report.
func (m *APIModule) AddHealthCheck(name string, module mono.HealthCheckableModule) {
	m.checks[name] = module
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	switch {
	case m.sessions == nil:
		return fmt.Errorf("session dependency not set")
	case m.channels == nil:
		return fmt.Errorf("channel dependency not set")
	case m.search == nil:
		return fmt.Errorf("search dependency not set")
	case m.activity == nil:
		return fmt.Errorf("activity dependency not set")
	}

	m.app = m.newApp()

	addr := fmt.Sprintf(":%d", m.port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "addr", addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}
