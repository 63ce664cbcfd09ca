package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/channel-board-demo/events"
	"github.com/example/channel-board-demo/modules/slots"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// SessionModule provides the login, signup, logout and current-user services.
type SessionModule struct {
	slotsPlugin *slots.PluginModule
	service     *Service
	eventBus    mono.EventBus
	logger      types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*SessionModule)(nil)
	_ mono.ServiceProviderModule = (*SessionModule)(nil)
	_ mono.EventEmitterModule    = (*SessionModule)(nil)
	_ mono.UsePluginModule       = (*SessionModule)(nil)
)

// NewModule creates a new SessionModule.
func NewModule(logger types.Logger) *SessionModule {
	return &SessionModule{logger: logger}
}

// Name returns the module name.
func (m *SessionModule) Name() string {
	return "session"
}

// SetPlugin receives the slots plugin before Start.
func (m *SessionModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != "slots" {
		return
	}
	p, ok := plugin.(*slots.PluginModule)
	if !ok {
		m.logger.Error("Invalid plugin type for slots", "alias", alias, "expected", "*slots.PluginModule")
		return
	}
	m.slotsPlugin = p
}

// SetEventBus is called by the framework to inject the event bus.
func (m *SessionModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *SessionModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.SessionStartedV1.ToBase(),
		events.SessionEndedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *SessionModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.login,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "signup", json.Unmarshal, json.Marshal, m.signup,
	); err != nil {
		return fmt.Errorf("failed to register signup service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "logout", json.Unmarshal, json.Marshal, m.logout,
	); err != nil {
		return fmt.Errorf("failed to register logout service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "current-user", json.Unmarshal, json.Marshal, m.currentUser,
	); err != nil {
		return fmt.Errorf("failed to register current-user service: %w", err)
	}

	m.logger.Info("Registered session services", "services", []string{"login", "signup", "logout", "current-user"})
	return nil
}

func (m *SessionModule) login(ctx context.Context, req StartSessionRequest, _ *mono.Msg) (SessionResponse, error) {
	return m.startSession(ctx, req, ModeLogin)
}

func (m *SessionModule) signup(ctx context.Context, req StartSessionRequest, _ *mono.Msg) (SessionResponse, error) {
	return m.startSession(ctx, req, ModeSignup)
}

func (m *SessionModule) startSession(ctx context.Context, req StartSessionRequest, mode string) (SessionResponse, error) {
	user, err := m.service.Start(ctx, req.Namespace, req.Username, req.Password)
	if err != nil {
		if code := errorCode(err); code != "" {
			return SessionResponse{Code: code}, nil
		}
		return SessionResponse{}, err
	}

	m.publish(func() error {
		return events.SessionStartedV1.Publish(m.eventBus, events.SessionStartedEvent{
			Namespace: req.Namespace,
			UserID:    user.ID,
			Username:  user.Username,
			Mode:      mode,
			Timestamp: time.Now(),
		}, nil)
	})

	m.logger.Debug("Session started", "namespace", req.Namespace, "mode", mode)
	return SessionResponse{User: user, Found: true}, nil
}

func (m *SessionModule) logout(ctx context.Context, req SessionRequest, _ *mono.Msg) (LogoutResponse, error) {
	user, err := m.service.End(ctx, req.Namespace)
	if err != nil {
		return LogoutResponse{}, err
	}
	if user == nil {
		return LogoutResponse{Ended: false}, nil
	}

	m.publish(func() error {
		return events.SessionEndedV1.Publish(m.eventBus, events.SessionEndedEvent{
			Namespace: req.Namespace,
			UserID:    user.ID,
			Username:  user.Username,
			Timestamp: time.Now(),
		}, nil)
	})

	return LogoutResponse{Ended: true, User: user}, nil
}

func (m *SessionModule) currentUser(ctx context.Context, req SessionRequest, _ *mono.Msg) (SessionResponse, error) {
	user, err := m.service.Current(ctx, req.Namespace)
	if err != nil {
		if code := errorCode(err); code != "" {
			return SessionResponse{Code: code}, nil
		}
		return SessionResponse{}, err
	}
	return SessionResponse{User: user, Found: true}, nil
}

// publish sends an event when a bus is attached. Failures are logged, not returned.
func (m *SessionModule) publish(send func() error) {
	if m.eventBus == nil {
		return
	}
	if err := send(); err != nil {
		m.logger.Warn("Failed to publish session event", "error", err)
	}
}

// Start resolves the slot store from the slots plugin.
func (m *SessionModule) Start(_ context.Context) error {
	if m.service == nil {
		if m.slotsPlugin == nil || m.slotsPlugin.Port() == nil {
			return fmt.Errorf("slots plugin not set - ensure 'slots' plugin is registered")
		}
		m.service = NewService(m.slotsPlugin.Port())
	}
	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, session events will not be published")
	}
	m.logger.Info("Session module started")
	return nil
}

// Stop shuts down the module.
func (m *SessionModule) Stop(_ context.Context) error {
	m.logger.Info("Session module stopped")
	return nil
}
