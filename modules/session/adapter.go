package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/channel-board-demo/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// sessionAdapter implements SessionPort over the session module's services.
type sessionAdapter struct {
	container mono.ServiceContainer
}

// NewSessionAdapter creates a SessionPort from the session module's ServiceContainer.
func NewSessionAdapter(container mono.ServiceContainer) SessionPort {
	if container == nil {
		panic("session adapter requires non-nil ServiceContainer")
	}
	return &sessionAdapter{container: container}
}

// Login starts a session via the login service.
func (a *sessionAdapter) Login(ctx context.Context, namespace, username, password string) (*chat.User, error) {
	return a.start(ctx, "login", namespace, username, password)
}

// Signup starts a session via the signup service.
func (a *sessionAdapter) Signup(ctx context.Context, namespace, username, password string) (*chat.User, error) {
	return a.start(ctx, "signup", namespace, username, password)
}

func (a *sessionAdapter) start(ctx context.Context, service, namespace, username, password string) (*chat.User, error) {
	req := StartSessionRequest{Namespace: namespace, Username: username, Password: password}
	var resp SessionResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", service, err)
	}
	if resp.Code != "" {
		return nil, errorFromCode(resp.Code)
	}
	return resp.User, nil
}

// Logout ends the session via the logout service.
func (a *sessionAdapter) Logout(ctx context.Context, namespace string) error {
	req := SessionRequest{Namespace: namespace}
	var resp LogoutResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"logout",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("logout service call failed: %w", err)
	}
	if resp.Code != "" {
		return errorFromCode(resp.Code)
	}
	return nil
}

// CurrentUser returns the signed-in user via the current-user service.
func (a *sessionAdapter) CurrentUser(ctx context.Context, namespace string) (*chat.User, error) {
	req := SessionRequest{Namespace: namespace}
	var resp SessionResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"current-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("current-user service call failed: %w", err)
	}
	if resp.Code != "" {
		return nil, errorFromCode(resp.Code)
	}
	if !resp.Found || resp.User == nil {
		return nil, ErrNoSession
	}
	return resp.User, nil
}
