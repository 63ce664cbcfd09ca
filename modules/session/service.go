package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/example/channel-board-demo/domain/chat"
	"github.com/example/channel-board-demo/modules/slots"
)

// Service keeps the signed-in user of each client in its user slot.
// Credentials are not verified: any username starts a session.
type Service struct {
	slots slots.Store
	now   func() time.Time
}

// NewService creates a session service backed by store.
func NewService(store slots.Store) *Service {
	return &Service{slots: store, now: time.Now}
}

// Start signs a user in under namespace. The username is stored as given and
// the password is accepted and discarded.
func (s *Service) Start(ctx context.Context, namespace, username, _ string) (*chat.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	user := &chat.User{
		ID:       strconv.FormatInt(s.now().UnixMilli(), 10),
		Username: username,
	}
	if err := s.slots.Save(ctx, namespace, slots.SlotUser, user); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return user, nil
}

// Current returns the signed-in user, or ErrNoSession.
func (s *Service) Current(ctx context.Context, namespace string) (*chat.User, error) {
	var user chat.User
	found, err := s.slots.Load(ctx, namespace, slots.SlotUser, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSession
	}
	return &user, nil
}

// End clears the user slot and returns the user that was signed in, if any.
func (s *Service) End(ctx context.Context, namespace string) (*chat.User, error) {
	// A missing or corrupt slot is cleared all the same.
	user, err := s.Current(ctx, namespace)
	if err != nil {
		user = nil
	}
	if err := s.slots.Remove(ctx, namespace, slots.SlotUser); err != nil {
		return nil, fmt.Errorf("failed to clear session: %w", err)
	}
	return user, nil
}

// ValidateUsername rejects only the empty username.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	return nil
}
