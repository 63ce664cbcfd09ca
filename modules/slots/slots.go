// Package slots persists per-client JSON state in named slots on a key/value backend.
package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Slot names, one per piece of client state.
const (
	SlotUser            = "user"
	SlotChannels        = "channels"
	SlotChannelMessages = "channelMessages"
)

var (
	// ErrCorruptSlot is returned when a stored slot does not hold valid JSON.
	ErrCorruptSlot = errors.New("stored slot is not valid JSON")
	// ErrNamespaceRequired is returned when a slot is addressed without a namespace.
	ErrNamespaceRequired = errors.New("namespace is required")
)

// Backend is the raw key/value store underneath the slots.
type Backend interface {
	// Get returns the stored value, or nil and no error when the key is missing.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Store loads and saves JSON values in the slots of a client namespace.
type Store interface {
	// Load decodes the slot into dest. It reports false when the slot is empty.
	Load(ctx context.Context, namespace, slot string, dest any) (bool, error)

	// Save encodes value as JSON and overwrites the slot.
	Save(ctx context.Context, namespace, slot string, value any) error

	// Remove clears the slot. Removing an empty slot is not an error.
	Remove(ctx context.Context, namespace, slot string) error
}

type jsonStore struct {
	backend Backend
}

// NewStore creates a Store that keeps JSON documents on backend.
func NewStore(backend Backend) Store {
	return &jsonStore{backend: backend}
}

// Key returns the backend key of a slot.
func Key(namespace, slot string) string {
	return namespace + ":" + slot
}

func (s *jsonStore) Load(ctx context.Context, namespace, slot string, dest any) (bool, error) {
	if namespace == "" {
		return false, ErrNamespaceRequired
	}
	key := Key(namespace, slot)

	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	if len(data) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptSlot, key, err)
	}
	return true, nil
}

func (s *jsonStore) Save(ctx context.Context, namespace, slot string, value any) error {
	if namespace == "" {
		return ErrNamespaceRequired
	}
	key := Key(namespace, slot)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode slot %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

func (s *jsonStore) Remove(ctx context.Context, namespace, slot string) error {
	if namespace == "" {
		return ErrNamespaceRequired
	}
	key := Key(namespace, slot)

	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove slot %s: %w", key, err)
	}
	return nil
}
