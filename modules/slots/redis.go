package slots

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-monolith/mono/pkg/storage"
	"github.com/gofiber/storage/redis/v3"
)

const healthCheckKey = "__health_check__"

// StorageBackend stores slots in any mono storage.Storage, Redis in production.
type StorageBackend struct {
	storage storage.Storage
}

// NewStorageBackend wraps an existing storage.
func NewStorageBackend(s storage.Storage) *StorageBackend {
	return &StorageBackend{storage: s}
}

// OpenRedis connects to the Redis server at addr ("host:port").
// gofiber/storage/redis panics when the server is unreachable, so reachability is checked first.
func OpenRedis(addr, password string) (*StorageBackend, error) {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("redis not reachable at %s: %w", addr, err)
	}
	conn.Close()

	host, port := parseRedisAddr(addr)
	return NewStorageBackend(redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		PoolSize: 50,
	})), nil
}

// Get retrieves the value stored under key.
func (b *StorageBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.storage.GetWithContext(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("storage get error: %w", err)
	}
	return data, nil
}

// Set stores value under key without expiration.
func (b *StorageBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.storage.SetWithContext(ctx, key, value, 0); err != nil {
		return fmt.Errorf("storage set error: %w", err)
	}
	return nil
}

// Delete removes key.
func (b *StorageBackend) Delete(ctx context.Context, key string) error {
	if err := b.storage.DeleteWithContext(ctx, key); err != nil {
		return fmt.Errorf("storage delete error: %w", err)
	}
	return nil
}

// Ping reads a key that never exists to verify the connection.
func (b *StorageBackend) Ping(ctx context.Context) error {
	_, err := b.storage.GetWithContext(ctx, healthCheckKey)
	return err
}

// Close closes the underlying storage connection.
func (b *StorageBackend) Close() error {
	return b.storage.Close()
}

// parseRedisAddr parses "host:port" into host and port.
// Returns defaults (127.0.0.1:6379) for invalid or missing values.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}
