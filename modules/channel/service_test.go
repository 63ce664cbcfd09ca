package channel

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/channel-board-demo/domain/chat"
	"github.com/example/channel-board-demo/modules/session"
	"github.com/example/channel-board-demo/modules/slots"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// mockUsers is a UserSource keyed by namespace.
type mockUsers struct {
	mu    sync.Mutex
	users map[string]*chat.User
}

func newMockUsers() *mockUsers {
	return &mockUsers{users: make(map[string]*chat.User)}
}

func (m *mockUsers) set(namespace string, user *chat.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[namespace] = user
}

func (m *mockUsers) CurrentUser(_ context.Context, namespace string) (*chat.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[namespace]
	if !ok {
		return nil, session.ErrNoSession
	}
	return user, nil
}

// countingBackend counts reads per key.
type countingBackend struct {
	slots.Backend
	gets sync.Map
}

func (b *countingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	n, _ := b.gets.LoadOrStore(key, new(atomic.Int32))
	n.(*atomic.Int32).Add(1)
	return b.Backend.Get(ctx, key)
}

func (b *countingBackend) count(key string) int32 {
	n, ok := b.gets.Load(key)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

var alice = &chat.User{ID: "1700000000000", Username: "alice"}

type testEnv struct {
	svc     *Service
	users   *mockUsers
	backend *countingBackend
	store   slots.Store
}

// setupTestService creates a Service over an in-memory SQLite slot backend
// with alice signed in under "ns".
func setupTestService(t *testing.T) *testEnv {
	t.Helper()

	sqliteBackend, err := slots.OpenSQLite(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteBackend.Close() })

	backend := &countingBackend{Backend: sqliteBackend}
	store := slots.NewStore(backend)
	users := newMockUsers()
	users.set("ns", alice)

	clock := time.UnixMilli(1700000001000)
	svc := NewService(store, users)
	svc.now = func() time.Time { return clock }

	return &testEnv{svc: svc, users: users, backend: backend, store: store}
}

func (e *testEnv) newService() *Service {
	svc := NewService(e.store, e.users)
	svc.now = e.svc.now
	return svc
}

func TestService_FirstLoadSeedsDefaults(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	channels, active, err := env.svc.ListChannels(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, chat.DefaultChannels(), channels)
	assert.Equal(t, int64(1), active)

	raw, err := env.backend.Get(ctx, "ns:channels")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"name":"general","isPublic":true,"ownerId":"system"},
		{"id":2,"name":"random","isPublic":true,"ownerId":"system"}
	]`, string(raw))

	raw, err = env.backend.Get(ctx, "ns:channelMessages")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"1":[{"id":1,"user":"User1","content":"Hello, everyone in general!"},
		     {"id":2,"user":"User2","content":"Hi there! How are you all doing in general?"}],
		"2":[{"id":1,"user":"User3","content":"Random channel, random messages!"},
		     {"id":2,"user":"User4","content":"I love random conversations!"}]
	}`, string(raw))
}

func TestService_RehydratesStoredState(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, env.store.Save(ctx, "ns", slots.SlotChannels, []chat.Channel{
		{ID: 42, Name: "ops", IsPublic: true, OwnerID: alice.ID},
	}))
	require.NoError(t, env.store.Save(ctx, "ns", slots.SlotChannelMessages, chat.ChannelMessages{
		42: {{ID: 1, User: "alice", Content: "deploy at noon"}},
	}))

	channels, active, err := env.svc.ListChannels(ctx, "ns")
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "ops", channels[0].Name)
	assert.Equal(t, int64(42), active)

	msgs, err := env.svc.Messages(ctx, "ns", 42)
	require.NoError(t, err)
	assert.Equal(t, []chat.Message{{ID: 1, User: "alice", Content: "deploy at noon"}}, msgs)
}

func TestService_CorruptSlotIsReportedAndNotCached(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, env.backend.Set(ctx, "ns:channels", []byte("[{")))

	_, _, err := env.svc.ListChannels(ctx, "ns")
	assert.ErrorIs(t, err, slots.ErrCorruptSlot)

	require.NoError(t, env.backend.Delete(ctx, "ns:channels"))
	channels, _, err := env.svc.ListChannels(ctx, "ns")
	require.NoError(t, err)
	assert.Len(t, channels, 2)
}

func TestService_ConcurrentFirstLoadReadsOnce(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := env.svc.ListChannels(ctx, "ns")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), env.backend.count("ns:channels"))
}

func TestService_SelectChannel(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	ch, err := env.svc.SelectChannel(ctx, "ns", 2)
	require.NoError(t, err)
	assert.Equal(t, "random", ch.Name)

	_, active, err := env.svc.ListChannels(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)

	_, err = env.svc.SelectChannel(ctx, "ns", 99)
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestService_CreateChannel(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	ch, err := env.svc.CreateChannel(ctx, "ns", "  design  ")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, chat.Channel{ID: 1700000001000, Name: "design", IsPublic: true, OwnerID: alice.ID}, *ch)

	msgs, err := env.svc.Messages(ctx, "ns", ch.ID)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)

	reloaded, _, err := env.newService().ListChannels(ctx, "ns")
	require.NoError(t, err)
	require.Len(t, reloaded, 3)
	assert.Equal(t, "design", reloaded[2].Name)

	raw, err := env.backend.Get(ctx, "ns:channelMessages")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"1700000001000":[]`)
}

func TestService_CreateChannelSameMillisecond(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	first, err := env.svc.CreateChannel(ctx, "ns", "a")
	require.NoError(t, err)
	second, err := env.svc.CreateChannel(ctx, "ns", "b")
	require.NoError(t, err)

	assert.Equal(t, first.ID+1, second.ID)
}

func TestService_CreateChannelInputs(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	ch, err := env.svc.CreateChannel(ctx, "ns", "   ")
	require.NoError(t, err)
	assert.Nil(t, ch, "blank name is a no-op")

	long, err := env.svc.CreateChannel(ctx, "ns", strings.Repeat("x", 1000))
	require.NoError(t, err)
	assert.Len(t, long.Name, 1000)

	_, err = env.svc.CreateChannel(ctx, "anonymous", "lobby")
	assert.ErrorIs(t, err, session.ErrNoSession)

	channels, _, err := env.svc.ListChannels(ctx, "ns")
	require.NoError(t, err)
	assert.Len(t, channels, 3, "only the long name was added")
}

func TestService_DeleteChannel(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	ch, err := env.svc.CreateChannel(ctx, "ns", "temp")
	require.NoError(t, err)
	_, err = env.svc.SelectChannel(ctx, "ns", ch.ID)
	require.NoError(t, err)

	deleted, err := env.svc.DeleteChannel(ctx, "ns", ch.ID)
	require.NoError(t, err)
	assert.Equal(t, "temp", deleted.Name)

	channels, active, err := env.svc.ListChannels(ctx, "ns")
	require.NoError(t, err)
	assert.Len(t, channels, 2)
	assert.Equal(t, int64(1), active, "active falls back to the first channel")

	var stored chat.ChannelMessages
	_, err = env.store.Load(ctx, "ns", slots.SlotChannelMessages, &stored)
	require.NoError(t, err)
	assert.NotContains(t, stored, ch.ID)
}

func TestService_DeleteChannelRules(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	_, err := env.svc.DeleteChannel(ctx, "ns", 1)
	assert.ErrorIs(t, err, ErrNotOwner, "default channels belong to the system")

	_, err = env.svc.DeleteChannel(ctx, "ns", 12345)
	assert.ErrorIs(t, err, ErrChannelNotFound)

	_, err = env.svc.DeleteChannel(ctx, "anonymous", 1)
	assert.ErrorIs(t, err, session.ErrNoSession)

	bob := &chat.User{ID: "1700000009999", Username: "bob"}
	ch, err := env.svc.CreateChannel(ctx, "ns", "alice-only")
	require.NoError(t, err)
	env.users.set("ns", bob)
	_, err = env.svc.DeleteChannel(ctx, "ns", ch.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestService_DeleteLastChannelLeavesNoActive(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, env.store.Save(ctx, "ns", slots.SlotChannels, []chat.Channel{
		{ID: 7, Name: "solo", IsPublic: true, OwnerID: alice.ID},
	}))

	_, err := env.svc.DeleteChannel(ctx, "ns", 7)
	require.NoError(t, err)

	channels, active, err := env.svc.ListChannels(ctx, "ns")
	require.NoError(t, err)
	assert.Empty(t, channels)
	assert.Zero(t, active)

	_, _, err = env.svc.SendMessage(ctx, "ns", 0, "anyone?")
	assert.ErrorIs(t, err, ErrNoActiveChannel)

	ws, err := env.svc.Workspace(ctx, "ns")
	require.NoError(t, err)
	assert.Nil(t, ws.ActiveChannel)
	assert.Empty(t, ws.Messages)

	reloaded, _, err := env.newService().ListChannels(ctx, "ns")
	require.NoError(t, err)
	assert.Empty(t, reloaded, "an emptied list is not reseeded")
}

func TestService_SendMessage(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	channelID, msg, err := env.svc.SendMessage(ctx, "ns", 0, "  hi all  ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), channelID)
	assert.Equal(t, &chat.Message{ID: 3, User: "alice", Content: "hi all"}, msg)

	channelID, msg, err = env.svc.SendMessage(ctx, "ns", 2, "over here")
	require.NoError(t, err)
	assert.Equal(t, int64(2), channelID)
	assert.Equal(t, int64(3), msg.ID)

	msgs, err := env.svc.Messages(ctx, "ns", 1)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "hi all", msgs[2].Content)

	reloaded, err := env.newService().Messages(ctx, "ns", 1)
	require.NoError(t, err)
	assert.Equal(t, msgs, reloaded)
}

func TestService_SendMessageInputs(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	_, msg, err := env.svc.SendMessage(ctx, "ns", 0, " \n\t ")
	require.NoError(t, err)
	assert.Nil(t, msg, "blank content is a no-op")

	_, big, err := env.svc.SendMessage(ctx, "ns", 0, strings.Repeat("y", 100_000))
	require.NoError(t, err)
	assert.Len(t, big.Content, 100_000)

	_, _, err = env.svc.SendMessage(ctx, "ns", 404, "hello")
	assert.ErrorIs(t, err, ErrChannelNotFound)

	_, _, err = env.svc.SendMessage(ctx, "anonymous", 0, "hello")
	assert.ErrorIs(t, err, session.ErrNoSession)

	msgs, err := env.svc.Messages(ctx, "ns", 1)
	require.NoError(t, err)
	assert.Len(t, msgs, 3, "only the large message was added")
}

func TestService_MessagesUnknownChannel(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.Messages(context.Background(), "ns", 99)
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestService_Workspace(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	mine, err := env.svc.CreateChannel(ctx, "ns", "mine")
	require.NoError(t, err)

	ws, err := env.svc.Workspace(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, alice, ws.User)
	require.Len(t, ws.Channels, 3)
	assert.False(t, ws.Channels[0].CanDelete)
	assert.False(t, ws.Channels[1].CanDelete)
	assert.True(t, ws.Channels[2].CanDelete)
	assert.Equal(t, mine.ID, ws.Channels[2].ID)
	require.NotNil(t, ws.ActiveChannel)
	assert.Equal(t, "general", ws.ActiveChannel.Name)
	assert.Len(t, ws.Messages, 2)

	_, err = env.svc.Workspace(ctx, "anonymous")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestService_WorkspacesAreIsolated(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	env.users.set("other", &chat.User{ID: "2", Username: "carol"})

	_, err := env.svc.CreateChannel(ctx, "ns", "private-to-ns")
	require.NoError(t, err)

	channels, _, err := env.svc.ListChannels(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, channels, 2)
}

func TestService_ForgetReloadsFromStorage(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	_, err := env.svc.SelectChannel(ctx, "ns", 2)
	require.NoError(t, err)
	_, _, err = env.svc.ListChannels(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 2, env.svc.Cached())
	reads := env.backend.count("ns:channels")

	env.svc.Forget("ns")
	assert.Equal(t, 1, env.svc.Cached())

	_, active, err := env.svc.ListChannels(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, int64(1), active, "active resets to the first channel")
	assert.Equal(t, reads+1, env.backend.count("ns:channels"))

	env.svc.ForgetAll()
	assert.Zero(t, env.svc.Cached())
}

func TestService_CancelledLoaderDoesNotFailLoad(t *testing.T) {
	env := setupTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	channels, _, err := env.svc.ListChannels(ctx, "ns")
	require.NoError(t, err)
	assert.Len(t, channels, 2)
}
