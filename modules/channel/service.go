package channel

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/example/channel-board-demo/domain/chat"
	"github.com/example/channel-board-demo/modules/slots"
	"golang.org/x/sync/singleflight"
)

// workspace is the in-memory state of one client.
// The active channel is not persisted; 0 means none.
type workspace struct {
	mu       sync.Mutex
	channels []chat.Channel
	messages chat.ChannelMessages
	active   int64
}

func (w *workspace) indexOf(id int64) int {
	return slices.IndexFunc(w.channels, func(ch chat.Channel) bool { return ch.ID == id })
}

// nextChannelID uses the clock in milliseconds, moved past any existing ID.
func (w *workspace) nextChannelID(now time.Time) int64 {
	id := now.UnixMilli()
	for _, ch := range w.channels {
		if ch.ID >= id {
			id = ch.ID + 1
		}
	}
	return id
}

func (w *workspace) messagesOf(id int64) []chat.Message {
	out := make([]chat.Message, len(w.messages[id]))
	copy(out, w.messages[id])
	return out
}

// Service is the channel and message store. Workspaces are loaded from the
// slot store on first use and written back on every change.
type Service struct {
	slots slots.Store
	users UserSource
	now   func() time.Time

	mu         sync.Mutex
	workspaces map[string]*workspace
	loads      singleflight.Group
}

// NewService creates a channel service over store, resolving users through users.
func NewService(store slots.Store, users UserSource) *Service {
	return &Service{
		slots:      store,
		users:      users,
		now:        time.Now,
		workspaces: make(map[string]*workspace),
	}
}

// load returns the cached workspace of namespace, rehydrating it on first use.
func (s *Service) load(ctx context.Context, namespace string) (*workspace, error) {
	s.mu.Lock()
	ws, ok := s.workspaces[namespace]
	s.mu.Unlock()
	if ok {
		return ws, nil
	}

	v, err, _ := s.loads.Do(namespace, func() (any, error) {
		s.mu.Lock()
		if ws, ok := s.workspaces[namespace]; ok {
			s.mu.Unlock()
			return ws, nil
		}
		s.mu.Unlock()

		// Every waiter shares this load, so it ignores the first caller's cancellation.
		ws, err := s.rehydrate(context.WithoutCancel(ctx), namespace)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.workspaces[namespace] = ws
		s.mu.Unlock()
		return ws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*workspace), nil
}

// Forget drops the cached workspace of namespace. The next use reloads it
// from the slot store with the first channel active.
func (s *Service) Forget(namespace string) {
	s.mu.Lock()
	delete(s.workspaces, namespace)
	s.mu.Unlock()
}

// ForgetAll drops every cached workspace.
func (s *Service) ForgetAll() {
	s.mu.Lock()
	clear(s.workspaces)
	s.mu.Unlock()
}

// Cached returns the number of workspaces held in memory.
func (s *Service) Cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

// rehydrate reads both slots, seeding and storing the defaults for empty ones.
func (s *Service) rehydrate(ctx context.Context, namespace string) (*workspace, error) {
	var channels []chat.Channel
	found, err := s.slots.Load(ctx, namespace, slots.SlotChannels, &channels)
	if err != nil {
		return nil, err
	}
	if !found {
		channels = chat.DefaultChannels()
		if err := s.slots.Save(ctx, namespace, slots.SlotChannels, channels); err != nil {
			return nil, err
		}
	}

	var messages chat.ChannelMessages
	found, err = s.slots.Load(ctx, namespace, slots.SlotChannelMessages, &messages)
	if err != nil {
		return nil, err
	}
	if !found {
		messages = chat.DefaultChannelMessages()
		if err := s.slots.Save(ctx, namespace, slots.SlotChannelMessages, messages); err != nil {
			return nil, err
		}
	}
	if messages == nil {
		messages = chat.ChannelMessages{}
	}

	ws := &workspace{channels: channels, messages: messages}
	if len(channels) > 0 {
		ws.active = channels[0].ID
	}
	return ws, nil
}

// ListChannels returns the channels in creation order and the active channel ID.
func (s *Service) ListChannels(ctx context.Context, namespace string) ([]chat.Channel, int64, error) {
	ws, err := s.load(ctx, namespace)
	if err != nil {
		return nil, 0, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	return slices.Clone(ws.channels), ws.active, nil
}

// SelectChannel makes channelID the active channel.
func (s *Service) SelectChannel(ctx context.Context, namespace string, channelID int64) (*chat.Channel, error) {
	ws, err := s.load(ctx, namespace)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	i := ws.indexOf(channelID)
	if i < 0 {
		return nil, ErrChannelNotFound
	}
	ws.active = channelID
	ch := ws.channels[i]
	return &ch, nil
}

// CreateChannel appends a public channel owned by the signed-in user.
// A blank name is ignored and yields a nil channel.
func (s *Service) CreateChannel(ctx context.Context, namespace, name string) (*chat.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	user, err := s.users.CurrentUser(ctx, namespace)
	if err != nil {
		return nil, err
	}
	ws, err := s.load(ctx, namespace)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ch := chat.Channel{
		ID:       ws.nextChannelID(s.now()),
		Name:     name,
		IsPublic: true,
		OwnerID:  user.ID,
	}
	channels := append(slices.Clone(ws.channels), ch)
	messages := withMessages(ws.messages, ch.ID, []chat.Message{})

	if err := s.persist(ctx, namespace, channels, messages); err != nil {
		return nil, err
	}
	ws.channels, ws.messages = channels, messages
	return &ch, nil
}

// DeleteChannel removes a channel and its messages. Only the owner may delete.
// When the active channel is removed the first remaining channel becomes active.
func (s *Service) DeleteChannel(ctx context.Context, namespace string, channelID int64) (*chat.Channel, error) {
	user, err := s.users.CurrentUser(ctx, namespace)
	if err != nil {
		return nil, err
	}
	ws, err := s.load(ctx, namespace)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	i := ws.indexOf(channelID)
	if i < 0 {
		return nil, ErrChannelNotFound
	}
	deleted := ws.channels[i]
	if deleted.OwnerID != user.ID {
		return nil, ErrNotOwner
	}

	channels := slices.Delete(slices.Clone(ws.channels), i, i+1)
	messages := withoutMessages(ws.messages, channelID)

	if err := s.persist(ctx, namespace, channels, messages); err != nil {
		return nil, err
	}
	ws.channels, ws.messages = channels, messages

	if ws.active == channelID {
		ws.active = 0
		if len(ws.channels) > 0 {
			ws.active = ws.channels[0].ID
		}
	}
	return &deleted, nil
}

// SendMessage appends a message from the signed-in user to channelID, or to
// the active channel when channelID is 0. Blank content is ignored and yields
// a nil message.
func (s *Service) SendMessage(ctx context.Context, namespace string, channelID int64, content string) (int64, *chat.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, nil, nil
	}

	user, err := s.users.CurrentUser(ctx, namespace)
	if err != nil {
		return 0, nil, err
	}
	ws, err := s.load(ctx, namespace)
	if err != nil {
		return 0, nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	target := channelID
	if target == 0 {
		target = ws.active
	}
	if target == 0 {
		return 0, nil, ErrNoActiveChannel
	}
	if ws.indexOf(target) < 0 {
		return 0, nil, ErrChannelNotFound
	}

	current := ws.messages[target]
	msg := chat.Message{
		ID:      int64(len(current)) + 1,
		User:    user.Username,
		Content: content,
	}
	messages := withMessages(ws.messages, target, append(slices.Clip(current), msg))

	if err := s.slots.Save(ctx, namespace, slots.SlotChannelMessages, messages); err != nil {
		return 0, nil, err
	}
	ws.messages = messages
	return target, &msg, nil
}

// Messages returns the messages of a channel in posting order.
func (s *Service) Messages(ctx context.Context, namespace string, channelID int64) ([]chat.Message, error) {
	ws, err := s.load(ctx, namespace)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.indexOf(channelID) < 0 {
		return nil, ErrChannelNotFound
	}
	return ws.messagesOf(channelID), nil
}

// Workspace assembles the board view for the signed-in user.
func (s *Service) Workspace(ctx context.Context, namespace string) (*Workspace, error) {
	user, err := s.users.CurrentUser(ctx, namespace)
	if err != nil {
		return nil, err
	}
	ws, err := s.load(ctx, namespace)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	view := &Workspace{
		User:     user,
		Channels: make([]ChannelView, 0, len(ws.channels)),
		Messages: []chat.Message{},
	}
	for _, ch := range ws.channels {
		view.Channels = append(view.Channels, ChannelView{Channel: ch, CanDelete: ch.OwnerID == user.ID})
	}
	if i := ws.indexOf(ws.active); i >= 0 {
		active := ws.channels[i]
		view.ActiveChannel = &active
		view.Messages = ws.messagesOf(active.ID)
	}
	return view, nil
}

// persist writes both slots. The two writes are not atomic.
func (s *Service) persist(ctx context.Context, namespace string, channels []chat.Channel, messages chat.ChannelMessages) error {
	if err := s.slots.Save(ctx, namespace, slots.SlotChannels, channels); err != nil {
		return fmt.Errorf("failed to persist channels: %w", err)
	}
	if err := s.slots.Save(ctx, namespace, slots.SlotChannelMessages, messages); err != nil {
		return fmt.Errorf("failed to persist messages: %w", err)
	}
	return nil
}

// withMessages returns a shallow copy of m with the list of id replaced.
func withMessages(m chat.ChannelMessages, id int64, list []chat.Message) chat.ChannelMessages {
	out := make(chat.ChannelMessages, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[id] = list
	return out
}

func withoutMessages(m chat.ChannelMessages, id int64) chat.ChannelMessages {
	out := make(chat.ChannelMessages, len(m))
	for k, v := range m {
		if k != id {
			out[k] = v
		}
	}
	return out
}
