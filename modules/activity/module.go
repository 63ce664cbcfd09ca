package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/channel-board-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// ActivityModule records session and channel events in a per-client feed.
// It subscribes to domain events using the EventConsumerModule interface.
type ActivityModule struct {
	feed   *Feed
	logger types.Logger
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)

func NewModule(logger types.Logger) *ActivityModule {
	return &ActivityModule{
		feed:   NewFeed(DefaultCapacity),
		logger: logger,
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.SessionStartedV1, m.handleSessionStarted, m); err != nil {
		return fmt.Errorf("failed to register SessionStarted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.SessionEndedV1, m.handleSessionEnded, m); err != nil {
		return fmt.Errorf("failed to register SessionEnded consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ChannelCreatedV1, m.handleChannelCreated, m); err != nil {
		return fmt.Errorf("failed to register ChannelCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ChannelDeletedV1, m.handleChannelDeleted, m); err != nil {
		return fmt.Errorf("failed to register ChannelDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.MessageSentV1, m.handleMessageSent, m); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"SessionStarted", "SessionEnded", "ChannelCreated", "ChannelDeleted", "MessageSent"})
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent-activity", json.Unmarshal, json.Marshal, m.recentActivity,
	); err != nil {
		return fmt.Errorf("failed to register recent-activity service: %w", err)
	}
	return nil
}

func (m *ActivityModule) handleSessionStarted(_ context.Context, event events.SessionStartedEvent, _ *mono.Msg) error {
	verb := "logged in"
	if event.Mode == "signup" {
		verb = "signed up"
	}
	m.feed.Record(Entry{
		Type:      TypeSessionStarted,
		Namespace: event.Namespace,
		Summary:   fmt.Sprintf("%s %s", event.Username, verb),
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *ActivityModule) handleSessionEnded(_ context.Context, event events.SessionEndedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Type:      TypeSessionEnded,
		Namespace: event.Namespace,
		Summary:   fmt.Sprintf("%s logged out", event.Username),
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *ActivityModule) handleChannelCreated(_ context.Context, event events.ChannelCreatedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Type:      TypeChannelCreated,
		Namespace: event.Namespace,
		Summary:   fmt.Sprintf("Channel #%s created", event.ChannelName),
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *ActivityModule) handleChannelDeleted(_ context.Context, event events.ChannelDeletedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Type:      TypeChannelDeleted,
		Namespace: event.Namespace,
		Summary:   fmt.Sprintf("Channel #%s deleted", event.ChannelName),
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *ActivityModule) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.logger.Debug("Message sent", "namespace", event.Namespace, "channel_id", event.ChannelID, "message_id", event.MessageID)
	m.feed.Record(Entry{
		Type:      TypeMessageSent,
		Namespace: event.Namespace,
		Summary:   fmt.Sprintf("%s posted in channel %d", event.Username, event.ChannelID),
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *ActivityModule) recentActivity(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	entries := m.feed.Recent(req.Namespace, req.Limit)
	return RecentResponse{Entries: entries, Total: len(entries)}, nil
}

// Recent returns the newest entries of a client.
func (m *ActivityModule) Recent(namespace string, limit int) []Entry {
	return m.feed.Recent(namespace, limit)
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Activity module started - listening for session and channel events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped")
	return nil
}
