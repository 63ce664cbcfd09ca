package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/channel-board-demo/events"
	"github.com/example/channel-board-demo/modules/session"
	"github.com/example/channel-board-demo/modules/slots"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// ChannelModule provides the channel and message services (core domain).
type ChannelModule struct {
	slotsPlugin *slots.PluginModule
	sessionPort session.SessionPort
	service     *Service
	eventBus    mono.EventBus
	logger      types.Logger
}

var (
	_ mono.Module                = (*ChannelModule)(nil)
	_ mono.ServiceProviderModule = (*ChannelModule)(nil)
	_ mono.DependentModule       = (*ChannelModule)(nil)
	_ mono.EventEmitterModule    = (*ChannelModule)(nil)
	_ mono.EventConsumerModule   = (*ChannelModule)(nil)
	_ mono.UsePluginModule       = (*ChannelModule)(nil)
)

func NewModule(logger types.Logger) *ChannelModule {
	return &ChannelModule{logger: logger}
}

func (m *ChannelModule) Name() string {
	return "channel"
}

func (m *ChannelModule) Dependencies() []string {
	return []string{"session"}
}

func (m *ChannelModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "session" {
		m.sessionPort = session.NewSessionAdapter(container)
	}
}

func (m *ChannelModule) SetPlugin(alias string, plugin mono.PluginModule) {
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

func (m *ChannelModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *ChannelModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.ChannelCreatedV1.ToBase(),
		events.ChannelDeletedV1.ToBase(),
		events.MessageSentV1.ToBase(),
	}
}

// RegisterEventConsumers drops a client's cached workspace when it logs out.
func (m *ChannelModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.SessionEndedV1, m.handleSessionEnded, m); err != nil {
		return fmt.Errorf("failed to register SessionEnded consumer: %w", err)
	}
	return nil
}

func (m *ChannelModule) handleSessionEnded(_ context.Context, event events.SessionEndedEvent, _ *mono.Msg) error {
	if m.service != nil {
		m.service.Forget(event.Namespace)
	}
	return nil
}

func (m *ChannelModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-channels", json.Unmarshal, json.Marshal, m.listChannels,
	); err != nil {
		return fmt.Errorf("failed to register list-channels service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "select-channel", json.Unmarshal, json.Marshal, m.selectChannel,
	); err != nil {
		return fmt.Errorf("failed to register select-channel service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-channel", json.Unmarshal, json.Marshal, m.createChannel,
	); err != nil {
		return fmt.Errorf("failed to register create-channel service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-channel", json.Unmarshal, json.Marshal, m.deleteChannel,
	); err != nil {
		return fmt.Errorf("failed to register delete-channel service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "send-message", json.Unmarshal, json.Marshal, m.sendMessage,
	); err != nil {
		return fmt.Errorf("failed to register send-message service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-messages", json.Unmarshal, json.Marshal, m.getMessages,
	); err != nil {
		return fmt.Errorf("failed to register get-messages service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "workspace", json.Unmarshal, json.Marshal, m.workspace,
	); err != nil {
		return fmt.Errorf("failed to register workspace service: %w", err)
	}

	m.logger.Info("Registered channel services",
		"services", []string{"list-channels", "select-channel", "create-channel", "delete-channel", "send-message", "get-messages", "workspace"})
	return nil
}

func (m *ChannelModule) Start(_ context.Context) error {
	if m.service == nil {
		if m.sessionPort == nil {
			return fmt.Errorf("sessionPort dependency not set")
		}
		if m.slotsPlugin == nil || m.slotsPlugin.Port() == nil {
			return fmt.Errorf("slots plugin not set - ensure 'slots' plugin is registered")
		}
		m.service = NewService(m.slotsPlugin.Port(), m.sessionPort)
	}
	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, channel events will not be published")
	}
	m.logger.Info("Channel module started", "depends_on", "session")
	return nil
}

func (m *ChannelModule) Stop(_ context.Context) error {
	if m.service != nil {
		m.service.ForgetAll()
	}
	m.logger.Info("Channel module stopped")
	return nil
}

// codeOrError turns known domain errors into a reply code and passes the rest through.
func codeOrError(err error) (string, error) {
	if code := errorCode(err); code != "" {
		return code, nil
	}
	return "", err
}

func (m *ChannelModule) listChannels(ctx context.Context, req NamespaceRequest, _ *mono.Msg) (ListChannelsResponse, error) {
	channels, active, err := m.service.ListChannels(ctx, req.Namespace)
	if err != nil {
		code, err := codeOrError(err)
		return ListChannelsResponse{Code: code}, err
	}
	return ListChannelsResponse{Channels: channels, ActiveID: active, Total: len(channels)}, nil
}

func (m *ChannelModule) selectChannel(ctx context.Context, req ChannelRequest, _ *mono.Msg) (ChannelResponse, error) {
	ch, err := m.service.SelectChannel(ctx, req.Namespace, req.ChannelID)
	if err != nil {
		code, err := codeOrError(err)
		return ChannelResponse{Code: code}, err
	}
	return ChannelResponse{Channel: ch, Changed: true}, nil
}

func (m *ChannelModule) createChannel(ctx context.Context, req CreateChannelRequest, _ *mono.Msg) (ChannelResponse, error) {
	ch, err := m.service.CreateChannel(ctx, req.Namespace, req.Name)
	if err != nil {
		code, err := codeOrError(err)
		return ChannelResponse{Code: code}, err
	}
	if ch == nil {
		return ChannelResponse{Changed: false}, nil
	}

	if m.eventBus != nil {
		event := events.ChannelCreatedEvent{
			Namespace:   req.Namespace,
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
			OwnerID:     ch.OwnerID,
			Timestamp:   time.Now(),
		}
		if err := events.ChannelCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish ChannelCreated event", "channel_id", ch.ID, "error", err)
		}
	}

	return ChannelResponse{Channel: ch, Changed: true}, nil
}

func (m *ChannelModule) deleteChannel(ctx context.Context, req ChannelRequest, _ *mono.Msg) (ChannelResponse, error) {
	ch, err := m.service.DeleteChannel(ctx, req.Namespace, req.ChannelID)
	if err != nil {
		code, err := codeOrError(err)
		return ChannelResponse{Code: code}, err
	}

	if m.eventBus != nil {
		event := events.ChannelDeletedEvent{
			Namespace:   req.Namespace,
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
			DeletedBy:   ch.OwnerID,
			Timestamp:   time.Now(),
		}
		if err := events.ChannelDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish ChannelDeleted event", "channel_id", ch.ID, "error", err)
		}
	}

	return ChannelResponse{Channel: ch, Changed: true}, nil
}

func (m *ChannelModule) sendMessage(ctx context.Context, req SendMessageRequest, _ *mono.Msg) (MessageResponse, error) {
	channelID, msg, err := m.service.SendMessage(ctx, req.Namespace, req.ChannelID, req.Content)
	if err != nil {
		code, err := codeOrError(err)
		return MessageResponse{Code: code}, err
	}
	if msg == nil {
		return MessageResponse{Sent: false}, nil
	}

	if m.eventBus != nil {
		event := events.MessageSentEvent{
			Namespace: req.Namespace,
			ChannelID: channelID,
			MessageID: msg.ID,
			Username:  msg.User,
			Content:   msg.Content,
			Timestamp: time.Now(),
		}
		if err := events.MessageSentV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish MessageSent event", "channel_id", channelID, "error", err)
		}
	}

	return MessageResponse{ChannelID: channelID, Message: msg, Sent: true}, nil
}

func (m *ChannelModule) getMessages(ctx context.Context, req ChannelRequest, _ *mono.Msg) (MessagesResponse, error) {
	msgs, err := m.service.Messages(ctx, req.Namespace, req.ChannelID)
	if err != nil {
		code, err := codeOrError(err)
		return MessagesResponse{ChannelID: req.ChannelID, Code: code}, err
	}
	return MessagesResponse{ChannelID: req.ChannelID, Messages: msgs, Total: len(msgs)}, nil
}

func (m *ChannelModule) workspace(ctx context.Context, req NamespaceRequest, _ *mono.Msg) (WorkspaceResponse, error) {
	ws, err := m.service.Workspace(ctx, req.Namespace)
	if err != nil {
		code, err := codeOrError(err)
		return WorkspaceResponse{Code: code}, err
	}
	return WorkspaceResponse{Workspace: ws}, nil
}
