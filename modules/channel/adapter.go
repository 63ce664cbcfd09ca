package channel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/channel-board-demo/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// channelAdapter wraps ServiceContainer for type-safe cross-module communication.
// It implements ChannelPort.
type channelAdapter struct {
	container mono.ServiceContainer
}

// NewChannelAdapter creates a ChannelPort from the channel module's ServiceContainer.
func NewChannelAdapter(container mono.ServiceContainer) ChannelPort {
	if container == nil {
		panic("channel adapter requires non-nil ServiceContainer")
	}
	return &channelAdapter{container: container}
}

// callService invokes a request-reply service of the channel module.
func callService[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// ListChannels lists the channels of a workspace via the list-channels service.
func (a *channelAdapter) ListChannels(ctx context.Context, namespace string) (*ListChannelsResponse, error) {
	req := NamespaceRequest{Namespace: namespace}
	var resp ListChannelsResponse
	if err := callService(ctx, a.container, "list-channels", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "" {
		return nil, errorFromCode(resp.Code)
	}
	return &resp, nil
}

// SelectChannel changes the active channel via the select-channel service.
func (a *channelAdapter) SelectChannel(ctx context.Context, namespace string, channelID int64) (*chat.Channel, error) {
	req := ChannelRequest{Namespace: namespace, ChannelID: channelID}
	var resp ChannelResponse
	if err := callService(ctx, a.container, "select-channel", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "" {
		return nil, errorFromCode(resp.Code)
	}
	return resp.Channel, nil
}

// CreateChannel creates a channel via the create-channel service.
func (a *channelAdapter) CreateChannel(ctx context.Context, namespace, name string) (*chat.Channel, error) {
	req := CreateChannelRequest{Namespace: namespace, Name: name}
	var resp ChannelResponse
	if err := callService(ctx, a.container, "create-channel", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "" {
		return nil, errorFromCode(resp.Code)
	}
	if !resp.Changed {
		return nil, nil
	}
	return resp.Channel, nil
}

// DeleteChannel deletes a channel via the delete-channel service.
func (a *channelAdapter) DeleteChannel(ctx context.Context, namespace string, channelID int64) error {
	req := ChannelRequest{Namespace: namespace, ChannelID: channelID}
	var resp ChannelResponse
	if err := callService(ctx, a.container, "delete-channel", &req, &resp); err != nil {
		return err
	}
	if resp.Code != "" {
		return errorFromCode(resp.Code)
	}
	return nil
}

// SendMessage posts a message via the send-message service.
func (a *channelAdapter) SendMessage(ctx context.Context, namespace string, channelID int64, content string) (*chat.Message, error) {
	req := SendMessageRequest{Namespace: namespace, ChannelID: channelID, Content: content}
	var resp MessageResponse
	if err := callService(ctx, a.container, "send-message", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "" {
		return nil, errorFromCode(resp.Code)
	}
	if !resp.Sent {
		return nil, nil
	}
	return resp.Message, nil
}

// GetMessages reads the messages of a channel via the get-messages service.
func (a *channelAdapter) GetMessages(ctx context.Context, namespace string, channelID int64) ([]chat.Message, error) {
	req := ChannelRequest{Namespace: namespace, ChannelID: channelID}
	var resp MessagesResponse
	if err := callService(ctx, a.container, "get-messages", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "" {
		return nil, errorFromCode(resp.Code)
	}
	if resp.Messages == nil {
		return []chat.Message{}, nil
	}
	return resp.Messages, nil
}

// Workspace reads the board view via the workspace service.
func (a *channelAdapter) Workspace(ctx context.Context, namespace string) (*Workspace, error) {
	req := NamespaceRequest{Namespace: namespace}
	var resp WorkspaceResponse
	if err := callService(ctx, a.container, "workspace", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "" {
		return nil, errorFromCode(resp.Code)
	}
	return resp.Workspace, nil
}
