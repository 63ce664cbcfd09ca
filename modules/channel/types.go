package channel

import (
	"context"
	"errors"

	"github.com/example/channel-board-demo/domain/chat"
	"github.com/example/channel-board-demo/modules/session"
	"github.com/example/channel-board-demo/modules/slots"
)

var (
	// ErrChannelNotFound is returned when a channel ID is not in the workspace.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrNotOwner is returned when a user deletes a channel owned by someone else.
	ErrNotOwner = errors.New("only the channel owner can delete it")
	// ErrNoActiveChannel is returned when a message has no target channel.
	ErrNoActiveChannel = errors.New("no active channel")
)

// ChannelView is a channel as shown to the signed-in user.
type ChannelView struct {
	chat.Channel
	CanDelete bool `json:"canDelete"`
}

// Workspace is the main board view of a client.
type Workspace struct {
	User          *chat.User     `json:"user"`
	Channels      []ChannelView  `json:"channels"`
	ActiveChannel *chat.Channel  `json:"activeChannel"`
	Messages      []chat.Message `json:"messages"`
}

// NamespaceRequest addresses the workspace of one client.
type NamespaceRequest struct {
	Namespace string `json:"namespace"`
}

// ChannelRequest addresses one channel of a workspace.
type ChannelRequest struct {
	Namespace string `json:"namespace"`
	ChannelID int64  `json:"channel_id"`
}

// CreateChannelRequest is the request for the create-channel service.
type CreateChannelRequest struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// SendMessageRequest is the request for the send-message service.
// A zero ChannelID targets the active channel.
type SendMessageRequest struct {
	Namespace string `json:"namespace"`
	ChannelID int64  `json:"channel_id,omitempty"`
	Content   string `json:"content"`
}

// ListChannelsResponse is the response for the list-channels service.
type ListChannelsResponse struct {
	Channels []chat.Channel `json:"channels"`
	ActiveID int64          `json:"active_id,omitempty"`
	Total    int            `json:"total"`
	Code     string         `json:"code,omitempty"`
}

// ChannelResponse carries a channel touched by a mutation.
// Changed is false when the request was a no-op.
type ChannelResponse struct {
	Channel *chat.Channel `json:"channel,omitempty"`
	Changed bool          `json:"changed"`
	Code    string        `json:"code,omitempty"`
}

// MessageResponse is the response for the send-message service.
type MessageResponse struct {
	ChannelID int64         `json:"channel_id,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
	Sent      bool          `json:"sent"`
	Code      string        `json:"code,omitempty"`
}

// MessagesResponse is the response for the get-messages service.
type MessagesResponse struct {
	ChannelID int64          `json:"channel_id"`
	Messages  []chat.Message `json:"messages"`
	Total     int            `json:"total"`
	Code      string         `json:"code,omitempty"`
}

// WorkspaceResponse is the response for the workspace service.
type WorkspaceResponse struct {
	Workspace *Workspace `json:"workspace,omitempty"`
	Code      string     `json:"code,omitempty"`
}

// ChannelPort defines the channel operations available to other modules.
type ChannelPort interface {
	ListChannels(ctx context.Context, namespace string) (*ListChannelsResponse, error)
	SelectChannel(ctx context.Context, namespace string, channelID int64) (*chat.Channel, error)
	// CreateChannel returns nil and no error when the name is blank.
	CreateChannel(ctx context.Context, namespace, name string) (*chat.Channel, error)
	DeleteChannel(ctx context.Context, namespace string, channelID int64) error
	// SendMessage returns nil and no error when the content is blank.
	SendMessage(ctx context.Context, namespace string, channelID int64, content string) (*chat.Message, error)
	GetMessages(ctx context.Context, namespace string, channelID int64) ([]chat.Message, error)
	Workspace(ctx context.Context, namespace string) (*Workspace, error)
}

// UserSource resolves the signed-in user of a client.
type UserSource interface {
	CurrentUser(ctx context.Context, namespace string) (*chat.User, error)
}

const (
	codeChannelNotFound = "channel_not_found"
	codeNotOwner        = "not_owner"
	codeNoActiveChannel = "no_active_channel"
	codeNoSession       = "no_session"
	codeCorruptSlot     = "corrupt_slot"
)

var codedErrors = map[string]error{
	codeChannelNotFound: ErrChannelNotFound,
	codeNotOwner:        ErrNotOwner,
	codeNoActiveChannel: ErrNoActiveChannel,
	codeNoSession:       session.ErrNoSession,
	codeCorruptSlot:     slots.ErrCorruptSlot,
}

// errorCode maps a domain error to its wire code. Unknown errors have no code.
func errorCode(err error) string {
	for code, target := range codedErrors {
		if errors.Is(err, target) {
			return code
		}
	}
	return ""
}

func errorFromCode(code string) error {
	if err, ok := codedErrors[code]; ok {
		return err
	}
	return errors.New(code)
}
