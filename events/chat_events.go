package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// SessionStartedEvent is emitted when a client logs in or signs up.
type SessionStartedEvent struct {
	Namespace string    `json:"namespace"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Mode      string    `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionEndedEvent is emitted when a client logs out.
type SessionEndedEvent struct {
	Namespace string    `json:"namespace"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// ChannelCreatedEvent is emitted when a channel is added to a workspace.
type ChannelCreatedEvent struct {
	Namespace   string    `json:"namespace"`
	ChannelID   int64     `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	OwnerID     string    `json:"owner_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChannelDeletedEvent is emitted when a channel is removed from a workspace.
type ChannelDeletedEvent struct {
	Namespace   string    `json:"namespace"`
	ChannelID   int64     `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	DeletedBy   string    `json:"deleted_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// MessageSentEvent is emitted when a message is appended to a channel.
type MessageSentEvent struct {
	Namespace string    `json:"namespace"`
	ChannelID int64     `json:"channel_id"`
	MessageID int64     `json:"message_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the channel board.
var (
	SessionStartedV1 = helper.EventDefinition[SessionStartedEvent](
		"session",
		"SessionStarted",
		"v1",
	)

	SessionEndedV1 = helper.EventDefinition[SessionEndedEvent](
		"session",
		"SessionEnded",
		"v1",
	)

	ChannelCreatedV1 = helper.EventDefinition[ChannelCreatedEvent](
		"channel",
		"ChannelCreated",
		"v1",
	)

	ChannelDeletedV1 = helper.EventDefinition[ChannelDeletedEvent](
		"channel",
		"ChannelDeleted",
		"v1",
	)

	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"channel",
		"MessageSent",
		"v1",
	)
)
