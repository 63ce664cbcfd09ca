package api

import (
	"github.com/example/channel-board-demo/domain/chat"
	"github.com/example/channel-board-demo/modules/activity"
)

// CredentialsRequest is the HTTP request for login and signup.
type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// AuthPageResponse is the view model of the login screen.
type AuthPageResponse struct {
	Mode      string `json:"mode"`
	Alternate string `json:"alternate"`
}

// AuthResponse is the HTTP response after a successful login or signup.
type AuthResponse struct {
	User     *chat.User `json:"user"`
	Redirect string     `json:"redirect"`
}

// SearchPageResponse is the view model of the search screen.
type SearchPageResponse struct {
	Query    string         `json:"query"`
	Channels []chat.Channel `json:"channels"`
	Total    int            `json:"total"`
}

// CreateChannelRequest is the HTTP request for creating a channel.
type CreateChannelRequest struct {
	Name string `json:"name" form:"name"`
}

// SendMessageRequest is the HTTP request for posting a message.
type SendMessageRequest struct {
	Content string `json:"content" form:"content"`
}

// ChannelListResponse is the HTTP response for listing channels.
type ChannelListResponse struct {
	Channels []chat.Channel `json:"channels"`
	ActiveID int64          `json:"activeId,omitempty"`
	Total    int            `json:"total"`
}

// MessageListResponse is the HTTP response for listing messages.
type MessageListResponse struct {
	ChannelID int64          `json:"channelId"`
	Messages  []chat.Message `json:"messages"`
	Total     int            `json:"total"`
}

// ActivityResponse is the HTTP response for the activity feed.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
