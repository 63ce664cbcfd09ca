package chat

// SystemOwnerID owns the channels every workspace starts with.
const SystemOwnerID = "system"

// User represents the signed-in user of a client.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Channel represents a chat channel.
type Channel struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsPublic bool   `json:"isPublic"`
	OwnerID  string `json:"ownerId"`
}

// Message represents a chat message posted to a channel.
type Message struct {
	ID      int64  `json:"id"`
	User    string `json:"user"`
	Content string `json:"content"`
}

// ChannelMessages maps a channel ID to its messages in posting order.
// JSON object keys are the decimal channel IDs.
type ChannelMessages map[int64][]Message

// DefaultChannels returns the channels a new workspace starts with.
func DefaultChannels() []Channel {
	return []Channel{
		{ID: 1, Name: "general", IsPublic: true, OwnerID: SystemOwnerID},
		{ID: 2, Name: "random", IsPublic: true, OwnerID: SystemOwnerID},
	}
}

// DefaultChannelMessages returns the seed conversation for the default channels.
func DefaultChannelMessages() ChannelMessages {
	return ChannelMessages{
		1: {
			{ID: 1, User: "User1", Content: "Hello, everyone in general!"},
			{ID: 2, User: "User2", Content: "Hi there! How are you all doing in general?"},
		},
		2: {
			{ID: 1, User: "User3", Content: "Random channel, random messages!"},
			{ID: 2, User: "User4", Content: "I love random conversations!"},
		},
	}
}
