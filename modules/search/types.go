package search

import (
	"context"

	"github.com/example/channel-board-demo/domain/chat"
)

// SearchRequest is the request for the search service.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse is the response for the search service.
type SearchResponse struct {
	Query    string         `json:"query"`
	Channels []chat.Channel `json:"channels"`
	Total    int            `json:"total"`
}

// SearchPort defines the search operation available to other modules.
type SearchPort interface {
	Search(ctx context.Context, query string) (*SearchResponse, error)
}
