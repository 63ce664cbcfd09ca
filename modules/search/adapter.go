package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

type searchAdapter struct {
	container mono.ServiceContainer
}

// NewSearchAdapter creates a SearchPort from the search module's ServiceContainer.
func NewSearchAdapter(container mono.ServiceContainer) SearchPort {
	if container == nil {
		panic("search adapter requires non-nil ServiceContainer")
	}
	return &searchAdapter{container: container}
}

// Search runs a query via the search service.
func (a *searchAdapter) Search(ctx context.Context, query string) (*SearchResponse, error) {
	req := SearchRequest{Query: query}
	var resp SearchResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"search",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("search service call failed: %w", err)
	}
	return &resp, nil
}
