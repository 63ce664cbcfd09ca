package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// SearchModule provides the search service over the channel catalog.
type SearchModule struct {
	catalog *Catalog
	logger  types.Logger
}

var _ mono.Module = (*SearchModule)(nil)
var _ mono.ServiceProviderModule = (*SearchModule)(nil)

func NewModule(logger types.Logger) *SearchModule {
	return &SearchModule{
		catalog: NewCatalog(DefaultCatalog()),
		logger:  logger,
	}
}

func (m *SearchModule) Name() string {
	return "search"
}

func (m *SearchModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "search", json.Unmarshal, json.Marshal, m.search,
	); err != nil {
		return fmt.Errorf("failed to register search service: %w", err)
	}

	m.logger.Info("Registered search services", "services", []string{"search"})
	return nil
}

func (m *SearchModule) search(_ context.Context, req SearchRequest, _ *mono.Msg) (SearchResponse, error) {
	channels := m.catalog.Search(req.Query)
	return SearchResponse{Query: req.Query, Channels: channels, Total: len(channels)}, nil
}

func (m *SearchModule) Start(_ context.Context) error {
	m.logger.Info("Search module started", "catalog_size", len(m.catalog.channels))
	return nil
}

func (m *SearchModule) Stop(_ context.Context) error {
	m.logger.Info("Search module stopped")
	return nil
}
