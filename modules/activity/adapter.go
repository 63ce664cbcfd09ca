package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

type activityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates an ActivityPort from the activity module's ServiceContainer.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	if container == nil {
		panic("activity adapter requires non-nil ServiceContainer")
	}
	return &activityAdapter{container: container}
}

// Recent reads a client's feed via the recent-activity service.
func (a *activityAdapter) Recent(ctx context.Context, namespace string, limit int) ([]Entry, error) {
	req := RecentRequest{Namespace: namespace, Limit: limit}
	var resp RecentResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"recent-activity",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("recent-activity service call failed: %w", err)
	}
	if resp.Entries == nil {
		return []Entry{}, nil
	}
	return resp.Entries, nil
}
