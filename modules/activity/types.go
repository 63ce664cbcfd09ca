package activity

import "context"

// RecentRequest is the request for the recent-activity service.
type RecentRequest struct {
	Namespace string `json:"namespace"`
	Limit     int    `json:"limit,omitempty"`
}

// RecentResponse is the response for the recent-activity service.
type RecentResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// ActivityPort defines the activity operations available to other modules.
type ActivityPort interface {
	Recent(ctx context.Context, namespace string, limit int) ([]Entry, error)
}
