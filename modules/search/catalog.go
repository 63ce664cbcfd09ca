// Package search filters the public channel catalog by name.
package search

import (
	"strings"

	"github.com/example/channel-board-demo/domain/chat"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultCatalog returns the channels the search page is built over.
// It is fixed; channels created in a workspace are not searched.
func DefaultCatalog() []chat.Channel {
	return []chat.Channel{
		{ID: 1, Name: "general", IsPublic: true, OwnerID: chat.SystemOwnerID},
		{ID: 2, Name: "random", IsPublic: true, OwnerID: chat.SystemOwnerID},
	}
}

// Catalog matches queries against a fixed list of channels.
type Catalog struct {
	channels []chat.Channel
	folded   []string
}

// NewCatalog indexes the public channels of channels.
func NewCatalog(channels []chat.Channel) *Catalog {
	c := &Catalog{}
	for _, ch := range channels {
		if !ch.IsPublic {
			continue
		}
		c.channels = append(c.channels, ch)
		c.folded = append(c.folded, fold(ch.Name))
	}
	return c
}

// Search returns the public channels whose name contains query, ignoring case.
// The query is matched as given, so an empty query matches every channel.
func (c *Catalog) Search(query string) []chat.Channel {
	q := fold(query)
	out := make([]chat.Channel, 0, len(c.channels))
	for i, ch := range c.channels {
		if strings.Contains(c.folded[i], q) {
			out = append(out, ch)
		}
	}
	return out
}

// fold normalises s for caseless comparison. A Caser is stateful, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
