package marketplace

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/directory"
)

// BrowseRequest describes one directory page view.
type BrowseRequest struct {
	Actor       account.Actor
	Category    int
	Subcategory int
	Toggles     directory.Toggles
	Window      directory.Window
	Primary     directory.Key
	Secondary   directory.Key
}

// Directory loads the ticket and service listings shown to an actor.
type Directory struct {
	client *Client
	now    func() time.Time
}

// NewDirectory creates a Directory backed by client.
func NewDirectory(client *Client) *Directory {
	return &Directory{client: client, now: time.Now}
}

// Browse fetches the listings for req and applies the time window and sort
// locally. A failed fetch is logged and yields an empty list; it is not
// retried.
func (d *Directory) Browse(ctx context.Context, req BrowseRequest) []directory.Listing {
	q := directory.BuildQuery(req.Actor, req.Category, req.Subcategory, req.Toggles)
	items, err := d.client.As(req.Actor).ListTickets(ctx, q)
	if err != nil {
		log.Error().Err(err).
			Int("category", req.Category).
			Str("role", string(req.Actor.Role)).
			Msg("Failed to load directory listings")
		return []directory.Listing{}
	}

	items = directory.FilterWindow(items, req.Window, d.now())
	directory.Sort(items, req.Primary, req.Secondary)
	return items
}
