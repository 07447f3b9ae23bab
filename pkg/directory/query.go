// Package directory builds ticket directory queries and applies the
// client-side time window and sort to their results.
package directory

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/address"
)

// Listing is one ticket as shown in the directory.
type Listing struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Budget        float64        `json:"budget"`
	Unit          string         `json:"unit,omitempty"`
	CategoryID    int            `json:"categoryId"`
	SubcategoryID int            `json:"subcategoryId,omitempty"`
	AuthorID      int            `json:"authorId"`
	MasterID      int            `json:"masterId,omitempty"`
	Active        bool           `json:"active"`
	Service       bool           `json:"service"`
	CreatedAt     time.Time      `json:"createdAt"`
	ReviewCount   int            `json:"reviewCount"`
	Rating        float64        `json:"rating"`
	Addresses     []address.View `json:"addresses,omitempty"`
}

// Toggles are the guest-only "services only" / "announcements only"
// switches. Enabling one disables the other.
type Toggles struct {
	servicesOnly      bool
	announcementsOnly bool
}

// SetServicesOnly switches the services-only filter.
func (t *Toggles) SetServicesOnly(on bool) {
	t.servicesOnly = on
	if on {
		t.announcementsOnly = false
	}
}

// SetAnnouncementsOnly switches the announcements-only filter.
func (t *Toggles) SetAnnouncementsOnly(on bool) {
	t.announcementsOnly = on
	if on {
		t.servicesOnly = false
	}
}

// ServicesOnly reports whether only service offers are requested.
func (t Toggles) ServicesOnly() bool { return t.servicesOnly }

// AnnouncementsOnly reports whether only client requests are requested.
func (t Toggles) AnnouncementsOnly() bool { return t.announcementsOnly }

// Query is the backend filter of the directory.
type Query struct {
	Category      int
	Subcategory   int
	Active        bool
	Service       *bool
	ExcludeAuthor int
	ExcludeMaster int
}

// BuildQuery derives the query from the actor's role. Clients see active
// offers from masters other than themselves; masters see active client
// requests authored by someone else; guests see every active ticket,
// optionally narrowed by the toggles.
func BuildQuery(actor account.Actor, category, subcategory int, toggles Toggles) Query {
	q := Query{
		Category:    category,
		Subcategory: subcategory,
		Active:      true,
	}

	switch {
	case actor.Authenticated() && actor.Role == account.RoleClient:
		q.Service = boolPtr(true)
		q.ExcludeMaster = actor.ID
	case actor.Authenticated() && actor.Role == account.RoleMaster:
		q.Service = boolPtr(false)
		q.ExcludeAuthor = actor.ID
	case toggles.ServicesOnly():
		q.Service = boolPtr(true)
	case toggles.AnnouncementsOnly():
		q.Service = boolPtr(false)
	}
	return q
}

// Values renders the query string sent to GET /api/tickets.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Category > 0 {
		v.Set("category", strconv.Itoa(q.Category))
	}
	if q.Subcategory > 0 {
		v.Set("subcategory", strconv.Itoa(q.Subcategory))
	}
	if q.Active {
		v.Set("active", "true")
	}
	if q.Service != nil {
		v.Set("service", strconv.FormatBool(*q.Service))
	}
	if q.ExcludeAuthor > 0 {
		v.Set("excludeAuthor", strconv.Itoa(q.ExcludeAuthor))
	}
	if q.ExcludeMaster > 0 {
		v.Set("excludeMaster", strconv.Itoa(q.ExcludeMaster))
	}
	return v
}

// ParseQuery is the inverse of Values.
func ParseQuery(v url.Values) (Query, error) {
	var (
		q   Query
		err error
	)
	if q.Category, err = parsePositive(v, "category"); err != nil {
		return q, err
	}
	if q.Subcategory, err = parsePositive(v, "subcategory"); err != nil {
		return q, err
	}
	if q.ExcludeAuthor, err = parsePositive(v, "excludeAuthor"); err != nil {
		return q, err
	}
	if q.ExcludeMaster, err = parsePositive(v, "excludeMaster"); err != nil {
		return q, err
	}
	if raw := v.Get("active"); raw != "" {
		if q.Active, err = strconv.ParseBool(raw); err != nil {
			return q, fmt.Errorf("invalid active: %w", err)
		}
	}
	if raw := v.Get("service"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("invalid service: %w", err)
		}
		q.Service = &b
	}
	return q, nil
}

func parsePositive(v url.Values, key string) (int, error) {
	raw := v.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func boolPtr(b bool) *bool { return &b }
