package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/address"
	"github.com/GTDGit/gtd_market/pkg/directory"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// User is the public view of a marketplace account.
type User struct {
	ID        int       `json:"id"`
	IRI       string    `json:"@id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Party returns the user as an eligibility target.
func (u User) Party() eligibility.Party {
	role, _ := account.ParseRole(u.Role)
	return eligibility.Party{ID: u.ID, Role: role}
}

// NewTicket is the body of a ticket or service announcement.
type NewTicket struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Budget        float64           `json:"budget"`
	Unit          string            `json:"unit,omitempty"`
	CategoryID    int               `json:"categoryId"`
	SubcategoryID int               `json:"subcategoryId,omitempty"`
	Addresses     []address.Payload `json:"addresses"`
}

// User fetches one user.
func (c *Client) User(ctx context.Context, id int) (*User, error) {
	var u User
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListTickets runs a directory query.
func (c *Client) ListTickets(ctx context.Context, q directory.Query) ([]directory.Listing, error) {
	return getList[directory.Listing](ctx, c, "/api/tickets", q.Values())
}

// Ticket fetches one ticket.
func (c *Client) Ticket(ctx context.Context, id int) (*directory.Listing, error) {
	var l directory.Listing
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/tickets/%d", id), nil, nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateTicket publishes a ticket as the client's actor.
func (c *Client) CreateTicket(ctx context.Context, t NewTicket) (*directory.Listing, error) {
	var l directory.Listing
	if err := c.doRequest(ctx, http.MethodPost, "/api/tickets", nil, t, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// TicketLinks lists the tickets between the signed-in user and otherID.
func (c *Client) TicketLinks(ctx context.Context, otherID int) ([]eligibility.TicketLink, error) {
	return getList[eligibility.TicketLink](ctx, c, "/api/tickets/links", url.Values{"with": []string{strconv.Itoa(otherID)}})
}
