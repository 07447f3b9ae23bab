// Package eligibility decides who may review or complain about whom and
// assembles the submission payloads with the right directional roles.
package eligibility

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/iri"
)

// Business-rule failures. Messages are shown to the user as-is.
var (
	ErrNotAuthenticated = errors.New("sign in to continue")
	ErrSelfTarget       = errors.New("you cannot do this to yourself")
	ErrReviewNotAllowed = errors.New("only a master may review a client and only a client may review a master")
	ErrNoActiveTicket   = errors.New("there is no active ticket between you and this user, a review needs one")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrNoLink           = errors.New("a complaint must reference a ticket or a chat")
	ErrTitleRequired    = errors.New("complaint title is required")
)

// Party is the user an action is aimed at.
type Party struct {
	ID   int          `json:"id"`
	Role account.Role `json:"role"`
}

// TicketLink is the part of a ticket that connects two users.
type TicketLink struct {
	ID       int  `json:"id"`
	AuthorID int  `json:"authorId"`
	MasterID int  `json:"masterId"`
	Active   bool `json:"active"`
	Service  bool `json:"service"`
}

// Links reports whether the ticket connects users a and b.
func (t TicketLink) Links(a, b int) bool {
	if a == b || t.AuthorID == 0 || t.MasterID == 0 {
		return false
	}
	return (t.AuthorID == a && t.MasterID == b) || (t.AuthorID == b && t.MasterID == a)
}

// TicketIRI returns the API reference of a ticket id.
func TicketIRI(id int) string {
	return iri.Format(iri.Tickets, id)
}

// ParseTicketIRI extracts the ticket id from a reference built by TicketIRI.
func ParseTicketIRI(ref string) (int, error) {
	return iri.Parse(iri.Tickets, ref)
}

// ChatIRI returns the API reference of a chat id.
func ChatIRI(id int) string {
	return iri.Format(iri.Chats, id)
}

// ParseChatIRI extracts the chat id from a reference built by ChatIRI.
func ParseChatIRI(ref string) (int, error) {
	return iri.Parse(iri.Chats, ref)
}

// CheckReview verifies that actor may review target and returns the review
// type, i.e. the role of the side being rated.
func CheckReview(actor account.Actor, target Party) (account.Role, error) {
	if !actor.Authenticated() {
		return account.RoleGuest, ErrNotAuthenticated
	}
	if actor.ID == target.ID {
		return account.RoleGuest, ErrSelfTarget
	}
	if !target.Role.Valid() || target.Role != actor.Role.Opposite() {
		return account.RoleGuest, ErrReviewNotAllowed
	}
	return target.Role, nil
}

// FindActiveTicket returns the first active ticket connecting actor and target.
func FindActiveTicket(tickets []TicketLink, actorID, targetID int) (TicketLink, error) {
	for _, t := range tickets {
		if t.Active && t.Links(actorID, targetID) {
			return t, nil
		}
	}
	return TicketLink{}, ErrNoActiveTicket
}

// CheckComplaint verifies that actor may file a complaint against target.
func CheckComplaint(actor account.Actor, target Party) error {
	if !actor.Authenticated() {
		return ErrNotAuthenticated
	}
	if target.ID <= 0 {
		return fmt.Errorf("unknown respondent")
	}
	if actor.ID == target.ID {
		return ErrSelfTarget
	}
	return nil
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
