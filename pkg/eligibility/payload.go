package eligibility

import (
	"github.com/GTDGit/gtd_market/pkg/account"
)

// Photo is an image waiting to be uploaded after its review or complaint
// has been created.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// Draft is the state of the review modal. It is discarded on close and on
// successful submission.
type Draft struct {
	Text   string
	Rating int
	Photos []Photo
}

// SetRating sets the star rating, rejecting values outside 1..5.
func (d *Draft) SetRating(r int) error {
	if !validRating(r) {
		return ErrInvalidRating
	}
	d.Rating = r
	return nil
}

// AddPhoto queues a photo.
func (d *Draft) AddPhoto(p Photo) {
	d.Photos = append(d.Photos, p)
}

// Reset discards the draft.
func (d *Draft) Reset() {
	*d = Draft{}
}

// ReviewPayload is the body of POST /api/reviews.
type ReviewPayload struct {
	Rating      int          `json:"rating" binding:"required,min=1,max=5"`
	Description string       `json:"description"`
	Ticket      string       `json:"ticket" binding:"required"`
	Master      string       `json:"master" binding:"required"`
	Client      string       `json:"client" binding:"required"`
	Type        account.Role `json:"type" binding:"required"`
}

// BuildReview checks eligibility and assembles the review. The master and
// client references are set by role, whoever the author is.
func BuildReview(actor account.Actor, target Party, ticket TicketLink, d Draft) (ReviewPayload, error) {
	reviewType, err := CheckReview(actor, target)
	if err != nil {
		return ReviewPayload{}, err
	}
	if !ticket.Active || !ticket.Links(actor.ID, target.ID) {
		return ReviewPayload{}, ErrNoActiveTicket
	}
	if !validRating(d.Rating) {
		return ReviewPayload{}, ErrInvalidRating
	}

	masterID, clientID := actor.ID, target.ID
	if actor.Role == account.RoleClient {
		masterID, clientID = target.ID, actor.ID
	}
	return ReviewPayload{
		Rating:      d.Rating,
		Description: trimmed(d.Text),
		Ticket:      TicketIRI(ticket.ID),
		Master:      account.UserIRI(masterID),
		Client:      account.UserIRI(clientID),
		Type:        reviewType,
	}, nil
}

// Reason is a complaint reason code with its display title.
type Reason struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// ReasonOther is used when no reason list is available.
var ReasonOther = Reason{Code: "other", Title: "Other"}

// ResolveReasons returns the backend list, or the single "other" reason when
// the backend returned nothing.
func ResolveReasons(fetched []Reason) []Reason {
	if len(fetched) == 0 {
		return []Reason{ReasonOther}
	}
	return fetched
}

// ComplaintDraft is the state of the complaint modal.
type ComplaintDraft struct {
	Title       string
	Reason      string
	Description string
	Photos      []Photo
}

// Reset discards the draft.
func (d *ComplaintDraft) Reset() {
	*d = ComplaintDraft{}
}

// Link ties a complaint to a ticket or a chat between the parties.
type Link struct {
	TicketID int
	ChatID   int
}

// ComplaintPayload is the body of POST /api/appeals.
type ComplaintPayload struct {
	Title       string `json:"title" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description"`
	Respondent  string `json:"respondent" binding:"required"`
	Ticket      string `json:"ticket,omitempty"`
	Chat        string `json:"chat,omitempty"`
}

// BuildComplaint checks eligibility and assembles the complaint. An empty
// reason falls back to "other".
func BuildComplaint(actor account.Actor, target Party, link Link, d ComplaintDraft) (ComplaintPayload, error) {
	if err := CheckComplaint(actor, target); err != nil {
		return ComplaintPayload{}, err
	}
	if link.TicketID <= 0 && link.ChatID <= 0 {
		return ComplaintPayload{}, ErrNoLink
	}
	if trimmed(d.Title) == "" {
		return ComplaintPayload{}, ErrTitleRequired
	}

	p := ComplaintPayload{
		Title:       trimmed(d.Title),
		Reason:      trimmed(d.Reason),
		Description: trimmed(d.Description),
		Respondent:  account.UserIRI(target.ID),
	}
	if p.Reason == "" {
		p.Reason = ReasonOther.Code
	}
	if link.TicketID > 0 {
		p.Ticket = TicketIRI(link.TicketID)
	}
	if link.ChatID > 0 {
		p.Chat = ChatIRI(link.ChatID)
	}
	return p, nil
}
