package models

import "time"

// Review is a rating left by one side of a ticket about the other. Type is
// the role of the reviewed side.
type Review struct {
	ID          int       `db:"id" json:"id"`
	Rating      int       `db:"rating" json:"rating"`
	Description string    `db:"description" json:"description"`
	TicketID    int       `db:"ticket_id" json:"-"`
	MasterID    int       `db:"master_id" json:"-"`
	ClientID    int       `db:"client_id" json:"-"`
	AuthorID    int       `db:"author_id" json:"-"`
	Type        string    `db:"type" json:"type"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ReviewResponse is the API shape of a review.
type ReviewResponse struct {
	ID          int       `json:"id"`
	IRI         string    `json:"@id"`
	Rating      int       `json:"rating"`
	Description string    `json:"description"`
	Ticket      string    `json:"ticket"`
	Master      string    `json:"master"`
	Client      string    `json:"client"`
	Author      string    `json:"author"`
	Type        string    `json:"type"`
	Images      []Photo   `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RatingSummary aggregates the reviews about one user.
type RatingSummary struct {
	Count   int     `db:"count" json:"count"`
	Average float64 `db:"average" json:"average"`
}
