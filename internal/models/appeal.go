package models

import (
	"database/sql"
	"time"
)

// AppealStatus is the lifecycle state of a complaint.
type AppealStatus string

const (
	AppealStatusNew      AppealStatus = "new"
	AppealStatusInReview AppealStatus = "in_review"
	AppealStatusResolved AppealStatus = "resolved"
	AppealStatusRejected AppealStatus = "rejected"
)

// Appeal is a complaint filed by one user against another.
type Appeal struct {
	ID           int           `db:"id"`
	Title        string        `db:"title"`
	Reason       string        `db:"reason"`
	Description  string        `db:"description"`
	AuthorID     int           `db:"author_id"`
	RespondentID int           `db:"respondent_id"`
	TicketID     sql.NullInt64 `db:"ticket_id"`
	ChatID       sql.NullInt64 `db:"chat_id"`
	Status       AppealStatus  `db:"status"`
	CreatedAt    time.Time     `db:"created_at"`
}

// AppealResponse is the API shape of an appeal.
type AppealResponse struct {
	ID          int          `json:"id"`
	IRI         string       `json:"@id"`
	Title       string       `json:"title"`
	Reason      string       `json:"reason"`
	Description string       `json:"description"`
	Author      string       `json:"author"`
	Respondent  string       `json:"respondent"`
	Ticket      string       `json:"ticket,omitempty"`
	Chat        string       `json:"chat,omitempty"`
	Status      AppealStatus `json:"status"`
	Images      []Photo      `json:"images"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// AppealReason is a selectable complaint reason.
type AppealReason struct {
	Code     string `db:"code" json:"code"`
	Title    string `db:"title" json:"title"`
	Position int    `db:"position" json:"-"`
}
