package models

import "time"

// Chat is the conversation between two users. The pair is stored ordered
// (UserLow < UserHigh) so each pair has at most one chat.
type Chat struct {
	ID        int       `db:"id"`
	UserLow   int       `db:"user_low"`
	UserHigh  int       `db:"user_high"`
	CreatedAt time.Time `db:"created_at"`
}

// HasParticipants reports whether the chat is between a and b.
func (c Chat) HasParticipants(a, b int) bool {
	return (c.UserLow == a && c.UserHigh == b) || (c.UserLow == b && c.UserHigh == a)
}

// ChatResponse is the API shape of a chat.
type ChatResponse struct {
	ID           int       `json:"id"`
	IRI          string    `json:"@id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}
