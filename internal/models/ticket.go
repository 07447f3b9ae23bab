package models

import (
	"database/sql"
	"time"
)

// Ticket is a service offer (Service=true, authored by a master) or a
// service request (Service=false, authored by a client).
type Ticket struct {
	ID            int           `db:"id"`
	Title         string        `db:"title"`
	Description   string        `db:"description"`
	Budget        float64       `db:"budget"`
	Unit          string        `db:"unit"`
	CategoryID    int           `db:"category_id"`
	SubcategoryID sql.NullInt64 `db:"subcategory_id"`
	AuthorID      int           `db:"author_id"`
	MasterID      sql.NullInt64 `db:"master_id"`
	Active        bool          `db:"active"`
	Service       bool          `db:"service"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`

	// Aggregates over the reviews of the author, filled by list queries.
	ReviewCount int     `db:"review_count"`
	Rating      float64 `db:"rating"`
}

// TicketFilter is the repository form of a directory query.
type TicketFilter struct {
	CategoryID    int
	SubcategoryID int
	Active        *bool
	Service       *bool
	ExcludeAuthor int
	ExcludeMaster int
	AuthorID      int
}
