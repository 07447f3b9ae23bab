package models

import "time"

// Photo owner types.
const (
	PhotoOwnerReview = "review"
	PhotoOwnerAppeal = "appeal"
)

// Photo is an uploaded image attached to a review or an appeal.
type Photo struct {
	ID          int       `db:"id" json:"id"`
	OwnerType   string    `db:"owner_type" json:"-"`
	OwnerID     int       `db:"owner_id" json:"-"`
	ObjectKey   string    `db:"object_key" json:"-"`
	URL         string    `db:"url" json:"url"`
	ContentType string    `db:"content_type" json:"contentType"`
	Size        int64     `db:"size" json:"size"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
