package models

import (
	"fmt"
	"time"
)

// User is a marketplace account. Role is "client" or "master".
type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"-"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int       `json:"id"`
	IRI       string    `json:"@id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserResponse renders the public view of u.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		IRI:       fmt.Sprintf("/api/users/%d", u.ID),
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
