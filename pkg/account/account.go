// Package account holds the identity of the acting user shared by the
// directory, eligibility and session components.
package account

import (
	"fmt"
	"strings"

	"github.com/GTDGit/gtd_market/pkg/iri"
)

// Role is one of the two marketplace roles. The zero value is a guest.
type Role string

const (
	RoleGuest  Role = ""
	RoleClient Role = "client"
	RoleMaster Role = "master"
)

// ParseRole converts a raw role string (case-insensitive) into a Role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleClient:
		return RoleClient, nil
	case RoleMaster:
		return RoleMaster, nil
	case RoleGuest:
		return RoleGuest, nil
	}
	return RoleGuest, fmt.Errorf("unknown role %q", raw)
}

// Valid reports whether r is a signed-in role.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleMaster
}

// Opposite returns the counterpart role, or RoleGuest for a guest.
func (r Role) Opposite() Role {
	switch r {
	case RoleClient:
		return RoleMaster
	case RoleMaster:
		return RoleClient
	}
	return RoleGuest
}

// Actor is the user on whose behalf an operation runs.
type Actor struct {
	ID    int    `json:"id"`
	Role  Role   `json:"role"`
	Token string `json:"-"`
}

// Guest returns an unauthenticated actor.
func Guest() Actor {
	return Actor{}
}

// Authenticated reports whether the actor is signed in with a known role.
func (a Actor) Authenticated() bool {
	return a.ID > 0 && a.Role.Valid()
}

// UserIRI returns the API reference of a user id.
func UserIRI(id int) string {
	return iri.Format(iri.Users, id)
}

// ParseUserIRI extracts the user id from a reference built by UserIRI.
func ParseUserIRI(ref string) (int, error) {
	return iri.Parse(iri.Users, ref)
}
