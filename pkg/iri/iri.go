// Package iri builds and parses the resource references used on the wire,
// e.g. /api/users/7.
package iri

import (
	"fmt"
	"strconv"
	"strings"
)

// Non-geography collections.
const (
	Users   = "users"
	Tickets = "tickets"
	Chats   = "chats"
	Reviews = "reviews"
	Appeals = "appeals"
)

// Format returns the reference of id in collection.
func Format(collection string, id int) string {
	return fmt.Sprintf("/api/%s/%d", collection, id)
}

// Parse extracts the id from ref, checking its collection.
func Parse(collection, ref string) (int, error) {
	prefix := "/api/" + collection + "/"
	if !strings.HasPrefix(ref, prefix) {
		return 0, fmt.Errorf("reference %q is not a %s reference", ref, collection)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(ref, prefix))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("reference %q has an invalid id", ref)
	}
	return id, nil
}
