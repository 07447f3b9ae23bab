package address

import "strings"

// View holds the display titles of a stored address.
type View struct {
	Province   string   `json:"province,omitempty"`
	City       string   `json:"city,omitempty"`
	Districts  []string `json:"districts,omitempty"`
	Suburbs    []string `json:"suburbs,omitempty"`
	Settlement string   `json:"settlement,omitempty"`
	Community  string   `json:"community,omitempty"`
	Village    string   `json:"village,omitempty"`
	Street     string   `json:"street,omitempty"`
}

// Format renders the non-empty components in the fixed order province, city,
// districts, suburbs, settlement, community, village, street, dropping repeats.
// Every district and suburb title is compared on its own.
func Format(v View) string {
	parts := make([]string, 0, 6+len(v.Districts)+len(v.Suburbs))
	parts = append(parts, v.Province, v.City)
	parts = append(parts, v.Districts...)
	parts = append(parts, v.Suburbs...)
	parts = append(parts, v.Settlement, v.Community, v.Village, v.Street)
	return join(parts...)
}

// FormatShort renders only the city and districts.
func FormatShort(v View) string {
	return join(append([]string{v.City}, v.Districts...)...)
}

func join(parts ...string) string {
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}
