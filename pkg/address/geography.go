// Package address implements the geographic hierarchy used across the
// marketplace (province -> city|district -> suburb|settlement|community ->
// village), the selection state machine that narrows a location, and the
// formatting of stored addresses.
package address

import "github.com/GTDGit/gtd_market/pkg/iri"

// Province is the mandatory root of every address.
type Province struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// City belongs to exactly one province.
type City struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	ProvinceID int      `json:"provinceId"`
	Suburbs    []Suburb `json:"suburbs"`
}

// District is the alternative branch under a province.
type District struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	ProvinceID  int          `json:"provinceId"`
	Settlements []Settlement `json:"settlements"`
	Communities []Community  `json:"communities"`
}

// Suburb is a sub-division of a city.
type Suburb struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Settlement is a sub-division of a district holding villages.
type Settlement struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Villages []Village `json:"villages"`
}

// Community is a sub-division of a district.
type Community struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Village is the leaf of the settlement branch.
type Village struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Geography is an indexed, read-only snapshot of the reference data.
type Geography struct {
	provinces map[int]Province
	cities    map[int]City
	districts map[int]District

	// settlement/community id -> owning district id
	settlementDistrict map[int]int
	communityDistrict  map[int]int
	settlements        map[int]Settlement
}

// NewGeography indexes already-fetched reference lists.
func NewGeography(provinces []Province, cities []City, districts []District) *Geography {
	g := &Geography{
		provinces:          make(map[int]Province, len(provinces)),
		cities:             make(map[int]City, len(cities)),
		districts:          make(map[int]District, len(districts)),
		settlementDistrict: make(map[int]int),
		communityDistrict:  make(map[int]int),
		settlements:        make(map[int]Settlement),
	}
	for _, p := range provinces {
		g.provinces[p.ID] = p
	}
	for _, c := range cities {
		g.cities[c.ID] = c
	}
	for _, d := range districts {
		g.districts[d.ID] = d
		for _, s := range d.Settlements {
			g.settlementDistrict[s.ID] = d.ID
			g.settlements[s.ID] = s
		}
		for _, c := range d.Communities {
			g.communityDistrict[c.ID] = d.ID
		}
	}
	return g
}

// Province looks up a province by id.
func (g *Geography) Province(id int) (Province, bool) {
	p, ok := g.provinces[id]
	return p, ok
}

// City looks up a city by id.
func (g *Geography) City(id int) (City, bool) {
	c, ok := g.cities[id]
	return c, ok
}

// District looks up a district by id.
func (g *Geography) District(id int) (District, bool) {
	d, ok := g.districts[id]
	return d, ok
}

// Settlement looks up a settlement and the district owning it.
func (g *Geography) Settlement(id int) (Settlement, int, bool) {
	s, ok := g.settlements[id]
	return s, g.settlementDistrict[id], ok
}

// CommunityDistrict returns the district owning a community.
func (g *Geography) CommunityDistrict(id int) (int, bool) {
	d, ok := g.communityDistrict[id]
	return d, ok
}

func (c City) hasSuburb(id int) bool {
	for _, s := range c.Suburbs {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (s Settlement) hasVillage(id int) bool {
	for _, v := range s.Villages {
		if v.ID == id {
			return true
		}
	}
	return false
}

// Collections used in IRIs.
const (
	CollectionProvinces   = "provinces"
	CollectionCities      = "cities"
	CollectionDistricts   = "districts"
	CollectionSuburbs     = "suburbs"
	CollectionSettlements = "settlements"
	CollectionCommunities = "communities"
	CollectionVillages    = "villages"
)

// IRI builds the API reference of a geography entity, e.g. /api/cities/4.
func IRI(collection string, id int) string {
	return iri.Format(collection, id)
}

// ParseIRI extracts the id from a geography IRI, checking its collection.
func ParseIRI(collection, ref string) (int, error) {
	return iri.Parse(collection, ref)
}
