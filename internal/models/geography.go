package models

// GeoRow is one row of a geography table: a named node and its parent.
// ParentID is zero for provinces.
type GeoRow struct {
	ID       int    `db:"id"`
	ParentID int    `db:"parent_id"`
	Title    string `db:"title"`
}

// GeographyLevel names a geography table.
type GeographyLevel string

const (
	LevelProvince   GeographyLevel = "provinces"
	LevelCity       GeographyLevel = "cities"
	LevelSuburb     GeographyLevel = "suburbs"
	LevelDistrict   GeographyLevel = "districts"
	LevelSettlement GeographyLevel = "settlements"
	LevelCommunity  GeographyLevel = "communities"
	LevelVillage    GeographyLevel = "villages"
)

// ParentColumn returns the foreign key column of the level.
func (l GeographyLevel) ParentColumn() string {
	switch l {
	case LevelCity, LevelDistrict:
		return "province_id"
	case LevelSuburb:
		return "city_id"
	case LevelSettlement, LevelCommunity:
		return "district_id"
	case LevelVillage:
		return "settlement_id"
	}
	return ""
}

// Valid reports whether l is a known level.
func (l GeographyLevel) Valid() bool {
	return l == LevelProvince || l.ParentColumn() != ""
}
