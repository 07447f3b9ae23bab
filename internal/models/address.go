package models

import (
	"database/sql"

	"github.com/lib/pq"
)

// Address owner types.
const (
	AddressOwnerTicket = "ticket"
	AddressOwnerUser   = "user"
)

// Address is a persisted address selection owned by a ticket or a user.
// Suburbs and districts are multi-valued and stored as integer arrays.
type Address struct {
	ID           int            `db:"id"`
	OwnerType    string         `db:"owner_type"`
	OwnerID      int            `db:"owner_id"`
	ProvinceID   int            `db:"province_id"`
	CityID       sql.NullInt64  `db:"city_id"`
	SuburbIDs    pq.Int64Array  `db:"suburb_ids"`
	DistrictIDs  pq.Int64Array  `db:"district_ids"`
	SettlementID sql.NullInt64  `db:"settlement_id"`
	CommunityID  sql.NullInt64  `db:"community_id"`
	VillageID    sql.NullInt64  `db:"village_id"`
	Street       sql.NullString `db:"street"`
}
