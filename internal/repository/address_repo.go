package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/gtd_market/internal/models"
)

// AddressRepository stores addresses owned by tickets and users.
type AddressRepository struct {
	db *sqlx.DB
}

func NewAddressRepository(db *sqlx.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

const addressColumns = `id, owner_type, owner_id, province_id, city_id, suburb_ids, district_ids,
	settlement_id, community_id, village_id, street`

// GetByOwners returns the addresses of the given owners, grouped by owner id.
func (r *AddressRepository) GetByOwners(ctx context.Context, ownerType string, ownerIDs []int) (map[int][]models.Address, error) {
	out := make(map[int][]models.Address, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	var rows []models.Address
	err := r.db.SelectContext(ctx, &rows, `SELECT `+addressColumns+`
		FROM addresses WHERE owner_type = $1 AND owner_id = ANY($2) ORDER BY id`,
		ownerType, pq.Array(ownerIDs))
	if err != nil {
		return nil, err
	}
	for _, a := range rows {
		out[a.OwnerID] = append(out[a.OwnerID], a)
	}
	return out, nil
}

// Replace swaps the owner's addresses for the given ones in one transaction.
func (r *AddressRepository) Replace(ctx context.Context, ownerType string, ownerID int, addrs []models.Address) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM addresses WHERE owner_type = $1 AND owner_id = $2`, ownerType, ownerID); err != nil {
		return err
	}
	for i := range addrs {
		a := &addrs[i]
		a.OwnerType, a.OwnerID = ownerType, ownerID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO addresses (owner_type, owner_id, province_id, city_id, suburb_ids, district_ids,
				settlement_id, community_id, village_id, street)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, a.OwnerType, a.OwnerID, a.ProvinceID, a.CityID, a.SuburbIDs, a.DistrictIDs,
			a.SettlementID, a.CommunityID, a.VillageID, a.Street).Scan(&a.ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
