package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/gtd_market/internal/models"
)

// PhotoRepository handles database operations for uploaded photos.
type PhotoRepository struct {
	db *sqlx.DB
}

func NewPhotoRepository(db *sqlx.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(ctx context.Context, p *models.Photo) error {
	query := `
		INSERT INTO photos (owner_type, owner_id, object_key, url, content_type, size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, p.OwnerType, p.OwnerID, p.ObjectKey, p.URL, p.ContentType, p.Size).
		Scan(&p.ID, &p.CreatedAt)
}

// GetByOwners returns photos grouped by owner id.
func (r *PhotoRepository) GetByOwners(ctx context.Context, ownerType string, ownerIDs []int) (map[int][]models.Photo, error) {
	out := make(map[int][]models.Photo, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	var rows []models.Photo
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, owner_type, owner_id, object_key, url, content_type, size, created_at
		FROM photos WHERE owner_type = $1 AND owner_id = ANY($2) ORDER BY id
	`, ownerType, pq.Array(ownerIDs))
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.OwnerID] = append(out[p.OwnerID], p)
	}
	return out, nil
}
