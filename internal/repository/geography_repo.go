package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_market/internal/models"
)

// GeographyRepository reads the geography reference tables.
type GeographyRepository struct {
	db *sqlx.DB
}

// NewGeographyRepository creates a new GeographyRepository
func NewGeographyRepository(db *sqlx.DB) *GeographyRepository {
	return &GeographyRepository{db: db}
}

// GetAll returns every row of a level ordered by title.
func (r *GeographyRepository) GetAll(ctx context.Context, level models.GeographyLevel) ([]models.GeoRow, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("unknown geography level %q", level)
	}

	parent := "0"
	if col := level.ParentColumn(); col != "" {
		parent = col
	}
	query := fmt.Sprintf(`SELECT id, %s AS parent_id, title FROM %s ORDER BY title, id`, parent, level)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GeoRow
	for rows.Next() {
		var g models.GeoRow
		if err := rows.Scan(&g.ID, &g.ParentID, &g.Title); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
