package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_market/internal/models"
)

// CatalogRepository reads categories and occupations.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.db.SelectContext(ctx, &out, `SELECT id, title FROM categories ORDER BY title`)
	return out, err
}

// GetOccupations returns occupations, optionally narrowed to a category.
func (r *CatalogRepository) GetOccupations(ctx context.Context, categoryID int) ([]models.Occupation, error) {
	query := `SELECT id, category_id, title FROM occupations`
	args := []interface{}{}
	if categoryID > 0 {
		query += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY title`

	var out []models.Occupation
	err := r.db.SelectContext(ctx, &out, query, args...)
	return out, err
}

func (r *CatalogRepository) GetOccupation(ctx context.Context, id int) (*models.Occupation, error) {
	var o models.Occupation
	if err := r.db.GetContext(ctx, &o, `SELECT id, category_id, title FROM occupations WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *CatalogRepository) CategoryExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id)
	return exists, err
}
