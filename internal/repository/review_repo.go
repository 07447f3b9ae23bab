package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/utils"
)

// ReviewRepository handles database operations for reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, rating, description, ticket_id, master_id, client_id, author_id, type, created_at`

// ListAbout returns the reviews about a user. An empty reviewType means both
// sides.
func (r *ReviewRepository) ListAbout(ctx context.Context, userID int, reviewType string) ([]models.Review, error) {
	baseWhere := `WHERE ((type = 'master' AND master_id = $1) OR (type = 'client' AND client_id = $1))`
	args := []interface{}{userID}
	if reviewType != "" {
		baseWhere += fmt.Sprintf(" AND type = $%d", len(args)+1)
		args = append(args, reviewType)
	}

	var out []models.Review
	err := r.db.SelectContext(ctx, &out, `SELECT `+reviewColumns+` FROM reviews `+baseWhere+` ORDER BY created_at DESC`, args...)
	return out, err
}

// Summary aggregates the reviews about a user.
func (r *ReviewRepository) Summary(ctx context.Context, userID int) (models.RatingSummary, error) {
	var s models.RatingSummary
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS count, COALESCE(AVG(rating), 0)::float8 AS average
		FROM reviews
		WHERE (type = 'master' AND master_id = $1) OR (type = 'client' AND client_id = $1)
	`, userID)
	return s, err
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int) (*models.Review, error) {
	var rv models.Review
	if err := r.db.GetContext(ctx, &rv, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	query := `
		INSERT INTO reviews (rating, description, ticket_id, master_id, client_id, author_id, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, rv.Rating, rv.Description, rv.TicketID, rv.MasterID,
		rv.ClientID, rv.AuthorID, rv.Type).Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return utils.ErrAlreadyReviewed
		}
		return err
	}
	return nil
}
