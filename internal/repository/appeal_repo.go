package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_market/internal/models"
)

// AppealRepository handles database operations for appeals and their reasons.
type AppealRepository struct {
	db *sqlx.DB
}

func NewAppealRepository(db *sqlx.DB) *AppealRepository {
	return &AppealRepository{db: db}
}

const appealColumns = `id, title, reason, description, author_id, respondent_id, ticket_id, chat_id, status, created_at`

// ListByAuthor returns the appeals filed by a user.
func (r *AppealRepository) ListByAuthor(ctx context.Context, authorID int) ([]models.Appeal, error) {
	var out []models.Appeal
	err := r.db.SelectContext(ctx, &out, `SELECT `+appealColumns+` FROM appeals WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
	return out, err
}

func (r *AppealRepository) GetByID(ctx context.Context, id int) (*models.Appeal, error) {
	var a models.Appeal
	if err := r.db.GetContext(ctx, &a, `SELECT `+appealColumns+` FROM appeals WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppealRepository) Create(ctx context.Context, a *models.Appeal) error {
	query := `
		INSERT INTO appeals (title, reason, description, author_id, respondent_id, ticket_id, chat_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, a.Title, a.Reason, a.Description, a.AuthorID, a.RespondentID,
		a.TicketID, a.ChatID, a.Status).Scan(&a.ID, &a.CreatedAt)
}

// GetReasons returns the selectable complaint reasons in display order.
func (r *AppealRepository) GetReasons(ctx context.Context) ([]models.AppealReason, error) {
	var out []models.AppealReason
	err := r.db.SelectContext(ctx, &out, `SELECT code, title, position FROM appeal_reasons ORDER BY position, code`)
	return out, err
}
