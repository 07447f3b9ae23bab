package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_market/internal/models"
)

// TicketRepository handles database operations for tickets.
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository creates a new TicketRepository.
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// ticketSelect joins the author's review aggregates: reviews whose type is
// the author's role and that name the author on that side.
const ticketSelect = `
	SELECT t.id, t.title, t.description, t.budget, t.unit, t.category_id, t.subcategory_id,
		t.author_id, t.master_id, t.active, t.service, t.created_at, t.updated_at,
		COALESCE(rv.cnt, 0) AS review_count, COALESCE(rv.avg, 0) AS rating
	FROM tickets t
	JOIN users u ON u.id = t.author_id
	LEFT JOIN LATERAL (
		SELECT COUNT(*) AS cnt, AVG(r.rating)::float8 AS avg
		FROM reviews r
		WHERE r.type = u.role
		  AND ((u.role = 'master' AND r.master_id = t.author_id)
		    OR (u.role = 'client' AND r.client_id = t.author_id))
	) rv ON true
`

// List returns tickets matching the filter, newest first.
func (r *TicketRepository) List(ctx context.Context, f models.TicketFilter) ([]models.Ticket, error) {
	baseWhere := `WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.CategoryID > 0 {
		baseWhere += fmt.Sprintf(" AND t.category_id = $%d", argIdx)
		args = append(args, f.CategoryID)
		argIdx++
	}
	if f.SubcategoryID > 0 {
		baseWhere += fmt.Sprintf(" AND t.subcategory_id = $%d", argIdx)
		args = append(args, f.SubcategoryID)
		argIdx++
	}
	if f.Active != nil {
		baseWhere += fmt.Sprintf(" AND t.active = $%d", argIdx)
		args = append(args, *f.Active)
		argIdx++
	}
	if f.Service != nil {
		baseWhere += fmt.Sprintf(" AND t.service = $%d", argIdx)
		args = append(args, *f.Service)
		argIdx++
	}
	if f.ExcludeAuthor > 0 {
		baseWhere += fmt.Sprintf(" AND t.author_id <> $%d", argIdx)
		args = append(args, f.ExcludeAuthor)
		argIdx++
	}
	if f.ExcludeMaster > 0 {
		baseWhere += fmt.Sprintf(" AND t.master_id IS DISTINCT FROM $%d", argIdx)
		args = append(args, f.ExcludeMaster)
		argIdx++
	}
	if f.AuthorID > 0 {
		baseWhere += fmt.Sprintf(" AND t.author_id = $%d", argIdx)
		args = append(args, f.AuthorID)
		argIdx++
	}

	var out []models.Ticket
	err := r.db.SelectContext(ctx, &out, ticketSelect+baseWhere+` ORDER BY t.created_at DESC, t.id DESC`, args...)
	return out, err
}

// GetByID returns one ticket with its aggregates.
func (r *TicketRepository) GetByID(ctx context.Context, id int) (*models.Ticket, error) {
	var t models.Ticket
	if err := r.db.GetContext(ctx, &t, ticketSelect+`WHERE t.id = $1`, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBetween returns the tickets where one user is the author and the other
// the master.
func (r *TicketRepository) GetBetween(ctx context.Context, a, b int) ([]models.Ticket, error) {
	var out []models.Ticket
	err := r.db.SelectContext(ctx, &out, ticketSelect+`
		WHERE (t.author_id = $1 AND t.master_id = $2) OR (t.author_id = $2 AND t.master_id = $1)
		ORDER BY t.created_at DESC`, a, b)
	return out, err
}

func (r *TicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	query := `
		INSERT INTO tickets (title, description, budget, unit, category_id, subcategory_id,
			author_id, master_id, active, service)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, t.Title, t.Description, t.Budget, t.Unit, t.CategoryID,
		t.SubcategoryID, t.AuthorID, t.MasterID, t.Active, t.Service).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update writes every mutable column. Concurrent edits are last-write-wins.
func (r *TicketRepository) Update(ctx context.Context, t *models.Ticket) error {
	query := `
		UPDATE tickets SET title = $1, description = $2, budget = $3, unit = $4, category_id = $5,
			subcategory_id = $6, master_id = $7, active = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query, t.Title, t.Description, t.Budget, t.Unit, t.CategoryID,
		t.SubcategoryID, t.MasterID, t.Active, t.ID).Scan(&t.UpdatedAt)
}
