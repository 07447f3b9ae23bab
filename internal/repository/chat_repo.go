package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/utils"
)

// ChatRepository handles database operations for chats.
type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func orderPair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetBetween returns the chat of a pair of users.
func (r *ChatRepository) GetBetween(ctx context.Context, a, b int) (*models.Chat, error) {
	low, high := orderPair(a, b)
	var c models.Chat
	err := r.db.GetContext(ctx, &c, `SELECT id, user_low, user_high, created_at FROM chats WHERE user_low = $1 AND user_high = $2`, low, high)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepository) GetByID(ctx context.Context, id int) (*models.Chat, error) {
	var c models.Chat
	if err := r.db.GetContext(ctx, &c, `SELECT id, user_low, user_high, created_at FROM chats WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a chat. A second chat for the same pair fails with
// utils.ErrChatExists.
func (r *ChatRepository) Create(ctx context.Context, a, b int) (*models.Chat, error) {
	low, high := orderPair(a, b)
	c := models.Chat{UserLow: low, UserHigh: high}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO chats (user_low, user_high) VALUES ($1, $2)
		RETURNING id, created_at
	`, low, high).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, utils.ErrChatExists
		}
		return nil, err
	}
	return &c, nil
}
