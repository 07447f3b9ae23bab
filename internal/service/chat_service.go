package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/internal/events"
	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// ChatService looks up and opens chats between two users.
type ChatService struct {
	chats  ChatStore
	users  UserStore
	events events.Publisher
}

func NewChatService(chats ChatStore, users UserStore, pub events.Publisher) *ChatService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &ChatService{chats: chats, users: users, events: pub}
}

// With returns the chat between actor and another user as a list of zero or
// one element.
func (s *ChatService) With(ctx context.Context, actor account.Actor, otherID int) ([]models.ChatResponse, error) {
	if !actor.Authenticated() {
		return nil, utils.ErrUnauthorized
	}
	c, err := s.chats.GetBetween(ctx, actor.ID, otherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.ChatResponse{}, nil
		}
		return nil, err
	}
	return []models.ChatResponse{chatResponse(c)}, nil
}

// Open creates the chat between actor and participant. A pair already
// chatting yields utils.ErrChatExists.
func (s *ChatService) Open(ctx context.Context, actor account.Actor, participantID int) (*models.ChatResponse, error) {
	if !actor.Authenticated() {
		return nil, utils.ErrUnauthorized
	}
	if participantID == actor.ID {
		return nil, eligibility.ErrSelfTarget
	}
	if _, err := s.users.GetByID(ctx, participantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: participant not found", utils.ErrValidation)
		}
		return nil, err
	}

	c, err := s.chats.Create(ctx, actor.ID, participantID)
	if err != nil {
		return nil, err
	}
	if err := s.events.Publish(ctx, events.ChatCreated, map[string]int{
		"id": c.ID, "userLow": c.UserLow, "userHigh": c.UserHigh,
	}); err != nil {
		log.Warn().Err(err).Int("chat_id", c.ID).Msg("failed to publish event")
	}
	r := chatResponse(c)
	return &r, nil
}

func chatResponse(c *models.Chat) models.ChatResponse {
	return models.ChatResponse{
		ID:           c.ID,
		IRI:          eligibility.ChatIRI(c.ID),
		Participants: []string{account.UserIRI(c.UserLow), account.UserIRI(c.UserHigh)},
		CreatedAt:    c.CreatedAt,
	}
}
