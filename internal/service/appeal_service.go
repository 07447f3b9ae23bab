package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/internal/events"
	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// AppealService files complaints and lists their reasons.
type AppealService struct {
	appeals AppealStore
	tickets TicketStore
	chats   ChatStore
	users   UserStore
	photos  *PhotoService
	events  events.Publisher
}

// NewAppealService creates an AppealService.
func NewAppealService(appeals AppealStore, tickets TicketStore, chats ChatStore, users UserStore, photos *PhotoService, pub events.Publisher) *AppealService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &AppealService{appeals: appeals, tickets: tickets, chats: chats, users: users, photos: photos, events: pub}
}

// Reasons returns the configured reasons, or the single "other" reason when
// none are configured.
func (s *AppealService) Reasons(ctx context.Context) ([]eligibility.Reason, error) {
	rows, err := s.appeals.GetReasons(ctx)
	if err != nil {
		return nil, err
	}
	fetched := make([]eligibility.Reason, 0, len(rows))
	for _, r := range rows {
		fetched = append(fetched, eligibility.Reason{Code: r.Code, Title: r.Title})
	}
	return eligibility.ResolveReasons(fetched), nil
}

// List returns the appeals filed by actor.
func (s *AppealService) List(ctx context.Context, actor account.Actor) ([]models.AppealResponse, error) {
	if !actor.Authenticated() {
		return nil, utils.ErrUnauthorized
	}
	rows, err := s.appeals.ListByAuthor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.responses(ctx, rows)
}

// Create files a complaint. It must reference a ticket or a chat that links
// the actor with the respondent.
func (s *AppealService) Create(ctx context.Context, actor account.Actor, p eligibility.ComplaintPayload) (*models.AppealResponse, error) {
	if !actor.Authenticated() {
		return nil, eligibility.ErrNotAuthenticated
	}
	respondentID, err := account.ParseUserIRI(p.Respondent)
	if err != nil {
		return nil, fmt.Errorf("%w: respondent: %v", utils.ErrValidation, err)
	}
	respondent, err := s.users.GetByID(ctx, respondentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: respondent not found", utils.ErrValidation)
		}
		return nil, err
	}
	role, _ := account.ParseRole(respondent.Role)
	if err := eligibility.CheckComplaint(actor, eligibility.Party{ID: respondent.ID, Role: role}); err != nil {
		return nil, err
	}

	a := &models.Appeal{
		Title:        strings.TrimSpace(p.Title),
		Reason:       strings.TrimSpace(p.Reason),
		Description:  strings.TrimSpace(p.Description),
		AuthorID:     actor.ID,
		RespondentID: respondentID,
		Status:       models.AppealStatusNew,
	}
	if a.Title == "" {
		return nil, eligibility.ErrTitleRequired
	}
	if err := s.checkReason(ctx, a.Reason); err != nil {
		return nil, err
	}
	if p.Ticket == "" && p.Chat == "" {
		return nil, eligibility.ErrNoLink
	}
	if p.Ticket != "" {
		id, err := s.linkedTicket(ctx, p.Ticket, actor.ID, respondentID)
		if err != nil {
			return nil, err
		}
		a.TicketID = nullInt(id)
	}
	if p.Chat != "" {
		id, err := s.linkedChat(ctx, p.Chat, actor.ID, respondentID)
		if err != nil {
			return nil, err
		}
		a.ChatID = nullInt(id)
	}

	if err := s.appeals.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appeal: %w", err)
	}
	if err := s.events.Publish(ctx, events.AppealCreated, map[string]interface{}{
		"id": a.ID, "authorId": a.AuthorID, "respondentId": a.RespondentID, "reason": a.Reason,
	}); err != nil {
		log.Warn().Err(err).Int("appeal_id", a.ID).Msg("failed to publish event")
	}

	out, err := s.responses(ctx, []models.Appeal{*a})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// AddPhoto attaches an image to an appeal filed by actor.
func (s *AppealService) AddPhoto(ctx context.Context, actor account.Actor, appealID int, up PhotoUpload) (*models.Photo, error) {
	if !actor.Authenticated() {
		return nil, utils.ErrUnauthorized
	}
	a, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	if a.AuthorID != actor.ID {
		return nil, utils.ErrForbidden
	}
	return s.photos.Attach(ctx, models.PhotoOwnerAppeal, a.ID, up)
}

func (s *AppealService) checkReason(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("%w: reason is required", utils.ErrValidation)
	}
	reasons, err := s.Reasons(ctx)
	if err != nil {
		return err
	}
	for _, r := range reasons {
		if r.Code == code {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown reason %q", utils.ErrValidation, code)
}

func (s *AppealService) linkedTicket(ctx context.Context, iri string, a, b int) (int, error) {
	id, err := eligibility.ParseTicketIRI(iri)
	if err != nil {
		return 0, fmt.Errorf("%w: ticket: %v", utils.ErrValidation, err)
	}
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, eligibility.ErrNoLink
		}
		return 0, err
	}
	if !ticketLink(*t).Links(a, b) {
		return 0, eligibility.ErrNoLink
	}
	return id, nil
}

func (s *AppealService) linkedChat(ctx context.Context, iri string, a, b int) (int, error) {
	id, err := eligibility.ParseChatIRI(iri)
	if err != nil {
		return 0, fmt.Errorf("%w: chat: %v", utils.ErrValidation, err)
	}
	c, err := s.chats.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, eligibility.ErrNoLink
		}
		return 0, err
	}
	if !c.HasParticipants(a, b) {
		return 0, eligibility.ErrNoLink
	}
	return id, nil
}

func (s *AppealService) responses(ctx context.Context, rows []models.Appeal) ([]models.AppealResponse, error) {
	out := make([]models.AppealResponse, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]int, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, a.ID)
	}
	photos, err := s.photos.ByOwners(ctx, models.PhotoOwnerAppeal, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range rows {
		r := models.AppealResponse{
			ID:          a.ID,
			IRI:         fmt.Sprintf("/api/appeals/%d", a.ID),
			Title:       a.Title,
			Reason:      a.Reason,
			Description: a.Description,
			Author:      account.UserIRI(a.AuthorID),
			Respondent:  account.UserIRI(a.RespondentID),
			Status:      a.Status,
			Images:      nonNil(photos[a.ID]),
			CreatedAt:   a.CreatedAt,
		}
		if a.TicketID.Valid {
			r.Ticket = eligibility.TicketIRI(int(a.TicketID.Int64))
		}
		if a.ChatID.Valid {
			r.Chat = eligibility.ChatIRI(int(a.ChatID.Int64))
		}
		out = append(out, r)
	}
	return out, nil
}
