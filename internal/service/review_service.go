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

// ReviewService creates and lists reviews.
type ReviewService struct {
	reviews ReviewStore
	tickets TicketStore
	users   UserStore
	photos  *PhotoService
	events  events.Publisher
}

// NewReviewService creates a ReviewService.
func NewReviewService(reviews ReviewStore, tickets TicketStore, users UserStore, photos *PhotoService, pub events.Publisher) *ReviewService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &ReviewService{reviews: reviews, tickets: tickets, users: users, photos: photos, events: pub}
}

// List returns the reviews about a user, optionally of one type.
func (s *ReviewService) List(ctx context.Context, userID int, reviewType string) ([]models.ReviewResponse, error) {
	if reviewType != "" {
		if r, err := account.ParseRole(reviewType); err != nil || !r.Valid() {
			return nil, fmt.Errorf("%w: type must be client or master", utils.ErrValidation)
		}
	}
	rows, err := s.reviews.ListAbout(ctx, userID, reviewType)
	if err != nil {
		return nil, err
	}
	return s.responses(ctx, rows)
}

// Create validates the payload against the eligibility rules and stores it.
// The actor must be one of the two sides of an active ticket and of the
// opposite role of the reviewed user.
func (s *ReviewService) Create(ctx context.Context, actor account.Actor, p eligibility.ReviewPayload) (*models.ReviewResponse, error) {
	if !actor.Authenticated() {
		return nil, eligibility.ErrNotAuthenticated
	}

	masterID, err := account.ParseUserIRI(p.Master)
	if err != nil {
		return nil, fmt.Errorf("%w: master: %v", utils.ErrValidation, err)
	}
	clientID, err := account.ParseUserIRI(p.Client)
	if err != nil {
		return nil, fmt.Errorf("%w: client: %v", utils.ErrValidation, err)
	}
	ticketID, err := eligibility.ParseTicketIRI(p.Ticket)
	if err != nil {
		return nil, fmt.Errorf("%w: ticket: %v", utils.ErrValidation, err)
	}

	var targetID int
	switch actor.ID {
	case masterID:
		targetID = clientID
	case clientID:
		targetID = masterID
	default:
		return nil, eligibility.ErrReviewNotAllowed
	}
	target, err := s.party(ctx, targetID)
	if err != nil {
		return nil, err
	}

	reviewType, err := eligibility.CheckReview(actor, target)
	if err != nil {
		return nil, err
	}
	if p.Type != reviewType {
		return nil, fmt.Errorf("%w: type must be %q", utils.ErrValidation, reviewType)
	}
	// The master/client slots must hold users of those roles.
	if (actor.Role == account.RoleMaster) != (actor.ID == masterID) {
		return nil, eligibility.ErrReviewNotAllowed
	}

	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eligibility.ErrNoActiveTicket
		}
		return nil, err
	}
	link := ticketLink(*t)
	if !link.Active || !link.Links(actor.ID, targetID) {
		return nil, eligibility.ErrNoActiveTicket
	}
	if p.Rating < 1 || p.Rating > 5 {
		return nil, eligibility.ErrInvalidRating
	}

	rv := &models.Review{
		Rating:      p.Rating,
		Description: strings.TrimSpace(p.Description),
		TicketID:    ticketID,
		MasterID:    masterID,
		ClientID:    clientID,
		AuthorID:    actor.ID,
		Type:        string(reviewType),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.events.Publish(ctx, events.ReviewCreated, map[string]interface{}{
		"id": rv.ID, "ticketId": rv.TicketID, "masterId": rv.MasterID, "clientId": rv.ClientID,
		"type": rv.Type, "rating": rv.Rating,
	}); err != nil {
		log.Warn().Err(err).Int("review_id", rv.ID).Msg("failed to publish event")
	}

	out, err := s.responses(ctx, []models.Review{*rv})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// AddPhoto attaches an image to a review written by actor.
func (s *ReviewService) AddPhoto(ctx context.Context, actor account.Actor, reviewID int, up PhotoUpload) (*models.Photo, error) {
	if !actor.Authenticated() {
		return nil, utils.ErrUnauthorized
	}
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	if rv.AuthorID != actor.ID {
		return nil, utils.ErrForbidden
	}
	return s.photos.Attach(ctx, models.PhotoOwnerReview, rv.ID, up)
}

// Summary aggregates the reviews about a user.
func (s *ReviewService) Summary(ctx context.Context, userID int) (models.RatingSummary, error) {
	return s.reviews.Summary(ctx, userID)
}

func (s *ReviewService) party(ctx context.Context, id int) (eligibility.Party, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eligibility.Party{}, fmt.Errorf("%w: user %d not found", utils.ErrValidation, id)
		}
		return eligibility.Party{}, err
	}
	role, _ := account.ParseRole(u.Role)
	return eligibility.Party{ID: u.ID, Role: role}, nil
}

func (s *ReviewService) responses(ctx context.Context, rows []models.Review) ([]models.ReviewResponse, error) {
	out := make([]models.ReviewResponse, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	photos, err := s.photos.ByOwners(ctx, models.PhotoOwnerReview, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out = append(out, models.ReviewResponse{
			ID:          r.ID,
			IRI:         fmt.Sprintf("/api/reviews/%d", r.ID),
			Rating:      r.Rating,
			Description: r.Description,
			Ticket:      eligibility.TicketIRI(r.TicketID),
			Master:      account.UserIRI(r.MasterID),
			Client:      account.UserIRI(r.ClientID),
			Author:      account.UserIRI(r.AuthorID),
			Type:        r.Type,
			Images:      nonNil(photos[r.ID]),
			CreatedAt:   r.CreatedAt,
		})
	}
	return out, nil
}
