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
	"github.com/GTDGit/gtd_market/pkg/address"
	"github.com/GTDGit/gtd_market/pkg/directory"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// TicketInput is the body of POST /api/tickets.
type TicketInput struct {
	Title         string            `json:"title" binding:"required,max=255"`
	Description   string            `json:"description"`
	Budget        float64           `json:"budget" binding:"gte=0"`
	Unit          string            `json:"unit" binding:"max=64"`
	CategoryID    int               `json:"categoryId" binding:"required,gt=0"`
	SubcategoryID int               `json:"subcategoryId" binding:"gte=0"`
	Addresses     []address.Payload `json:"addresses"`
}

// TicketPatch is the body of PATCH /api/tickets/:id. Absent fields are kept.
// Master is a user IRI; an empty string unassigns the master.
type TicketPatch struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Budget        *float64           `json:"budget"`
	Unit          *string            `json:"unit"`
	CategoryID    *int               `json:"categoryId"`
	SubcategoryID *int               `json:"subcategoryId"`
	Active        *bool              `json:"active"`
	Master        *string            `json:"master"`
	Addresses     *[]address.Payload `json:"addresses"`
}

// TicketService manages tickets and renders them as directory listings.
type TicketService struct {
	tickets   TicketStore
	addresses AddressStore
	catalog   CatalogStore
	users     UserStore
	geo       *GeographyService
	events    events.Publisher
}

// NewTicketService creates a TicketService.
func NewTicketService(tickets TicketStore, addresses AddressStore, catalog CatalogStore, users UserStore, geo *GeographyService, pub events.Publisher) *TicketService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &TicketService{tickets: tickets, addresses: addresses, catalog: catalog, users: users, geo: geo, events: pub}
}

// List runs a directory query.
func (s *TicketService) List(ctx context.Context, q directory.Query) ([]directory.Listing, error) {
	f := models.TicketFilter{
		CategoryID:    q.Category,
		SubcategoryID: q.Subcategory,
		Service:       q.Service,
		ExcludeAuthor: q.ExcludeAuthor,
		ExcludeMaster: q.ExcludeMaster,
	}
	if q.Active {
		f.Active = &q.Active
	}
	rows, err := s.tickets.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.listings(ctx, rows)
}

// Get returns one ticket.
func (s *TicketService) Get(ctx context.Context, id int) (*directory.Listing, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	out, err := s.listings(ctx, []models.Ticket{*t})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Create stores a new ticket authored by actor. Masters create service
// offers and are their own master; clients create requests.
func (s *TicketService) Create(ctx context.Context, actor account.Actor, in TicketInput) (*directory.Listing, error) {
	if !actor.Authenticated() {
		return nil, utils.ErrUnauthorized
	}
	if err := s.checkCategory(ctx, in.CategoryID, in.SubcategoryID); err != nil {
		return nil, err
	}
	addrs, err := s.resolveAddresses(ctx, in.Addresses)
	if err != nil {
		return nil, err
	}

	t := &models.Ticket{
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Budget:        in.Budget,
		Unit:          strings.TrimSpace(in.Unit),
		CategoryID:    in.CategoryID,
		SubcategoryID: nullInt(in.SubcategoryID),
		AuthorID:      actor.ID,
		Active:        true,
		Service:       actor.Role == account.RoleMaster,
	}
	if t.Title == "" {
		return nil, fmt.Errorf("%w: title is required", utils.ErrValidation)
	}
	if t.Service {
		t.MasterID = nullInt(actor.ID)
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	if err := s.addresses.Replace(ctx, models.AddressOwnerTicket, t.ID, addrs); err != nil {
		return nil, fmt.Errorf("save ticket addresses: %w", err)
	}

	s.publish(ctx, events.TicketCreated, t)
	return s.Get(ctx, t.ID)
}

// Update applies a patch. Only the author may edit; concurrent patches are
// last-write-wins.
func (s *TicketService) Update(ctx context.Context, actor account.Actor, id int, p TicketPatch) (*directory.Listing, error) {
	if !actor.Authenticated() {
		return nil, utils.ErrUnauthorized
	}
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	if t.AuthorID != actor.ID {
		return nil, utils.ErrForbidden
	}

	if p.Title != nil {
		if t.Title = strings.TrimSpace(*p.Title); t.Title == "" {
			return nil, fmt.Errorf("%w: title is required", utils.ErrValidation)
		}
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Budget != nil {
		if *p.Budget < 0 {
			return nil, fmt.Errorf("%w: budget must not be negative", utils.ErrValidation)
		}
		t.Budget = *p.Budget
	}
	if p.Unit != nil {
		t.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.Active != nil {
		t.Active = *p.Active
	}
	if p.CategoryID != nil || p.SubcategoryID != nil {
		if p.CategoryID != nil {
			t.CategoryID = *p.CategoryID
		}
		if p.SubcategoryID != nil {
			t.SubcategoryID = nullInt(*p.SubcategoryID)
		}
		if err := s.checkCategory(ctx, t.CategoryID, int(t.SubcategoryID.Int64)); err != nil {
			return nil, err
		}
	}
	if p.Master != nil {
		if err := s.assignMaster(ctx, t, *p.Master); err != nil {
			return nil, err
		}
	}

	var addrs []models.Address
	if p.Addresses != nil {
		if addrs, err = s.resolveAddresses(ctx, *p.Addresses); err != nil {
			return nil, err
		}
	}
	if err := s.tickets.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	if p.Addresses != nil {
		if err := s.addresses.Replace(ctx, models.AddressOwnerTicket, t.ID, addrs); err != nil {
			return nil, fmt.Errorf("save ticket addresses: %w", err)
		}
	}

	s.publish(ctx, events.TicketUpdated, t)
	return s.Get(ctx, t.ID)
}

// assignMaster sets the master of a client request. Service offers always
// keep their author as master.
func (s *TicketService) assignMaster(ctx context.Context, t *models.Ticket, iri string) error {
	if t.Service {
		return fmt.Errorf("%w: the master of a service offer is its author", utils.ErrValidation)
	}
	if iri == "" {
		t.MasterID = sql.NullInt64{}
		return nil
	}
	id, err := account.ParseUserIRI(iri)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: master not found", utils.ErrValidation)
		}
		return err
	}
	if u.Role != string(account.RoleMaster) {
		return fmt.Errorf("%w: assigned user is not a master", utils.ErrValidation)
	}
	t.MasterID = nullInt(id)
	return nil
}

// Links returns the tickets connecting the actor with another user, in the
// shape eligibility checks consume.
func (s *TicketService) Links(ctx context.Context, actor account.Actor, otherID int) ([]eligibility.TicketLink, error) {
	if !actor.Authenticated() {
		return nil, utils.ErrUnauthorized
	}
	rows, err := s.tickets.GetBetween(ctx, actor.ID, otherID)
	if err != nil {
		return nil, err
	}
	out := make([]eligibility.TicketLink, 0, len(rows))
	for _, t := range rows {
		out = append(out, ticketLink(t))
	}
	return out, nil
}

func ticketLink(t models.Ticket) eligibility.TicketLink {
	return eligibility.TicketLink{
		ID:       t.ID,
		AuthorID: t.AuthorID,
		MasterID: int(t.MasterID.Int64),
		Active:   t.Active,
		Service:  t.Service,
	}
}

func (s *TicketService) checkCategory(ctx context.Context, categoryID, subcategoryID int) error {
	ok, err := s.catalog.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: unknown category", utils.ErrValidation)
	}
	if subcategoryID == 0 {
		return nil
	}
	occ, err := s.catalog.GetOccupation(ctx, subcategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: unknown subcategory", utils.ErrValidation)
		}
		return err
	}
	if occ.CategoryID != categoryID {
		return fmt.Errorf("%w: subcategory does not belong to the category", utils.ErrValidation)
	}
	return nil
}

func (s *TicketService) resolveAddresses(ctx context.Context, payloads []address.Payload) ([]models.Address, error) {
	out := make([]models.Address, 0, len(payloads))
	for i := range payloads {
		sel, err := payloads[i].Selection()
		if err != nil {
			return nil, fmt.Errorf("%w: address %d: %v", utils.ErrValidation, i+1, err)
		}
		if err := s.geo.CheckSelection(ctx, sel, address.TicketFlow); err != nil {
			return nil, fmt.Errorf("address %d: %w", i+1, err)
		}
		out = append(out, addressRow(sel))
	}
	return out, nil
}

func (s *TicketService) listings(ctx context.Context, rows []models.Ticket) ([]directory.Listing, error) {
	out := make([]directory.Listing, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]int, 0, len(rows))
	for _, t := range rows {
		ids = append(ids, t.ID)
	}
	addrs, err := s.addresses.GetByOwners(ctx, models.AddressOwnerTicket, ids)
	if err != nil {
		return nil, err
	}
	geo, err := s.geo.Geography(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range rows {
		l := directory.Listing{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			Budget:        t.Budget,
			Unit:          t.Unit,
			CategoryID:    t.CategoryID,
			SubcategoryID: int(t.SubcategoryID.Int64),
			AuthorID:      t.AuthorID,
			MasterID:      int(t.MasterID.Int64),
			Active:        t.Active,
			Service:       t.Service,
			CreatedAt:     t.CreatedAt,
			ReviewCount:   t.ReviewCount,
			Rating:        t.Rating,
		}
		for _, a := range addrs[t.ID] {
			l.Addresses = append(l.Addresses, s.geo.View(geo, a))
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *TicketService) publish(ctx context.Context, key string, t *models.Ticket) {
	err := s.events.Publish(ctx, key, map[string]interface{}{
		"id":       t.ID,
		"authorId": t.AuthorID,
		"category": t.CategoryID,
		"service":  t.Service,
		"active":   t.Active,
	})
	if err != nil {
		log.Warn().Err(err).Str("event", key).Int("ticket_id", t.ID).Msg("failed to publish event")
	}
}

func addressRow(sel address.Selection) models.Address {
	a := models.Address{
		ProvinceID:   sel.ProvinceID,
		CityID:       nullInt(sel.CityID),
		SettlementID: nullInt(sel.SettlementID),
		CommunityID:  nullInt(sel.CommunityID),
		VillageID:    nullInt(sel.VillageID),
		SuburbIDs:    int64s(sel.SuburbIDs),
		DistrictIDs:  int64s(sel.DistrictIDs),
	}
	if sel.Street != "" {
		a.Street = sql.NullString{String: strings.TrimSpace(sel.Street), Valid: true}
	}
	return a
}

func nullInt(v int) sql.NullInt64 {
	if v <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

func int64s(ids []int) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}
