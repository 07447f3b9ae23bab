package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/address"
)

// ProfileAddress is one address of a profile with its rendered forms.
type ProfileAddress struct {
	address.View
	Formatted string `json:"formatted"`
	Short     string `json:"short"`
}

// Profile is the per-user page: identity, addresses, occupations and the
// reviews about the user.
type Profile struct {
	User        models.UserResponse     `json:"user"`
	Addresses   []ProfileAddress        `json:"addresses"`
	Occupations []models.Occupation     `json:"occupations"`
	Reviews     []models.ReviewResponse `json:"reviews"`
	Rating      models.RatingSummary    `json:"rating"`
}

// ProfileService composes profiles.
type ProfileService struct {
	users     UserStore
	addresses AddressStore
	geo       *GeographyService
	reviews   *ReviewService
}

func NewProfileService(users UserStore, addresses AddressStore, geo *GeographyService, reviews *ReviewService) *ProfileService {
	return &ProfileService{users: users, addresses: addresses, geo: geo, reviews: reviews}
}

// User returns the public view of a user.
func (s *ProfileService) User(ctx context.Context, id int) (*models.UserResponse, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	r := models.NewUserResponse(u)
	return &r, nil
}

// Get builds the profile of a user.
func (s *ProfileService) Get(ctx context.Context, id int) (*Profile, error) {
	user, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: *user, Addresses: []ProfileAddress{}}
	if p.Occupations, err = s.users.GetOccupations(ctx, id); err != nil {
		return nil, err
	}
	p.Occupations = nonNil(p.Occupations)

	addrs, err := s.addresses.GetByOwners(ctx, models.AddressOwnerUser, []int{id})
	if err != nil {
		return nil, err
	}
	if len(addrs[id]) > 0 {
		geo, err := s.geo.Geography(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range addrs[id] {
			v := s.geo.View(geo, a)
			p.Addresses = append(p.Addresses, ProfileAddress{
				View:      v,
				Formatted: address.Format(v),
				Short:     address.FormatShort(v),
			})
		}
	}

	if p.Reviews, err = s.reviews.List(ctx, id, ""); err != nil {
		return nil, err
	}
	if p.Rating, err = s.reviews.Summary(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateAddresses replaces a user's own addresses. Profiles use the flow
// where city and district branches may coexist.
func (s *ProfileService) UpdateAddresses(ctx context.Context, actor account.Actor, payloads []address.Payload) (*Profile, error) {
	if !actor.Authenticated() {
		return nil, utils.ErrUnauthorized
	}
	rows := make([]models.Address, 0, len(payloads))
	for i := range payloads {
		sel, err := payloads[i].Selection()
		if err != nil {
			return nil, fmt.Errorf("%w: address %d: %v", utils.ErrValidation, i+1, err)
		}
		if err := s.geo.CheckSelection(ctx, sel, address.ProfileFlow); err != nil {
			return nil, fmt.Errorf("address %d: %w", i+1, err)
		}
		rows = append(rows, addressRow(sel))
	}
	if err := s.addresses.Replace(ctx, models.AddressOwnerUser, actor.ID, rows); err != nil {
		return nil, err
	}
	return s.Get(ctx, actor.ID)
}
