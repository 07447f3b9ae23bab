package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_market/internal/events"
	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

type reviewFixture struct {
	svc     *ReviewService
	reviews *fakeReviews
	pub     *recordingPublisher
}

func newReviewFixture() reviewFixture {
	tickets := newFakeTickets(
		models.Ticket{ID: 1, AuthorID: anna.ID, MasterID: nullInt(boris.ID), Active: true},
		models.Ticket{ID: 2, AuthorID: vera.ID, MasterID: nullInt(boris.ID), Active: false},
	)
	photos, _ := newTestPhotos()
	f := reviewFixture{reviews: &fakeReviews{}, pub: &recordingPublisher{}}
	f.svc = NewReviewService(f.reviews, tickets, testUsers(), photos, f.pub)
	return f
}

func reviewBy(ticketID int, reviewType account.Role, rating int) eligibility.ReviewPayload {
	return eligibility.ReviewPayload{
		Rating:      rating,
		Description: " Quick and tidy ",
		Ticket:      eligibility.TicketIRI(ticketID),
		Master:      account.UserIRI(boris.ID),
		Client:      account.UserIRI(anna.ID),
		Type:        reviewType,
	}
}

func TestReviewCreate(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	rv, err := f.svc.Create(ctx, anna, reviewBy(1, account.RoleMaster, 5))
	require.NoError(t, err)
	assert.Equal(t, "master", rv.Type)
	assert.Equal(t, "Quick and tidy", rv.Description)
	assert.Equal(t, account.UserIRI(anna.ID), rv.Author)
	assert.NotNil(t, rv.Images)
	assert.Equal(t, []string{events.ReviewCreated}, f.pub.keys())

	rv, err = f.svc.Create(ctx, boris, reviewBy(1, account.RoleClient, 4))
	require.NoError(t, err)
	assert.Equal(t, "client", rv.Type)

	list, err := f.svc.List(ctx, boris.ID, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	sum, err := f.svc.Summary(ctx, boris.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingSummary{Count: 1, Average: 5}, sum)
}

func TestReviewCreateRejects(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, account.Guest(), reviewBy(1, account.RoleMaster, 5))
	assert.ErrorIs(t, err, eligibility.ErrNotAuthenticated)

	// Not a party of the payload.
	_, err = f.svc.Create(ctx, vera, reviewBy(1, account.RoleMaster, 5))
	assert.ErrorIs(t, err, eligibility.ErrReviewNotAllowed)

	// Client about client.
	p := reviewBy(1, account.RoleClient, 5)
	p.Master = account.UserIRI(vera.ID)
	_, err = f.svc.Create(ctx, anna, p)
	assert.ErrorIs(t, err, eligibility.ErrReviewNotAllowed)

	_, err = f.svc.Create(ctx, anna, reviewBy(1, account.RoleClient, 5))
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = f.svc.Create(ctx, anna, reviewBy(2, account.RoleMaster, 5))
	assert.ErrorIs(t, err, eligibility.ErrNoActiveTicket)

	_, err = f.svc.Create(ctx, anna, reviewBy(99, account.RoleMaster, 5))
	assert.ErrorIs(t, err, eligibility.ErrNoActiveTicket)

	_, err = f.svc.Create(ctx, anna, reviewBy(1, account.RoleMaster, 6))
	assert.ErrorIs(t, err, eligibility.ErrInvalidRating)

	_, err = f.svc.List(ctx, boris.ID, "admin")
	assert.ErrorIs(t, err, utils.ErrValidation)

	assert.Empty(t, f.reviews.rows)
	assert.Empty(t, f.pub.keys())

	// Once per ticket and author.
	_, err = f.svc.Create(ctx, anna, reviewBy(1, account.RoleMaster, 5))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.svc.Create(ctx, anna, reviewBy(1, account.RoleMaster, 1))
		assert.ErrorIs(t, err, utils.ErrAlreadyReviewed)
	}
	summary, err := f.svc.Summary(ctx, boris.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, 5.0, summary.Average)
	assert.Len(t, f.pub.keys(), 1)

	// The other side may still review the same ticket.
	_, err = f.svc.Create(ctx, boris, reviewBy(1, account.RoleClient, 4))
	assert.NoError(t, err)
}

func TestReviewAddPhoto(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	rv, err := f.svc.Create(ctx, anna, reviewBy(1, account.RoleMaster, 5))
	require.NoError(t, err)

	_, err = f.svc.AddPhoto(ctx, boris, rv.ID, PhotoUpload{Data: pngHeader})
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = f.svc.AddPhoto(ctx, anna, 77, PhotoUpload{Data: pngHeader})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	photo, err := f.svc.AddPhoto(ctx, anna, rv.ID, PhotoUpload{Name: "sink.png", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "image/png", photo.ContentType)

	list, err := f.svc.List(ctx, boris.ID, "master")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Images, 1)
}
