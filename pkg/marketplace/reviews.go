package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// Review is a rating one party left about the other.
type Review struct {
	ID          int       `json:"id"`
	IRI         string    `json:"@id"`
	Rating      int       `json:"rating"`
	Description string    `json:"description"`
	Ticket      string    `json:"ticket"`
	Master      string    `json:"master"`
	Client      string    `json:"client"`
	Author      string    `json:"author"`
	Type        string    `json:"type"`
	Images      []Photo   `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Reviews lists the reviews about userID. An empty reviewType returns both
// kinds.
func (c *Client) Reviews(ctx context.Context, userID int, reviewType account.Role) ([]Review, error) {
	q := url.Values{"user": []string{strconv.Itoa(userID)}}
	if reviewType != account.RoleGuest {
		q.Set("type", string(reviewType))
	}
	return getList[Review](ctx, c, "/api/reviews", q)
}

// SubmitReview rates target on behalf of actor. Eligibility is checked
// against the given target before any request is made; the target's role is
// then confirmed with the API and an active ticket between the two is
// required. Photos are uploaded one by one after the review exists.
func (c *Client) SubmitReview(ctx context.Context, actor account.Actor, target eligibility.Party, draft eligibility.Draft) (*Review, PhotoReport, error) {
	if _, err := eligibility.CheckReview(actor, target); err != nil {
		return nil, PhotoReport{}, err
	}

	api := c.As(actor)
	user, err := api.User(ctx, target.ID)
	if err != nil {
		return nil, PhotoReport{}, fmt.Errorf("load review target: %w", err)
	}
	confirmed := user.Party()
	if confirmed.Role != target.Role {
		if _, err := eligibility.CheckReview(actor, confirmed); err != nil {
			return nil, PhotoReport{}, err
		}
	}

	links, err := api.TicketLinks(ctx, confirmed.ID)
	if err != nil {
		return nil, PhotoReport{}, fmt.Errorf("load tickets: %w", err)
	}
	ticket, err := eligibility.FindActiveTicket(links, actor.ID, confirmed.ID)
	if err != nil {
		return nil, PhotoReport{}, err
	}

	payload, err := eligibility.BuildReview(actor, confirmed, ticket, draft)
	if err != nil {
		return nil, PhotoReport{}, err
	}

	var review Review
	if err := api.doRequest(ctx, http.MethodPost, "/api/reviews", nil, payload, &review); err != nil {
		return nil, PhotoReport{}, err
	}

	report := api.uploadAll(ctx, fmt.Sprintf("/api/reviews/%d/photos", review.ID), draft.Photos)
	review.Images = append(review.Images, report.Uploaded...)
	return &review, report, nil
}

// IsEligibilityError reports whether err is a business-rule rejection
// rather than an API failure.
func IsEligibilityError(err error) bool {
	for _, target := range []error{
		eligibility.ErrNotAuthenticated,
		eligibility.ErrSelfTarget,
		eligibility.ErrReviewNotAllowed,
		eligibility.ErrNoActiveTicket,
		eligibility.ErrInvalidRating,
		eligibility.ErrNoLink,
		eligibility.ErrTitleRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
