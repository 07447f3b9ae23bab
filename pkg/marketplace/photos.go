package marketplace

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// Photo is an uploaded image attached to a review or complaint.
type Photo struct {
	ID          int       `json:"id"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PhotoFailure records one photo that could not be attached.
type PhotoFailure struct {
	Name string
	Err  error
}

// PhotoReport is the outcome of the photo uploads following a submission.
// The record itself is kept whatever the outcome.
type PhotoReport struct {
	Uploaded []Photo
	Failed   []PhotoFailure
}

// Total is the number of photos attempted.
func (r PhotoReport) Total() int {
	return len(r.Uploaded) + len(r.Failed)
}

// Warning returns a user-facing note on partial success, or "" when every
// photo was attached.
func (r PhotoReport) Warning() string {
	if len(r.Failed) == 0 {
		return ""
	}
	return fmt.Sprintf("saved, but %d of %d photos could not be uploaded", len(r.Failed), r.Total())
}

// uploadAll uploads photos one at a time to path. A failed upload is
// recorded and the remaining photos are still attempted.
func (c *Client) uploadAll(ctx context.Context, path string, photos []eligibility.Photo) PhotoReport {
	var report PhotoReport
	for _, p := range photos {
		var uploaded Photo
		if err := c.upload(ctx, path, p, &uploaded); err != nil {
			log.Warn().Err(err).Str("path", path).Str("photo", photoName(p)).Msg("Photo upload failed")
			report.Failed = append(report.Failed, PhotoFailure{Name: photoName(p), Err: err})
			continue
		}
		report.Uploaded = append(report.Uploaded, uploaded)
	}
	return report
}
