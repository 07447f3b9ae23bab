package handler

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// maxUploadBytes caps what is read from a multipart file; the photo service
// applies the configured limit. Larger files are refused, never truncated.
var maxUploadBytes int64 = 32 << 20

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		utils.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, eligibility.ErrNotAuthenticated), errors.Is(err, utils.ErrUnauthorized):
		utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, utils.ErrInvalidToken):
		utils.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	case errors.Is(err, utils.ErrForbidden):
		utils.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to do this")
	case errors.Is(err, eligibility.ErrSelfTarget):
		utils.Error(c, http.StatusForbidden, "SELF_TARGET", err.Error())
	case errors.Is(err, eligibility.ErrReviewNotAllowed):
		utils.Error(c, http.StatusForbidden, "REVIEW_NOT_ALLOWED", err.Error())
	case errors.Is(err, eligibility.ErrNoActiveTicket):
		utils.Error(c, http.StatusUnprocessableEntity, "NO_ACTIVE_TICKET", err.Error())
	case errors.Is(err, eligibility.ErrInvalidRating):
		utils.ValidationError(c, err.Error(), map[string]string{"rating": err.Error()})
	case errors.Is(err, eligibility.ErrTitleRequired):
		utils.ValidationError(c, err.Error(), map[string]string{"title": err.Error()})
	case errors.Is(err, eligibility.ErrNoLink):
		utils.Error(c, http.StatusUnprocessableEntity, "NO_LINK", err.Error())
	case errors.Is(err, utils.ErrValidation):
		utils.ValidationError(c, validationMessage(err), nil)
	case errors.Is(err, utils.ErrChatExists):
		utils.Error(c, http.StatusConflict, utils.ErrChatExists.Error(), "A chat between these users already exists")
	case errors.Is(err, utils.ErrAlreadyReviewed):
		utils.Error(c, http.StatusConflict, utils.ErrAlreadyReviewed.Error(), "You have already reviewed this ticket")
	case errors.Is(err, utils.ErrConflict):
		utils.Error(c, http.StatusConflict, "CONFLICT", validationMessage(err))
	case errors.Is(err, utils.ErrPhotoTooLarge):
		utils.Error(c, http.StatusRequestEntityTooLarge, utils.ErrPhotoTooLarge.Error(), "Photo is too large")
	case errors.Is(err, utils.ErrPhotoRejected):
		utils.Error(c, http.StatusUnprocessableEntity, utils.ErrPhotoRejected.Error(), "Photo was rejected by moderation")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// validationMessage drops the sentinel prefix added by fmt.Errorf("%w: ...").
func validationMessage(err error) string {
	msg := err.Error()
	for _, s := range []error{utils.ErrValidation, utils.ErrConflict} {
		msg = strings.TrimPrefix(msg, s.Error()+": ")
	}
	return msg
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryID reads an optional positive id query parameter. A missing value
// yields 0; a malformed one is answered with 400.
func queryID(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return id, true
}

func requiredQueryID(c *gin.Context, name string) (int, bool) {
	if c.Query(name) == "" {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", name+" is required")
		return 0, false
	}
	return queryID(c, name)
}

// readPhoto reads the "file" part of a multipart request.
func readPhoto(c *gin.Context) (service.PhotoUpload, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Multipart field \"file\" is required")
		return service.PhotoUpload{}, false
	}
	if fh.Size > maxUploadBytes {
		respondError(c, utils.ErrPhotoTooLarge)
		return service.PhotoUpload{}, false
	}
	f, err := fh.Open()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Unreadable file")
		return service.PhotoUpload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Unreadable file")
		return service.PhotoUpload{}, false
	}
	if int64(len(data)) > maxUploadBytes {
		respondError(c, utils.ErrPhotoTooLarge)
		return service.PhotoUpload{}, false
	}
	return service.PhotoUpload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, true
}
