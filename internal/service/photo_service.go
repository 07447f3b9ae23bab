package service

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/utils"
)

// PhotoUpload is one file received from a multipart request.
type PhotoUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// PhotoService validates, moderates and stores photos of reviews and appeals.
type PhotoService struct {
	store     PhotoStore
	storage   ObjectStorage
	moderator Moderator
	maxBytes  int64
}

// NewPhotoService creates a PhotoService. A zero maxBytes means 10 MiB.
func NewPhotoService(store PhotoStore, storage ObjectStorage, moderator Moderator, maxBytes int64) *PhotoService {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	if moderator == nil {
		moderator = NopModerator{}
	}
	return &PhotoService{store: store, storage: storage, moderator: moderator, maxBytes: maxBytes}
}

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Attach stores an image for the owner and records it.
func (s *PhotoService) Attach(ctx context.Context, ownerType string, ownerID int, up PhotoUpload) (*models.Photo, error) {
	if len(up.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", utils.ErrValidation)
	}
	if int64(len(up.Data)) > s.maxBytes {
		return nil, utils.ErrPhotoTooLarge
	}

	// Trust the bytes, not the client header.
	contentType := http.DetectContentType(up.Data)
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %s", utils.ErrValidation, contentType)
	}

	labels, err := s.moderator.Moderate(ctx, up.Data)
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		log.Warn().Str("owner_type", ownerType).Int("owner_id", ownerID).Strs("labels", labels).Msg("photo rejected by moderation")
		return nil, fmt.Errorf("%w: %s", utils.ErrPhotoRejected, strings.Join(labels, ", "))
	}

	key := path.Join(ownerType+"s", fmt.Sprint(ownerID), uuid.NewString()+ext)
	url, err := s.storage.Put(ctx, key, contentType, up.Data)
	if err != nil {
		return nil, err
	}

	p := &models.Photo{
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		ObjectKey:   key,
		URL:         url,
		ContentType: contentType,
		Size:        int64(len(up.Data)),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("save photo: %w", err)
	}
	return p, nil
}

// ByOwners returns the photos of several owners.
func (s *PhotoService) ByOwners(ctx context.Context, ownerType string, ownerIDs []int) (map[int][]models.Photo, error) {
	return s.store.GetByOwners(ctx, ownerType, ownerIDs)
}
