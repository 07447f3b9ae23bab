package service

import (
	"context"

	"github.com/GTDGit/gtd_market/internal/cache"
	"github.com/GTDGit/gtd_market/internal/models"
)

// The interfaces below are satisfied by the repository and cache types and
// let services be exercised against in-memory fakes.

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	GetOccupations(ctx context.Context, userID int) ([]models.Occupation, error)
	GetNames(ctx context.Context, ids []int) (map[int]string, error)
}

type GeographyStore interface {
	GetAll(ctx context.Context, level models.GeographyLevel) ([]models.GeoRow, error)
}

type GeographyCacher interface {
	Get(ctx context.Context) (*cache.GeographySnapshot, error)
	Set(ctx context.Context, snap *cache.GeographySnapshot) error
}

type AddressStore interface {
	GetByOwners(ctx context.Context, ownerType string, ownerIDs []int) (map[int][]models.Address, error)
	Replace(ctx context.Context, ownerType string, ownerID int, addrs []models.Address) error
}

type TicketStore interface {
	List(ctx context.Context, f models.TicketFilter) ([]models.Ticket, error)
	GetByID(ctx context.Context, id int) (*models.Ticket, error)
	GetBetween(ctx context.Context, a, b int) ([]models.Ticket, error)
	Create(ctx context.Context, t *models.Ticket) error
	Update(ctx context.Context, t *models.Ticket) error
}

type ReviewStore interface {
	ListAbout(ctx context.Context, userID int, reviewType string) ([]models.Review, error)
	Summary(ctx context.Context, userID int) (models.RatingSummary, error)
	GetByID(ctx context.Context, id int) (*models.Review, error)
	Create(ctx context.Context, rv *models.Review) error
}

type AppealStore interface {
	ListByAuthor(ctx context.Context, authorID int) ([]models.Appeal, error)
	GetByID(ctx context.Context, id int) (*models.Appeal, error)
	Create(ctx context.Context, a *models.Appeal) error
	GetReasons(ctx context.Context) ([]models.AppealReason, error)
}

type ChatStore interface {
	GetBetween(ctx context.Context, a, b int) (*models.Chat, error)
	GetByID(ctx context.Context, id int) (*models.Chat, error)
	Create(ctx context.Context, a, b int) (*models.Chat, error)
}

type CatalogStore interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetOccupations(ctx context.Context, categoryID int) ([]models.Occupation, error)
	GetOccupation(ctx context.Context, id int) (*models.Occupation, error)
	CategoryExists(ctx context.Context, id int) (bool, error)
}

type PhotoStore interface {
	Create(ctx context.Context, p *models.Photo) error
	GetByOwners(ctx context.Context, ownerType string, ownerIDs []int) (map[int][]models.Photo, error)
}
