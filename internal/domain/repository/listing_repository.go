package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// Box is a lat/lng window used to pre-filter nearby queries.
type Box struct {
	MinLat, MaxLat, MinLng, MaxLng float64
}

// ListingFilter covers the public list filters of both listing kinds.
// Fields a kind does not have are ignored by its repository.
type ListingFilter struct {
	Status    entity.ListingStatus
	OwnerID   *primitive.ObjectID
	City      string
	Type      string // property type
	Gender    string
	MealTypes string
	PriceMin  int64
	PriceMax  int64
	Amenities []string
	Q         string
	Sort      string
	Page      Page
}

// PropertyChanges is a partial update. Nil fields are left as stored.
// Resubmit moves an approved listing back to pending.
type PropertyChanges struct {
	Title          *string
	Description    *string
	Type           *entity.PropertyType
	Gender         *string
	Address        *string
	City           *string
	State          *string
	Pincode        *string
	Location       *entity.Location
	Price          *int64
	Deposit        *int64
	Amenities      []string
	RoomsAvailable *int
	Resubmit       bool
}

// MessChanges is the mess counterpart of PropertyChanges.
type MessChanges struct {
	Name         *string
	Description  *string
	Address      *string
	City         *string
	Location     *entity.Location
	MonthlyPrice *int64
	MealsPerDay  *int
	MealTypes    *string
	Menu         []entity.MenuDay
	Resubmit     bool
}

type PropertyRepository interface {
	Create(ctx context.Context, p *entity.Property) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Property, error)
	// Update writes only the fields set in c and returns the stored listing.
	Update(ctx context.Context, id primitive.ObjectID, c PropertyChanges) (*entity.Property, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f ListingFilter) ([]entity.Property, int64, error)
	ListInBox(ctx context.Context, box Box, status entity.ListingStatus) ([]entity.Property, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status entity.ListingStatus, reason string) error
	SetAIReview(ctx context.Context, id primitive.ObjectID, r entity.AIReview) error
	AddImages(ctx context.Context, id primitive.ObjectID, urls []string) error
	// DecrementRooms takes one room when at least one is left, else ErrConflict.
	DecrementRooms(ctx context.Context, id primitive.ObjectID) error
	IncrementRooms(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) (map[entity.ListingStatus]int64, error)
}

type MessRepository interface {
	Create(ctx context.Context, m *entity.Mess) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Mess, error)
	Update(ctx context.Context, id primitive.ObjectID, c MessChanges) (*entity.Mess, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f ListingFilter) ([]entity.Mess, int64, error)
	ListInBox(ctx context.Context, box Box, status entity.ListingStatus) ([]entity.Mess, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status entity.ListingStatus, reason string) error
	SetAIReview(ctx context.Context, id primitive.ObjectID, r entity.AIReview) error
	AddImages(ctx context.Context, id primitive.ObjectID, urls []string) error
	CountByStatus(ctx context.Context) (map[entity.ListingStatus]int64, error)
}

// ListingIndex is the full-text search side of listings.
type ListingIndex interface {
	Index(ctx context.Context, doc ListingDocument) error
	Remove(ctx context.Context, kind entity.ListingKind, id string) error
	Search(ctx context.Context, kind entity.ListingKind, q string, page Page) ([]string, int64, error)
}

// ListingDocument is what gets indexed for search.
type ListingDocument struct {
	ID          string             `json:"id"`
	Kind        entity.ListingKind `json:"kind"`
	OwnerID     string             `json:"owner_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	City        string             `json:"city"`
	Address     string             `json:"address"`
	Price       int64              `json:"price"`
	Status      string             `json:"status"`
	Amenities   []string           `json:"amenities,omitempty"`
	Location    entity.Location    `json:"location"`
	UpdatedAt   string             `json:"updated_at"`
}
