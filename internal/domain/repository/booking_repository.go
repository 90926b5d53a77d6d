package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
)

type BookingFilter struct {
	UserID  *primitive.ObjectID
	OwnerID *primitive.ObjectID
	Status  entity.BookingStatus
	Page    Page
}

// BookingChange is applied by Transition together with the status change.
type BookingChange struct {
	Status          entity.BookingStatus
	PaymentStatus   entity.PaymentStatus
	PaymentID       string
	RejectionReason string
}

type BookingRepository interface {
	Create(ctx context.Context, b *entity.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error)
	SetOrderID(ctx context.Context, id primitive.ObjectID, orderID string) error
	// Transition applies ch only when the booking is in one of from, else ErrConflict.
	Transition(ctx context.Context, id primitive.ObjectID, from []entity.BookingStatus, ch BookingChange) (*entity.Booking, error)
	// SetPaymentStatus updates payment fields only when PaymentStatus is one of from.
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, from []entity.PaymentStatus, to entity.PaymentStatus, paymentID string) (*entity.Booking, error)
	List(ctx context.Context, f BookingFilter) ([]entity.Booking, int64, error)
	CountActiveForListing(ctx context.Context, listingID primitive.ObjectID) (int64, error)
	CountByStatus(ctx context.Context) (map[entity.BookingStatus]int64, error)
}
