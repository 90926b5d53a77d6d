package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(colBookings)}
}

func (r *BookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	t := now()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt, b.UpdatedAt = t, t
	_, err := r.col.InsertOne(ctx, b)
	return mapErr(err)
}

func (r *BookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	return findOne[entity.Booking](ctx, r.col, bson.M{"_id": id})
}

func (r *BookingRepository) SetOrderID(ctx context.Context, id primitive.ObjectID, orderID string) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"payment_order_id": orderID,
		"updated_at":       now(),
	}}))
}

// findAndSet applies set when filter matches; ErrConflict when the document
// exists but the filter's preconditions did not hold.
func (r *BookingRepository) findAndSet(ctx context.Context, id primitive.ObjectID, filter, set bson.M) (*entity.Booking, error) {
	set["updated_at"] = now()
	var b entity.Booking
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if _, gErr := r.GetByID(ctx, id); gErr != nil {
		return nil, gErr
	}
	return nil, repo.ErrConflict
}

func (r *BookingRepository) Transition(ctx context.Context, id primitive.ObjectID, from []entity.BookingStatus, ch repo.BookingChange) (*entity.Booking, error) {
	set := bson.M{"status": ch.Status}
	if ch.PaymentStatus != "" {
		set["payment_status"] = ch.PaymentStatus
	}
	if ch.PaymentID != "" {
		set["payment_id"] = ch.PaymentID
	}
	if ch.RejectionReason != "" {
		set["rejection_reason"] = ch.RejectionReason
	}
	filter := bson.M{"_id": id, "status": bson.M{"$in": from}}
	return r.findAndSet(ctx, id, filter, set)
}

func (r *BookingRepository) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, from []entity.PaymentStatus, to entity.PaymentStatus, paymentID string) (*entity.Booking, error) {
	set := bson.M{"payment_status": to}
	if paymentID != "" {
		set["payment_id"] = paymentID
	}
	filter := bson.M{"_id": id, "payment_status": bson.M{"$in": from}}
	return r.findAndSet(ctx, id, filter, set)
}

func (r *BookingRepository) List(ctx context.Context, f repo.BookingFilter) ([]entity.Booking, int64, error) {
	filter := bson.M{}
	if f.UserID != nil {
		filter["user_id"] = *f.UserID
	}
	if f.OwnerID != nil {
		filter["owner_id"] = *f.OwnerID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return findPage[entity.Booking](ctx, r.col, filter, bson.D{{Key: "created_at", Value: -1}}, f.Page)
}

func (r *BookingRepository) CountActiveForListing(ctx context.Context, listingID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"listing_id": listingID,
		"status":     bson.M{"$in": bson.A{entity.BookingPending, entity.BookingConfirmed}},
	})
}

func (r *BookingRepository) CountByStatus(ctx context.Context) (map[entity.BookingStatus]int64, error) {
	raw, err := countBy(ctx, r.col, "status")
	if err != nil {
		return nil, err
	}
	out := make(map[entity.BookingStatus]int64, len(raw))
	for k, v := range raw {
		out[entity.BookingStatus(k)] = v
	}
	return out, nil
}

var _ repo.BookingRepository = (*BookingRepository)(nil)
