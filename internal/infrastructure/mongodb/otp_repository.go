package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

// OTPRepository keeps one document per (target, purpose); a TTL index on
// expires_at removes codes nobody verified.
type OTPRepository struct {
	col *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *OTPRepository {
	return &OTPRepository{col: db.Collection(colOTPs)}
}

func (r *OTPRepository) Replace(ctx context.Context, o *entity.OTP) error {
	o.ID = primitive.NewObjectID()
	o.CreatedAt = now()
	if _, err := r.col.DeleteMany(ctx, bson.M{"target": o.Target, "purpose": o.Purpose}); err != nil {
		return err
	}
	_, err := r.col.InsertOne(ctx, o)
	return mapErr(err)
}

func (r *OTPRepository) Reserve(ctx context.Context, target string, purpose entity.OTPPurpose, maxAttempts int, at time.Time) (*entity.OTP, error) {
	var o entity.OTP
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{
			"target":     target,
			"purpose":    purpose,
			"attempts":   bson.M{"$lt": maxAttempts},
			"expires_at": bson.M{"$gt": at},
		},
		bson.M{"$inc": bson.M{"attempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

func (r *OTPRepository) Consume(ctx context.Context, id primitive.ObjectID, code string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "code": code})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OTPRepository) Purge(ctx context.Context, target string, purpose entity.OTPPurpose, maxAttempts int, at time.Time) error {
	_, err := r.col.DeleteMany(ctx, bson.M{
		"target":  target,
		"purpose": purpose,
		"$or": bson.A{
			bson.M{"attempts": bson.M{"$gte": maxAttempts}},
			bson.M{"expires_at": bson.M{"$lte": at}},
		},
	})
	return err
}

func (r *OTPRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

var _ repo.OTPRepository = (*OTPRepository)(nil)
