package mongodb

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repo.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repo.ErrDuplicate
	}
	return err
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// containsRegex builds a case-insensitive "contains" regex with user input escaped.
func containsRegex(q string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
}

// findPage runs a counted, sorted, paginated find and decodes into []T.
func findPage[T any](ctx context.Context, col *mongo.Collection, filter any, sort bson.D, page repo.Page) ([]T, int64, error) {
	page = page.Normalize()
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(sort).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out := make([]T, 0, page.Limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any) (*T, error) {
	var v T
	if err := col.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// countBy groups on field and returns count per value.
func countBy(ctx context.Context, col *mongo.Collection, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$" + field}, {Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID string `bson:"_id"`
		N  int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.N
	}
	return out, nil
}

func setIf[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}

// patchListing $sets the given fields and, when resubmit is true, moves the
// listing from approved to pending with a second write conditioned on the
// stored status. Status is never written from a stale read.
func patchListing[T any](ctx context.Context, col *mongo.Collection, id primitive.ObjectID, set bson.M, resubmit bool) (*T, error) {
	set["updated_at"] = now()
	if err := matchedOrNotFound(col.UpdateByID(ctx, id, bson.M{"$set": set})); err != nil {
		return nil, err
	}
	if resubmit {
		_, err := col.UpdateOne(ctx,
			bson.M{"_id": id, "status": entity.ListingApproved},
			bson.M{"$set": bson.M{"status": entity.ListingPending}},
		)
		if err != nil {
			return nil, err
		}
	}
	return findOne[T](ctx, col, bson.M{"_id": id})
}

// matchedOrNotFound turns an update that matched nothing into ErrNotFound.
func matchedOrNotFound(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
