package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(colNotifications)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now()
	_, err := r.col.InsertOne(ctx, n)
	return mapErr(err)
}

func (r *NotificationRepository) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page repo.Page) ([]entity.Notification, int64, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}
	return findPage[entity.Notification](ctx, r.col, filter, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, page)
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}},
	))
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

var _ repo.NotificationRepository = (*NotificationRepository)(nil)

type PushSubscriptionRepository struct {
	col *mongo.Collection
}

func NewPushSubscriptionRepository(db *mongo.Database) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{col: db.Collection(colPushSubs)}
}

func (r *PushSubscriptionRepository) Upsert(ctx context.Context, s *entity.PushSubscription) error {
	update := bson.M{
		"$set": bson.M{
			"user_id":    s.UserID,
			"keys":       s.Keys,
			"user_agent": s.UserAgent,
		},
		"$setOnInsert": bson.M{"created_at": now()},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"endpoint": s.Endpoint}, update, options.Update().SetUpsert(true))
	return mapErr(err)
}

func (r *PushSubscriptionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.PushSubscription, error) {
	return findAll[entity.PushSubscription](ctx, r.col, bson.M{"user_id": userID})
}

func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"endpoint": endpoint})
	return err
}

func (r *PushSubscriptionRepository) DeleteForUser(ctx context.Context, userID primitive.ObjectID, endpoint string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"endpoint": endpoint, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

var _ repo.PushSubscriptionRepository = (*PushSubscriptionRepository)(nil)
