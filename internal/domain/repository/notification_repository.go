package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page Page) ([]entity.Notification, int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

type PushSubscriptionRepository interface {
	// Upsert keys the subscription by endpoint, moving it to userID if needed.
	Upsert(ctx context.Context, s *entity.PushSubscription) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
	DeleteForUser(ctx context.Context, userID primitive.ObjectID, endpoint string) error
}
