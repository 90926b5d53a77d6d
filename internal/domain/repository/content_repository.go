package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
)

type BlogFilter struct {
	Tag           string
	PublishedOnly bool
	Page          Page
}

type BlogRepository interface {
	Create(ctx context.Context, p *entity.BlogPost) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*entity.BlogPost, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, p *entity.BlogPost) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f BlogFilter) ([]entity.BlogPost, int64, error)
}

type NewsletterRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.Newsletter, error)
	GetByToken(ctx context.Context, token string) (*entity.Newsletter, error)
	Create(ctx context.Context, n *entity.Newsletter) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status entity.SubscriptionStatus) error
	// EachSubscribed calls fn for every subscribed address until fn errors.
	EachSubscribed(ctx context.Context, fn func(n entity.Newsletter) error) error
	CountSubscribed(ctx context.Context) (int64, error)
}
