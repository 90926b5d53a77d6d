package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

type BlogRepository struct {
	col *mongo.Collection
}

func NewBlogRepository(db *mongo.Database) *BlogRepository {
	return &BlogRepository{col: db.Collection(colBlogPosts)}
}

func (r *BlogRepository) Create(ctx context.Context, p *entity.BlogPost) error {
	t := now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = t, t
	if p.Tags == nil {
		p.Tags = []string{}
	}
	_, err := r.col.InsertOne(ctx, p)
	return mapErr(err)
}

func (r *BlogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.BlogPost, error) {
	return findOne[entity.BlogPost](ctx, r.col, bson.M{"_id": id})
}

func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*entity.BlogPost, error) {
	return findOne[entity.BlogPost](ctx, r.col, bson.M{"slug": slug})
}

func (r *BlogRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"slug": slug})
	return n > 0, err
}

func (r *BlogRepository) Update(ctx context.Context, p *entity.BlogPost) error {
	p.UpdatedAt = now()
	set := bson.M{
		"title":        p.Title,
		"slug":         p.Slug,
		"excerpt":      p.Excerpt,
		"content":      p.Content,
		"cover_image":  p.CoverImage,
		"tags":         p.Tags,
		"published":    p.Published,
		"published_at": p.PublishedAt,
		"updated_at":   p.UpdatedAt,
	}
	return matchedOrNotFound(r.col.UpdateByID(ctx, p.ID, bson.M{"$set": set}))
}

func (r *BlogRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *BlogRepository) List(ctx context.Context, f repo.BlogFilter) ([]entity.BlogPost, int64, error) {
	filter := bson.M{}
	if f.PublishedOnly {
		filter["published"] = true
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	sort := bson.D{{Key: "published_at", Value: -1}, {Key: "created_at", Value: -1}}
	return findPage[entity.BlogPost](ctx, r.col, filter, sort, f.Page)
}

var _ repo.BlogRepository = (*BlogRepository)(nil)

type NewsletterRepository struct {
	col *mongo.Collection
}

func NewNewsletterRepository(db *mongo.Database) *NewsletterRepository {
	return &NewsletterRepository{col: db.Collection(colNewsletter)}
}

func (r *NewsletterRepository) GetByEmail(ctx context.Context, email string) (*entity.Newsletter, error) {
	return findOne[entity.Newsletter](ctx, r.col, bson.M{"email": email})
}

func (r *NewsletterRepository) GetByToken(ctx context.Context, token string) (*entity.Newsletter, error) {
	return findOne[entity.Newsletter](ctx, r.col, bson.M{"token": token})
}

func (r *NewsletterRepository) Create(ctx context.Context, n *entity.Newsletter) error {
	t := now()
	n.ID = primitive.NewObjectID()
	n.CreatedAt, n.UpdatedAt = t, t
	_, err := r.col.InsertOne(ctx, n)
	return mapErr(err)
}

func (r *NewsletterRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status entity.SubscriptionStatus) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status, "updated_at": now()}}))
}

func (r *NewsletterRepository) EachSubscribed(ctx context.Context, fn func(n entity.Newsletter) error) error {
	cur, err := r.col.Find(ctx, bson.M{"status": entity.Subscribed})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var n entity.Newsletter
		if err := cur.Decode(&n); err != nil {
			return err
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	return cur.Err()
}

func (r *NewsletterRepository) CountSubscribed(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"status": entity.Subscribed})
}

var _ repo.NewsletterRepository = (*NewsletterRepository)(nil)
