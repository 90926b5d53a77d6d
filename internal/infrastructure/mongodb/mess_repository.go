package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

type MessRepository struct {
	col *mongo.Collection
}

func NewMessRepository(db *mongo.Database) *MessRepository {
	return &MessRepository{col: db.Collection(colMesses)}
}

func (r *MessRepository) Create(ctx context.Context, m *entity.Mess) error {
	t := now()
	m.ID = primitive.NewObjectID()
	m.CreatedAt, m.UpdatedAt = t, t
	if m.Images == nil {
		m.Images = []string{}
	}
	if m.Menu == nil {
		m.Menu = []entity.MenuDay{}
	}
	_, err := r.col.InsertOne(ctx, m)
	return mapErr(err)
}

func (r *MessRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Mess, error) {
	return findOne[entity.Mess](ctx, r.col, bson.M{"_id": id})
}

func (r *MessRepository) Update(ctx context.Context, id primitive.ObjectID, c repo.MessChanges) (*entity.Mess, error) {
	return patchListing[entity.Mess](ctx, r.col, id, messSet(c), c.Resubmit)
}

func messSet(c repo.MessChanges) bson.M {
	set := bson.M{}
	setIf(set, "name", c.Name)
	setIf(set, "description", c.Description)
	setIf(set, "address", c.Address)
	setIf(set, "city", c.City)
	setIf(set, "location", c.Location)
	setIf(set, "monthly_price", c.MonthlyPrice)
	setIf(set, "meals_per_day", c.MealsPerDay)
	setIf(set, "meal_types", c.MealTypes)
	if c.Menu != nil {
		set["menu"] = c.Menu
	}
	return set
}

func (r *MessRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MessRepository) List(ctx context.Context, f repo.ListingFilter) ([]entity.Mess, int64, error) {
	filter := buildListingFilter(f, messFields)
	return findPage[entity.Mess](ctx, r.col, filter, listingSort(f.Sort, messFields), f.Page)
}

func (r *MessRepository) ListInBox(ctx context.Context, box repo.Box, status entity.ListingStatus) ([]entity.Mess, error) {
	return findAll[entity.Mess](ctx, r.col, boxFilter(box, status))
}

func (r *MessRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status entity.ListingStatus, reason string) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":           status,
		"rejection_reason": reason,
		"updated_at":       now(),
	}}))
}

func (r *MessRepository) SetAIReview(ctx context.Context, id primitive.ObjectID, rev entity.AIReview) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"ai_review": rev}}))
}

func (r *MessRepository) AddImages(ctx context.Context, id primitive.ObjectID, urls []string) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"images": bson.M{"$each": urls}},
		"$set":  bson.M{"updated_at": now()},
	}))
}

func (r *MessRepository) CountByStatus(ctx context.Context) (map[entity.ListingStatus]int64, error) {
	raw, err := countBy(ctx, r.col, "status")
	if err != nil {
		return nil, err
	}
	return statusCounts(raw), nil
}

var _ repo.MessRepository = (*MessRepository)(nil)
