package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection(colProperties)}
}

func (r *PropertyRepository) Create(ctx context.Context, p *entity.Property) error {
	t := now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = t, t
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	_, err := r.col.InsertOne(ctx, p)
	return mapErr(err)
}

func (r *PropertyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Property, error) {
	return findOne[entity.Property](ctx, r.col, bson.M{"_id": id})
}

// Update writes the patched fields only. Rooms, images, rating and
// moderation fields keep their dedicated setters.
func (r *PropertyRepository) Update(ctx context.Context, id primitive.ObjectID, c repo.PropertyChanges) (*entity.Property, error) {
	return patchListing[entity.Property](ctx, r.col, id, propertySet(c), c.Resubmit)
}

func propertySet(c repo.PropertyChanges) bson.M {
	set := bson.M{}
	setIf(set, "title", c.Title)
	setIf(set, "description", c.Description)
	setIf(set, "type", c.Type)
	setIf(set, "gender", c.Gender)
	setIf(set, "address", c.Address)
	setIf(set, "city", c.City)
	setIf(set, "state", c.State)
	setIf(set, "pincode", c.Pincode)
	setIf(set, "location", c.Location)
	setIf(set, "price", c.Price)
	setIf(set, "deposit", c.Deposit)
	setIf(set, "rooms_available", c.RoomsAvailable)
	if c.Amenities != nil {
		set["amenities"] = c.Amenities
	}
	return set
}

func (r *PropertyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) List(ctx context.Context, f repo.ListingFilter) ([]entity.Property, int64, error) {
	filter := buildListingFilter(f, propertyFields)
	return findPage[entity.Property](ctx, r.col, filter, listingSort(f.Sort, propertyFields), f.Page)
}

func (r *PropertyRepository) ListInBox(ctx context.Context, box repo.Box, status entity.ListingStatus) ([]entity.Property, error) {
	return findAll[entity.Property](ctx, r.col, boxFilter(box, status))
}

func (r *PropertyRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status entity.ListingStatus, reason string) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":           status,
		"rejection_reason": reason,
		"updated_at":       now(),
	}}))
}

func (r *PropertyRepository) SetAIReview(ctx context.Context, id primitive.ObjectID, rev entity.AIReview) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"ai_review": rev}}))
}

func (r *PropertyRepository) AddImages(ctx context.Context, id primitive.ObjectID, urls []string) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"images": bson.M{"$each": urls}},
		"$set":  bson.M{"updated_at": now()},
	}))
}

func (r *PropertyRepository) DecrementRooms(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "rooms_available": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"rooms_available": -1}, "$set": bson.M{"updated_at": now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrConflict
	}
	return nil
}

func (r *PropertyRepository) IncrementRooms(ctx context.Context, id primitive.ObjectID) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"rooms_available": 1},
		"$set": bson.M{"updated_at": now()},
	}))
}

func (r *PropertyRepository) CountByStatus(ctx context.Context) (map[entity.ListingStatus]int64, error) {
	raw, err := countBy(ctx, r.col, "status")
	if err != nil {
		return nil, err
	}
	return statusCounts(raw), nil
}

var _ repo.PropertyRepository = (*PropertyRepository)(nil)
