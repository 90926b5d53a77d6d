package mongodb

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(colUsers)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	t := now()
	u.ID = primitive.NewObjectID()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt, u.UpdatedAt = t, t
	_, err := r.col.InsertOne(ctx, u)
	return mapErr(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	return findOne[entity.User](ctx, r.col, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return findOne[entity.User](ctx, r.col, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*entity.User, error) {
	return findOne[entity.User](ctx, r.col, bson.M{"phone": phone})
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = now()
	set := bson.M{
		"name":           u.Name,
		"phone":          u.Phone,
		"password_hash":  u.PasswordHash,
		"avatar_url":     u.AvatarURL,
		"email_verified": u.EmailVerified,
		"phone_verified": u.PhoneVerified,
		"last_login_at":  u.LastLoginAt,
		"updated_at":     u.UpdatedAt,
	}
	return matchedOrNotFound(r.col.UpdateByID(ctx, u.ID, bson.M{"$set": set}))
}

func (r *UserRepository) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_banned": banned, "updated_at": now()}}))
}

func (r *UserRepository) SetRole(ctx context.Context, id primitive.ObjectID, role entity.Role) error {
	return matchedOrNotFound(r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"role": role, "updated_at": now()}}))
}

func (r *UserRepository) List(ctx context.Context, f repo.UserFilter) ([]entity.User, int64, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if q := strings.TrimSpace(f.Q); q != "" {
		filter["$or"] = bson.A{
			bson.M{"name": containsRegex(q)},
			bson.M{"email": containsRegex(q)},
		}
	}
	return findPage[entity.User](ctx, r.col, filter, bson.D{{Key: "created_at", Value: -1}}, f.Page)
}

func (r *UserRepository) ListIDsByRole(ctx context.Context, role entity.Role) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	rows, err := findAll[struct {
		ID primitive.ObjectID `bson:"_id"`
	}](ctx, r.col, bson.M{"role": role, "is_banned": false}, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

var _ repo.UserRepository = (*UserRepository)(nil)
