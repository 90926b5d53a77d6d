package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
)

type UserFilter struct {
	Role entity.Role
	Q    string // matches name or email
	Page Page
}

type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByPhone(ctx context.Context, phone string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error
	SetRole(ctx context.Context, id primitive.ObjectID, role entity.Role) error
	List(ctx context.Context, f UserFilter) ([]entity.User, int64, error)
	ListIDsByRole(ctx context.Context, role entity.Role) ([]primitive.ObjectID, error)
	Count(ctx context.Context) (int64, error)
}

type OTPRepository interface {
	// Replace stores o as the only code for its (target, purpose).
	Replace(ctx context.Context, o *entity.OTP) error
	// Reserve counts one attempt against the live code for (target, purpose)
	// and returns it. Expired or exhausted codes yield ErrNotFound.
	Reserve(ctx context.Context, target string, purpose entity.OTPPurpose, maxAttempts int, now time.Time) (*entity.OTP, error)
	// Consume deletes the record only when code matches, so a code is
	// accepted once. ErrNotFound otherwise.
	Consume(ctx context.Context, id primitive.ObjectID, code string) error
	// Purge drops expired or exhausted codes for (target, purpose).
	Purge(ctx context.Context, target string, purpose entity.OTPPurpose, maxAttempts int, now time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
