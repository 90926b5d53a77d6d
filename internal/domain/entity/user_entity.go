package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// User is the account aggregate. PasswordHash is a bcrypt hash and is never serialized.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash  string             `bson:"password_hash" json:"-"`
	Role          Role               `bson:"role" json:"role"`
	AvatarURL     string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	EmailVerified bool               `bson:"email_verified" json:"email_verified"`
	PhoneVerified bool               `bson:"phone_verified" json:"phone_verified"`
	IsBanned      bool               `bson:"is_banned" json:"is_banned"`
	LastLoginAt   *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
