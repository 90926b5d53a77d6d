package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OTPChannel string

const (
	ChannelSMS   OTPChannel = "sms"
	ChannelEmail OTPChannel = "email"
)

type OTPPurpose string

const (
	PurposeVerifyEmail   OTPPurpose = "verify_email"
	PurposeVerifyPhone   OTPPurpose = "verify_phone"
	PurposeLogin         OTPPurpose = "login"
	PurposeResetPassword OTPPurpose = "reset_password"
)

// OTP is a single-use code for one (target, purpose) pair.
type OTP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Target    string             `bson:"target"`
	Channel   OTPChannel         `bson:"channel"`
	Purpose   OTPPurpose         `bson:"purpose"`
	Code      string             `bson:"code"`
	Attempts  int                `bson:"attempts"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (o *OTP) Expired(now time.Time) bool { return !now.Before(o.ExpiresAt) }
