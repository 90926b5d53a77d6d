package application

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrBanned             = errors.New("account is banned")
	ErrAlreadyVerified    = errors.New("already verified")
	ErrInvalidOTP         = errors.New("invalid or expired code")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrListingNotBookable = errors.New("listing is not available for booking")
	ErrOwnListing         = errors.New("cannot book your own listing")
	ErrInvalidAmount      = errors.New("booking amount must be positive")
	ErrNoRoomsLeft        = errors.New("no rooms available")
	ErrActiveBookings     = errors.New("listing has active bookings")
	ErrTooManyImages      = errors.New("too many images")
	ErrInvalidSignature   = errors.New("payment signature mismatch")
	ErrPaymentUnavailable = errors.New("payment gateway unavailable")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// parseID turns a hex id from a path or token into an ObjectID. Malformed
// ids are reported as not found.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}
