package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type Booking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	ListingID       primitive.ObjectID `bson:"listing_id" json:"listing_id"`
	ListingType     ListingKind        `bson:"listing_type" json:"listing_type"`
	ListingTitle    string             `bson:"listing_title" json:"listing_title"`
	OwnerID         primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	MoveInDate      time.Time          `bson:"move_in_date" json:"move_in_date"`
	DurationMonths  int                `bson:"duration_months" json:"duration_months"`
	Amount          int64              `bson:"amount" json:"amount"`
	Currency        string             `bson:"currency" json:"currency"`
	Status          BookingStatus      `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus      `bson:"payment_status" json:"payment_status"`
	PaymentOrderID  string             `bson:"payment_order_id,omitempty" json:"payment_order_id,omitempty"`
	PaymentID       string             `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	RejectionReason string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// Active bookings block listing deletion.
func (b *Booking) Active() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
