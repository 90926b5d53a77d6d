package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	PropertyPG     PropertyType = "pg"
	PropertyHostel PropertyType = "hostel"
	PropertyFlat   PropertyType = "flat"
	PropertyRoom   PropertyType = "room"
)

type Property struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID         primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Type            PropertyType       `bson:"type" json:"type"`
	Gender          string             `bson:"gender" json:"gender"`
	Address         string             `bson:"address" json:"address"`
	City            string             `bson:"city" json:"city"`
	State           string             `bson:"state,omitempty" json:"state,omitempty"`
	Pincode         string             `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Location        Location           `bson:"location" json:"location"`
	Price           int64              `bson:"price" json:"price"`
	Deposit         int64              `bson:"deposit" json:"deposit"`
	Amenities       []string           `bson:"amenities" json:"amenities"`
	Images          []string           `bson:"images" json:"images"`
	RoomsAvailable  int                `bson:"rooms_available" json:"rooms_available"`
	Status          ListingStatus      `bson:"status" json:"status"`
	RejectionReason string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	AIReview        *AIReview          `bson:"ai_review,omitempty" json:"ai_review,omitempty"`
	Rating          float64            `bson:"rating" json:"rating"`
	ReviewCount     int                `bson:"review_count" json:"review_count"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

func (p *Property) Ref() ListingRef {
	return ListingRef{
		Kind:           KindProperty,
		ID:             p.ID.Hex(),
		OwnerID:        p.OwnerID.Hex(),
		Title:          p.Title,
		Status:         p.Status,
		MonthlyPrice:   p.Price,
		Deposit:        p.Deposit,
		RoomsAvailable: p.RoomsAvailable,
	}
}
