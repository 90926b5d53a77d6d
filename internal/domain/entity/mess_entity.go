package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MenuDay struct {
	Day       string `bson:"day" json:"day"`
	Breakfast string `bson:"breakfast,omitempty" json:"breakfast,omitempty"`
	Lunch     string `bson:"lunch,omitempty" json:"lunch,omitempty"`
	Dinner    string `bson:"dinner,omitempty" json:"dinner,omitempty"`
}

// Mess is a meal-service listing.
type Mess struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID         primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	Address         string             `bson:"address" json:"address"`
	City            string             `bson:"city" json:"city"`
	Location        Location           `bson:"location" json:"location"`
	MonthlyPrice    int64              `bson:"monthly_price" json:"monthly_price"`
	MealsPerDay     int                `bson:"meals_per_day" json:"meals_per_day"`
	MealTypes       string             `bson:"meal_types" json:"meal_types"` // veg | nonveg | both
	Menu            []MenuDay          `bson:"menu" json:"menu"`
	Images          []string           `bson:"images" json:"images"`
	Status          ListingStatus      `bson:"status" json:"status"`
	RejectionReason string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	AIReview        *AIReview          `bson:"ai_review,omitempty" json:"ai_review,omitempty"`
	Rating          float64            `bson:"rating" json:"rating"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

func (m *Mess) Ref() ListingRef {
	return ListingRef{
		Kind:         KindMess,
		ID:           m.ID.Hex(),
		OwnerID:      m.OwnerID.Hex(),
		Title:        m.Name,
		Status:       m.Status,
		MonthlyPrice: m.MonthlyPrice,
	}
}
