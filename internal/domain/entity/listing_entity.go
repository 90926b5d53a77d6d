package entity

import "time"

type ListingKind string

const (
	KindProperty ListingKind = "property"
	KindMess     ListingKind = "mess"
)

func (k ListingKind) Valid() bool { return k == KindProperty || k == KindMess }

type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
)

type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

func (l *Location) IsZero() bool { return l == nil || (l.Lat == 0 && l.Lng == 0) }

// AIReview is the stored moderation hint. It never changes Status by itself.
type AIReview struct {
	Verdict    string    `bson:"verdict" json:"verdict"`
	Score      float64   `bson:"score" json:"score"`
	Reasons    []string  `bson:"reasons" json:"reasons"`
	ReviewedAt time.Time `bson:"reviewed_at" json:"reviewed_at"`
}

// ListingRef is the part of a property or mess the booking and moderation
// flows need, regardless of kind.
type ListingRef struct {
	Kind           ListingKind
	ID             string
	OwnerID        string
	Title          string
	Status         ListingStatus
	MonthlyPrice   int64
	Deposit        int64
	RoomsAvailable int
}

// Nearby pairs a listing with its distance from the query point.
type Nearby[T any] struct {
	Listing    T       `json:"listing"`
	DistanceKm float64 `json:"distance_km"`
}
