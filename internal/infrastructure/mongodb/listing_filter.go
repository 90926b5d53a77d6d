package mongodb

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

// listingFields names the per-kind fields a filter maps onto.
type listingFields struct {
	title string
	price string
	kind  entity.ListingKind
}

var (
	propertyFields = listingFields{title: "title", price: "price", kind: entity.KindProperty}
	messFields     = listingFields{title: "name", price: "monthly_price", kind: entity.KindMess}
)

func buildListingFilter(f repo.ListingFilter, fields listingFields) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.OwnerID != nil {
		filter["owner_id"] = *f.OwnerID
	}
	if city := strings.TrimSpace(f.City); city != "" {
		filter["city"] = bson.M{"$regex": "^" + regexp.QuoteMeta(city) + "$", "$options": "i"}
	}
	if fields.kind == entity.KindProperty {
		if f.Type != "" {
			filter["type"] = f.Type
		}
		if f.Gender != "" {
			filter["gender"] = f.Gender
		}
		if len(f.Amenities) > 0 {
			filter["amenities"] = bson.M{"$all": f.Amenities}
		}
	}
	if fields.kind == entity.KindMess && f.MealTypes != "" {
		filter["meal_types"] = f.MealTypes
	}

	price := bson.M{}
	if f.PriceMin > 0 {
		price["$gte"] = f.PriceMin
	}
	if f.PriceMax > 0 {
		price["$lte"] = f.PriceMax
	}
	if len(price) > 0 {
		filter[fields.price] = price
	}

	if q := strings.TrimSpace(f.Q); q != "" {
		filter["$or"] = bson.A{
			bson.M{fields.title: containsRegex(q)},
			bson.M{"description": containsRegex(q)},
		}
	}
	return filter
}

func listingSort(sort string, fields listingFields) bson.D {
	switch sort {
	case repo.SortPriceAsc:
		return bson.D{{Key: fields.price, Value: 1}, {Key: "_id", Value: 1}}
	case repo.SortPriceDesc:
		return bson.D{{Key: fields.price, Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func boxFilter(box repo.Box, status entity.ListingStatus) bson.M {
	return bson.M{
		"status":       status,
		"location.lat": bson.M{"$gte": box.MinLat, "$lte": box.MaxLat},
		"location.lng": bson.M{"$gte": box.MinLng, "$lte": box.MaxLng},
	}
}

func statusCounts(raw map[string]int64) map[entity.ListingStatus]int64 {
	out := map[entity.ListingStatus]int64{
		entity.ListingPending:  0,
		entity.ListingApproved: 0,
		entity.ListingRejected: 0,
	}
	for k, v := range raw {
		out[entity.ListingStatus(k)] = v
	}
	return out
}
