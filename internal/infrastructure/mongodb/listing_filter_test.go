package mongodb

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

func TestBuildListingFilterProperty(t *testing.T) {
	f := repo.ListingFilter{
		Status:    entity.ListingApproved,
		City:      "Pune",
		Type:      "pg",
		Gender:    "girls",
		MealTypes: "veg", // ignored for properties
		PriceMin:  3000,
		PriceMax:  9000,
		Amenities: []string{"wifi", "ac"},
		Q:         "near (college)",
	}
	got := buildListingFilter(f, propertyFields)

	want := bson.M{
		"status":    entity.ListingApproved,
		"city":      bson.M{"$regex": "^Pune$", "$options": "i"},
		"type":      "pg",
		"gender":    "girls",
		"amenities": bson.M{"$all": []string{"wifi", "ac"}},
		"price":     bson.M{"$gte": int64(3000), "$lte": int64(9000)},
		"$or": bson.A{
			bson.M{"title": bson.M{"$regex": `near \(college\)`, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": `near \(college\)`, "$options": "i"}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filter mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestBuildListingFilterMess(t *testing.T) {
	owner := primitive.NewObjectID()
	f := repo.ListingFilter{OwnerID: &owner, MealTypes: "both", Gender: "boys", PriceMax: 4000}
	got := buildListingFilter(f, messFields)

	want := bson.M{
		"owner_id":      owner,
		"meal_types":    "both",
		"monthly_price": bson.M{"$lte": int64(4000)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filter mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestListingSort(t *testing.T) {
	cases := map[string]bson.D{
		repo.SortPriceAsc:  {{Key: "monthly_price", Value: 1}, {Key: "_id", Value: 1}},
		repo.SortPriceDesc: {{Key: "monthly_price", Value: -1}, {Key: "_id", Value: 1}},
		"":                 {{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	}
	for in, want := range cases {
		if got := listingSort(in, messFields); !reflect.DeepEqual(got, want) {
			t.Errorf("sort %q: got %v, want %v", in, got, want)
		}
	}
}

func TestStatusCountsFillsMissing(t *testing.T) {
	got := statusCounts(map[string]int64{"approved": 4})
	if got[entity.ListingApproved] != 4 || got[entity.ListingPending] != 0 || len(got) != 3 {
		t.Fatalf("got %v", got)
	}
}
