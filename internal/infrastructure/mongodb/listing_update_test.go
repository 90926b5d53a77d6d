package mongodb

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

func TestPropertySetWritesOnlyPatchedFields(t *testing.T) {
	title, price := "Sunny PG", int64(6500)
	got := propertySet(repo.PropertyChanges{Title: &title, Price: &price, Resubmit: true})

	want := bson.M{"title": "Sunny PG", "price": int64(6500)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("set = %#v, want %#v", got, want)
	}
	for _, k := range []string{"rooms_available", "status", "rejection_reason", "images"} {
		if _, ok := got[k]; ok {
			t.Fatalf("%s must not be written by an edit", k)
		}
	}
}

func TestPropertySetRoomsOnlyWhenPatched(t *testing.T) {
	zero := 0
	got := propertySet(repo.PropertyChanges{RoomsAvailable: &zero})
	if v, ok := got["rooms_available"]; !ok || v != 0 {
		t.Fatalf("rooms_available = %v (%v), want explicit 0", v, ok)
	}

	if got := propertySet(repo.PropertyChanges{}); len(got) != 0 {
		t.Fatalf("empty patch wrote %v", got)
	}
}

func TestPropertySetClearsAmenitiesWithEmptySlice(t *testing.T) {
	got := propertySet(repo.PropertyChanges{Amenities: []string{}})
	if v, ok := got["amenities"]; !ok || len(v.([]string)) != 0 {
		t.Fatalf("amenities = %v", got)
	}
}

func TestMessSetWritesOnlyPatchedFields(t *testing.T) {
	meals, loc := 3, entity.Location{Lat: 18.52, Lng: 73.85}
	got := messSet(repo.MessChanges{MealsPerDay: &meals, Location: &loc})

	want := bson.M{"meals_per_day": 3, "location": loc}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("set = %#v, want %#v", got, want)
	}
	if _, ok := got["status"]; ok {
		t.Fatal("status must not be written by an edit")
	}
}
