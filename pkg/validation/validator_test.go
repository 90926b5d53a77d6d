package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
)

type signup struct {
	Name     string   `json:"name" validate:"required,min=2"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,pwd"`
	Phone    string   `json:"phone" validate:"omitempty,phone"`
	Role     string   `json:"role" validate:"omitempty,oneof=user owner"`
	Listing  string   `json:"listing_id" validate:"omitempty,objectid"`
	MoveIn   string   `json:"move_in_date" validate:"omitempty,date"`
	Months   int      `json:"duration_months" validate:"omitempty,min=1,max=24"`
	Tags     []string `json:"tags" validate:"max=2"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetailsFieldMessages(t *testing.T) {
	v := newValidator()
	err := v.Struct(signup{
		Name:     "A",
		Email:    "nope",
		Password: "short",
		Phone:    "12345",
		Role:     "admin",
		Listing:  "xyz",
		MoveIn:   "01/02/2025",
		Months:   30,
		Tags:     []string{"a", "b", "c"},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	got := ToDetails(err)
	want := map[string]string{
		"name":            "must be at least 2 characters long",
		"email":           "must be a valid email",
		"password":        "must be between 8 and 72 characters",
		"phone":           "must be a valid phone number",
		"role":            "must be one of: user, owner",
		"listing_id":      "must be a valid id",
		"move_in_date":    "must be a date in YYYY-MM-DD format",
		"duration_months": "must be at most 24",
		"tags":            "must contain at most 2 items",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s: got %q, want %q", field, got[field], msg)
		}
	}
}

func TestToDetailsValid(t *testing.T) {
	v := newValidator()
	err := v.Struct(signup{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "longenough",
		Phone:    "+919876543210",
		Role:     "owner",
		Listing:  "64b7f0c2a1b2c3d4e5f60718",
		MoveIn:   "2025-07-01",
		Months:   6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ToDetails(nil) != nil {
		t.Fatal("nil error should give nil details")
	}
}

func TestToDetailsJSONErrors(t *testing.T) {
	var dst struct {
		Months int `json:"duration_months"`
	}
	err := json.Unmarshal([]byte(`{"duration_months":"six"}`), &dst)
	got := ToDetails(err)
	if got["duration_months"] != "must be of type int" {
		t.Fatalf("got %v", got)
	}

	err = json.Unmarshal([]byte(`{bad`), &dst)
	if ToDetails(err)["payload"] != "invalid json" {
		t.Fatalf("got %v", ToDetails(err))
	}
}
