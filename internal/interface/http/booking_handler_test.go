package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/internal/mocks"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
)

func bookingRouter(ctrl *gomock.Controller, actorID string) (*gin.Engine, *mocks.MockBookingRepository) {
	bookings := mocks.NewMockBookingRepository(ctrl)
	svc := application.NewBookingService(bookings,
		mocks.NewMockPropertyRepository(ctrl),
		mocks.NewMockMessRepository(ctrl),
		mocks.NewMockPaymentRepository(ctrl),
		mocks.NewMockGateway(ctrl),
		nil, nil, nil, testConfig(), helpers.NopLogger())
	h := NewBookingHandler(svc, helpers.NopLogger())

	r := gin.New()
	g := r.Group("/bookings", asActor(actorID, "user"))
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/reject", h.Reject)
	return r, bookings
}

func TestCreateBookingValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	r, _ := bookingRouter(ctrl, primitive.NewObjectID().Hex())

	valid := func() map[string]any {
		return map[string]any{
			"listing_id":      primitive.NewObjectID().Hex(),
			"listing_type":    "property",
			"move_in_date":    "2030-07-01",
			"duration_months": 6,
		}
	}
	cases := map[string]func(map[string]any){
		"bad listing id":   func(b map[string]any) { b["listing_id"] = "abc" },
		"bad listing type": func(b map[string]any) { b["listing_type"] = "hotel" },
		"bad date":         func(b map[string]any) { b["move_in_date"] = "01/07/2030" },
		"too long":         func(b map[string]any) { b["duration_months"] = 36 },
		"missing duration": func(b map[string]any) { delete(b, "duration_months") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			body := valid()
			mutate(body)
			w, _ := perform(t, r, http.MethodPost, "/bookings", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("code = %d body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetBookingForbiddenForStranger(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	r, bookings := bookingRouter(ctrl, primitive.NewObjectID().Hex())

	id := primitive.NewObjectID()
	bookings.EXPECT().GetByID(gomock.Any(), id).Return(&entity.Booking{
		ID:      id,
		UserID:  primitive.NewObjectID(),
		OwnerID: primitive.NewObjectID(),
		Status:  entity.BookingPending,
	}, nil)

	w, _ := perform(t, r, http.MethodGet, "/bookings/"+id.Hex(), nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestGetBookingAsGuest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	guest := primitive.NewObjectID()
	r, bookings := bookingRouter(ctrl, guest.Hex())

	id := primitive.NewObjectID()
	bookings.EXPECT().GetByID(gomock.Any(), id).Return(&entity.Booking{
		ID:      id,
		UserID:  guest,
		OwnerID: primitive.NewObjectID(),
		Status:  entity.BookingPending,
	}, nil)

	w, env := perform(t, r, http.MethodGet, "/bookings/"+id.Hex(), nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestRejectConfirmedBookingConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	owner := primitive.NewObjectID()
	r, bookings := bookingRouter(ctrl, owner.Hex())

	id := primitive.NewObjectID()
	bookings.EXPECT().GetByID(gomock.Any(), id).Return(&entity.Booking{
		ID:      id,
		UserID:  primitive.NewObjectID(),
		OwnerID: owner,
		Status:  entity.BookingConfirmed,
	}, nil)
	bookings.EXPECT().Transition(gomock.Any(), id, gomock.Any(), gomock.Any()).Return(nil, repo.ErrConflict)

	w, env := perform(t, r, http.MethodPost, "/bookings/"+id.Hex()+"/reject", map[string]any{"reason": "too late"})
	if w.Code != http.StatusConflict || env.Success {
		t.Fatalf("code = %d body = %s", w.Code, w.Body.String())
	}
}
