package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/internal/mocks"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
)

type messFixture struct {
	svc      *application.MessService
	repo     *mocks.MockMessRepository
	users    *mocks.MockUserRepository
	bookings *mocks.MockBookingRepository
	index    *mocks.MockListingIndex
	cache    *mocks.MockListCache
	geocoder *mocks.MockGeocoder
	notifier *mocks.MockNotifier
}

func newMessFixture(ctrl *gomock.Controller) messFixture {
	f := messFixture{
		repo:     mocks.NewMockMessRepository(ctrl),
		users:    mocks.NewMockUserRepository(ctrl),
		bookings: mocks.NewMockBookingRepository(ctrl),
		index:    mocks.NewMockListingIndex(ctrl),
		cache:    mocks.NewMockListCache(ctrl),
		geocoder: mocks.NewMockGeocoder(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}
	f.svc = application.NewMessService(f.repo, application.ListingDeps{
		Users:    f.users,
		Bookings: f.bookings,
		Index:    f.index,
		Cache:    f.cache,
		Geocoder: f.geocoder,
		Notifier: f.notifier,
		Cfg:      testConfig(),
		Logger:   helpers.NopLogger(),
	})
	return f
}

func TestCreateMessValidation(t *testing.T) {
	owner := application.Actor{ID: primitive.NewObjectID().Hex(), Role: entity.RoleOwner}
	cases := []struct {
		name string
		in   application.MessInput
	}{
		{"zero price", application.MessInput{Name: "A", MonthlyPrice: 0, MealsPerDay: 2, MealTypes: "veg"}},
		{"unknown meal type", application.MessInput{Name: "A", MonthlyPrice: 3000, MealsPerDay: 2, MealTypes: "vegan"}},
		{"no meals", application.MessInput{Name: "A", MonthlyPrice: 3000, MealsPerDay: 0, MealTypes: "veg"}},
		{"too many meals", application.MessInput{Name: "A", MonthlyPrice: 3000, MealsPerDay: 6, MealTypes: "both"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newMessFixture(ctrl)

			_, err := f.svc.Create(context.Background(), owner, tc.in, application.RequestMeta{})
			if !errors.Is(err, application.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateMessStartsPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newMessFixture(ctrl)

	owner := primitive.NewObjectID()
	loc := entity.Location{Lat: 18.52, Lng: 73.85}

	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m *entity.Mess) error {
		if m.Status != entity.ListingPending || m.OwnerID != owner || m.Name != "Annapurna" || m.Location != loc {
			t.Fatalf("unexpected mess %+v", m)
		}
		m.ID = primitive.NewObjectID()
		return nil
	})
	f.index.EXPECT().Index(gomock.Any(), gomock.Any()).Return(nil)
	f.cache.EXPECT().Invalidate(gomock.Any(), "messes").Return(nil)
	f.users.EXPECT().ListIDsByRole(gomock.Any(), entity.RoleAdmin).Return(nil, nil)

	_, err := f.svc.Create(context.Background(), application.Actor{ID: owner.Hex(), Role: entity.RoleOwner}, application.MessInput{
		Name:         " Annapurna ",
		MonthlyPrice: 3500,
		MealsPerDay:  3,
		MealTypes:    "both",
		Location:     &loc,
	}, application.RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestOwnerMessUpdateResubmitsWithoutTouchingStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newMessFixture(ctrl)

	owner := primitive.NewObjectID()
	m := &entity.Mess{ID: primitive.NewObjectID(), OwnerID: owner, Name: "Annapurna", MealsPerDay: 2, MealTypes: "veg", Status: entity.ListingApproved}
	meals := 3

	f.repo.EXPECT().GetByID(gomock.Any(), m.ID).Return(m, nil)
	f.repo.EXPECT().Update(gomock.Any(), m.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ primitive.ObjectID, c repo.MessChanges) (*entity.Mess, error) {
			if !c.Resubmit || c.MealsPerDay == nil || *c.MealsPerDay != 3 {
				t.Fatalf("unexpected changes %+v", c)
			}
			if c.Name != nil || c.MealTypes != nil || c.Location != nil {
				t.Fatalf("unpatched fields sent: %+v", c)
			}
			stored := *m
			stored.MealsPerDay, stored.Status = 3, entity.ListingPending
			return &stored, nil
		})
	f.index.EXPECT().Index(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, doc repo.ListingDocument) error {
		if doc.Status != string(entity.ListingPending) {
			t.Fatalf("indexed status %s", doc.Status)
		}
		return nil
	})
	f.cache.EXPECT().Invalidate(gomock.Any(), "messes").Return(nil)

	got, err := f.svc.Update(context.Background(), application.Actor{ID: owner.Hex(), Role: entity.RoleOwner}, m.ID.Hex(),
		application.MessPatch{MealsPerDay: &meals}, application.RequestMeta{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != entity.ListingPending || got.MealsPerDay != 3 {
		t.Fatalf("status %s meals %d", got.Status, got.MealsPerDay)
	}
}

func TestMessUpdateValidation(t *testing.T) {
	owner := primitive.NewObjectID()
	six, vegan, neg := 6, "vegan", int64(-1)
	cases := []struct {
		name  string
		patch application.MessPatch
	}{
		{"meals out of range", application.MessPatch{MealsPerDay: &six}},
		{"unknown meal type", application.MessPatch{MealTypes: &vegan}},
		{"negative price", application.MessPatch{MonthlyPrice: &neg}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newMessFixture(ctrl)
			m := &entity.Mess{ID: primitive.NewObjectID(), OwnerID: owner, Status: entity.ListingApproved}
			f.repo.EXPECT().GetByID(gomock.Any(), m.ID).Return(m, nil)

			_, err := f.svc.Update(context.Background(), application.Actor{ID: owner.Hex(), Role: entity.RoleOwner}, m.ID.Hex(),
				tc.patch, application.RequestMeta{})
			if !errors.Is(err, application.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestMessUpdateByStrangerForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newMessFixture(ctrl)

	m := &entity.Mess{ID: primitive.NewObjectID(), OwnerID: primitive.NewObjectID()}
	f.repo.EXPECT().GetByID(gomock.Any(), m.ID).Return(m, nil)

	name := "Mine now"
	_, err := f.svc.Update(context.Background(), application.Actor{ID: primitive.NewObjectID().Hex(), Role: entity.RoleOwner}, m.ID.Hex(),
		application.MessPatch{Name: &name}, application.RequestMeta{})
	if !errors.Is(err, application.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestDeleteMessWithActiveBookings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newMessFixture(ctrl)

	owner := primitive.NewObjectID()
	m := &entity.Mess{ID: primitive.NewObjectID(), OwnerID: owner}
	f.repo.EXPECT().GetByID(gomock.Any(), m.ID).Return(m, nil)
	f.bookings.EXPECT().CountActiveForListing(gomock.Any(), m.ID).Return(int64(1), nil)

	err := f.svc.Delete(context.Background(), application.Actor{ID: owner.Hex(), Role: entity.RoleOwner}, m.ID.Hex(), application.RequestMeta{})
	if !errors.Is(err, application.ErrActiveBookings) {
		t.Fatalf("err = %v, want ErrActiveBookings", err)
	}
}

func TestDeleteMessRemovesFromIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newMessFixture(ctrl)

	owner := primitive.NewObjectID()
	m := &entity.Mess{ID: primitive.NewObjectID(), OwnerID: owner}
	f.repo.EXPECT().GetByID(gomock.Any(), m.ID).Return(m, nil)
	f.bookings.EXPECT().CountActiveForListing(gomock.Any(), m.ID).Return(int64(0), nil)
	f.repo.EXPECT().Delete(gomock.Any(), m.ID).Return(nil)
	f.index.EXPECT().Remove(gomock.Any(), entity.KindMess, m.ID.Hex()).Return(nil)
	f.cache.EXPECT().Invalidate(gomock.Any(), "messes").Return(nil)

	if err := f.svc.Delete(context.Background(), application.Actor{ID: owner.Hex(), Role: entity.RoleOwner}, m.ID.Hex(), application.RequestMeta{}); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestModerateMess(t *testing.T) {
	admin := application.Actor{ID: primitive.NewObjectID().Hex(), Role: entity.RoleAdmin}
	cases := []struct {
		name       string
		mod        application.Moderation
		wantStatus entity.ListingStatus
		wantType   entity.NotificationType
	}{
		{"approve", application.Moderation{Approve: true}, entity.ListingApproved, entity.NotifyListingApproved},
		{"reject", application.Moderation{Reason: " blurry photos "}, entity.ListingRejected, entity.NotifyListingRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newMessFixture(ctrl)

			owner := primitive.NewObjectID()
			m := &entity.Mess{ID: primitive.NewObjectID(), OwnerID: owner, Name: "Annapurna", Status: entity.ListingPending}
			wantReason := ""
			if !tc.mod.Approve {
				wantReason = "blurry photos"
			}

			f.repo.EXPECT().GetByID(gomock.Any(), m.ID).Return(m, nil)
			f.repo.EXPECT().SetStatus(gomock.Any(), m.ID, tc.wantStatus, wantReason).Return(nil)
			f.index.EXPECT().Index(gomock.Any(), gomock.Any()).Return(nil)
			f.cache.EXPECT().Invalidate(gomock.Any(), "messes").Return(nil)
			f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in application.NotifyInput) error {
				if in.UserID != owner || in.Type != tc.wantType || !in.Email {
					t.Fatalf("unexpected notification %+v", in)
				}
				return nil
			})

			got, err := f.svc.Moderate(context.Background(), admin, m.ID.Hex(), tc.mod, application.RequestMeta{})
			if err != nil {
				t.Fatalf("moderate: %v", err)
			}
			if got.Status != tc.wantStatus || got.RejectionReason != wantReason {
				t.Fatalf("status %s reason %q", got.Status, got.RejectionReason)
			}
		})
	}
}

func TestModerateMessRejectRequiresReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newMessFixture(ctrl)

	m := &entity.Mess{ID: primitive.NewObjectID(), OwnerID: primitive.NewObjectID(), Status: entity.ListingPending}
	f.repo.EXPECT().GetByID(gomock.Any(), m.ID).Return(m, nil)

	_, err := f.svc.Moderate(context.Background(), application.Actor{ID: "admin", Role: entity.RoleAdmin}, m.ID.Hex(),
		application.Moderation{Reason: ""}, application.RequestMeta{})
	if !errors.Is(err, application.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
