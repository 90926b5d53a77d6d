package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/internal/mocks"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/payment"
)

type bookingFixture struct {
	svc      *application.BookingService
	bookings *mocks.MockBookingRepository
	props    *mocks.MockPropertyRepository
	messes   *mocks.MockMessRepository
	ledger   *mocks.MockPaymentRepository
	gateway  *mocks.MockGateway
	notifier *mocks.MockNotifier
	cache    *mocks.MockListCache
}

func newBookingFixture(ctrl *gomock.Controller) bookingFixture {
	f := bookingFixture{
		bookings: mocks.NewMockBookingRepository(ctrl),
		props:    mocks.NewMockPropertyRepository(ctrl),
		messes:   mocks.NewMockMessRepository(ctrl),
		ledger:   mocks.NewMockPaymentRepository(ctrl),
		gateway:  mocks.NewMockGateway(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
		cache:    mocks.NewMockListCache(ctrl),
	}
	f.svc = application.NewBookingService(f.bookings, f.props, f.messes, f.ledger, f.gateway, f.notifier, f.cache, nil, testConfig(), helpers.NopLogger())
	f.svc.Now = func() time.Time { return fixedNow }
	return f
}

func approvedProperty(owner primitive.ObjectID) *entity.Property {
	return &entity.Property{
		ID:             primitive.NewObjectID(),
		OwnerID:        owner,
		Title:          "Sunrise PG",
		Price:          8000,
		Deposit:        5000,
		RoomsAvailable: 2,
		Status:         entity.ListingApproved,
	}
}

func TestAmount(t *testing.T) {
	prop := entity.ListingRef{Kind: entity.KindProperty, MonthlyPrice: 8000, Deposit: 5000}
	if got := application.Amount(prop, 3); got != 29000 {
		t.Fatalf("property amount = %d, want 29000", got)
	}
	mess := entity.ListingRef{Kind: entity.KindMess, MonthlyPrice: 3000, Deposit: 999}
	if got := application.Amount(mess, 2); got != 6000 {
		t.Fatalf("mess amount = %d, want 6000", got)
	}
}

func TestCreateBookingRejections(t *testing.T) {
	guest := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	moveIn := fixedNow.Add(72 * time.Hour)

	cases := []struct {
		name  string
		prop  func() *entity.Property
		actor primitive.ObjectID
		in    func(id string) application.BookingInput
		want  error
	}{
		{
			name:  "past move in date",
			actor: guest,
			in: func(id string) application.BookingInput {
				return application.BookingInput{ListingID: id, ListingType: entity.KindProperty, MoveInDate: fixedNow.Add(-48 * time.Hour), DurationMonths: 1}
			},
			want: application.ErrInvalidInput,
		},
		{
			name:  "duration out of range",
			actor: guest,
			in: func(id string) application.BookingInput {
				return application.BookingInput{ListingID: id, ListingType: entity.KindProperty, MoveInDate: moveIn, DurationMonths: 25}
			},
			want: application.ErrInvalidInput,
		},
		{
			name: "listing not approved",
			prop: func() *entity.Property {
				p := approvedProperty(owner)
				p.Status = entity.ListingPending
				return p
			},
			actor: guest,
			in: func(id string) application.BookingInput {
				return application.BookingInput{ListingID: id, ListingType: entity.KindProperty, MoveInDate: moveIn, DurationMonths: 1}
			},
			want: application.ErrListingNotBookable,
		},
		{
			name: "no rooms left",
			prop: func() *entity.Property {
				p := approvedProperty(owner)
				p.RoomsAvailable = 0
				return p
			},
			actor: guest,
			in: func(id string) application.BookingInput {
				return application.BookingInput{ListingID: id, ListingType: entity.KindProperty, MoveInDate: moveIn, DurationMonths: 1}
			},
			want: application.ErrListingNotBookable,
		},
		{
			name:  "own listing",
			prop:  func() *entity.Property { return approvedProperty(owner) },
			actor: owner,
			in: func(id string) application.BookingInput {
				return application.BookingInput{ListingID: id, ListingType: entity.KindProperty, MoveInDate: moveIn, DurationMonths: 1}
			},
			want: application.ErrOwnListing,
		},
		{
			name: "zero price",
			prop: func() *entity.Property {
				p := approvedProperty(owner)
				p.Price, p.Deposit = 0, 0
				return p
			},
			actor: guest,
			in: func(id string) application.BookingInput {
				return application.BookingInput{ListingID: id, ListingType: entity.KindProperty, MoveInDate: moveIn, DurationMonths: 1}
			},
			want: application.ErrInvalidAmount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newBookingFixture(ctrl)

			id := primitive.NewObjectID().Hex()
			if tc.prop != nil {
				p := tc.prop()
				id = p.ID.Hex()
				f.props.EXPECT().GetByID(gomock.Any(), p.ID).Return(p, nil)
			}
			_, err := f.svc.Create(context.Background(), application.Actor{ID: tc.actor.Hex(), Role: entity.RoleUser}, tc.in(id), application.RequestMeta{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateBookingOpensOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newBookingFixture(ctrl)

	guest := primitive.NewObjectID()
	p := approvedProperty(primitive.NewObjectID())
	bookingID := primitive.NewObjectID()

	f.props.EXPECT().GetByID(gomock.Any(), p.ID).Return(p, nil)
	f.bookings.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *entity.Booking) error {
		if b.Amount != 21000 || b.Status != entity.BookingPending || b.PaymentStatus != entity.PaymentUnpaid {
			t.Fatalf("unexpected booking %+v", b)
		}
		b.ID = bookingID
		return nil
	})
	f.gateway.EXPECT().CreateOrder(gomock.Any(), float64(21000), "INR", bookingID.Hex(), gomock.Any()).
		Return(&payment.Order{ID: "order_1", Amount: 2100000, Currency: "INR"}, nil)
	f.bookings.EXPECT().SetOrderID(gomock.Any(), bookingID, "order_1").Return(nil)
	f.ledger.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *entity.PaymentTransaction) error {
		if tx.Event != entity.PaymentCreated || tx.Amount != 2100000 || tx.OrderID != "order_1" {
			t.Fatalf("unexpected ledger row %+v", tx)
		}
		return nil
	})
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in application.NotifyInput) error {
		if in.UserID != p.OwnerID || in.Type != entity.NotifyBookingCreated {
			t.Fatalf("unexpected notification %+v", in)
		}
		return nil
	})

	co, err := f.svc.Create(context.Background(), application.Actor{ID: guest.Hex(), Role: entity.RoleUser}, application.BookingInput{
		ListingID:      p.ID.Hex(),
		ListingType:    entity.KindProperty,
		MoveInDate:     fixedNow.Add(24 * time.Hour),
		DurationMonths: 2,
	}, application.RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if co.Order.ID != "order_1" || co.Booking.PaymentOrderID != "order_1" {
		t.Fatalf("unexpected checkout %+v", co)
	}
}

func TestCreateBookingGatewayFailureCancels(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newBookingFixture(ctrl)

	p := approvedProperty(primitive.NewObjectID())
	bookingID := primitive.NewObjectID()

	f.props.EXPECT().GetByID(gomock.Any(), p.ID).Return(p, nil)
	f.bookings.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *entity.Booking) error {
		b.ID = bookingID
		return nil
	})
	f.gateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, payment.ErrNotConfigured)
	f.bookings.EXPECT().Transition(gomock.Any(), bookingID, []entity.BookingStatus{entity.BookingPending}, repo.BookingChange{Status: entity.BookingCancelled}).
		Return(&entity.Booking{}, nil)

	_, err := f.svc.Create(context.Background(), application.Actor{ID: primitive.NewObjectID().Hex()}, application.BookingInput{
		ListingID:      p.ID.Hex(),
		ListingType:    entity.KindProperty,
		MoveInDate:     fixedNow,
		DurationMonths: 1,
	}, application.RequestMeta{})
	if !errors.Is(err, application.ErrPaymentUnavailable) {
		t.Fatalf("err = %v, want ErrPaymentUnavailable", err)
	}
}

func pendingBooking(guest, owner primitive.ObjectID) *entity.Booking {
	return &entity.Booking{
		ID:             primitive.NewObjectID(),
		UserID:         guest,
		OwnerID:        owner,
		ListingID:      primitive.NewObjectID(),
		ListingType:    entity.KindProperty,
		ListingTitle:   "Sunrise PG",
		Amount:         13000,
		Currency:       "INR",
		Status:         entity.BookingPending,
		PaymentStatus:  entity.PaymentUnpaid,
		PaymentOrderID: "order_1",
	}
}

func TestVerifyPayment(t *testing.T) {
	guest := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	payable := []entity.PaymentStatus{entity.PaymentUnpaid, entity.PaymentFailed}

	t.Run("bad signature marks failed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)

		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)
		f.gateway.EXPECT().VerifySignature("order_1", "pay_1", "forged").Return(payment.ErrInvalidSignature)
		f.bookings.EXPECT().SetPaymentStatus(gomock.Any(), b.ID, payable, entity.PaymentFailed, "").Return(b, nil)
		f.ledger.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *entity.PaymentTransaction) error {
			if tx.Event != entity.PaymentFailedEvent {
				t.Fatalf("event = %s", tx.Event)
			}
			return nil
		})

		_, err := f.svc.VerifyPayment(context.Background(), application.Actor{ID: guest.Hex()}, b.ID.Hex(),
			application.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: "forged"}, application.RequestMeta{})
		if !errors.Is(err, application.ErrInvalidSignature) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("order mismatch skips gateway", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)

		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)
		f.bookings.EXPECT().SetPaymentStatus(gomock.Any(), b.ID, payable, entity.PaymentFailed, "").Return(b, nil)
		f.ledger.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.VerifyPayment(context.Background(), application.Actor{ID: guest.Hex()}, b.ID.Hex(),
			application.PaymentConfirmation{OrderID: "order_other", PaymentID: "pay_1", Signature: "sig"}, application.RequestMeta{})
		if !errors.Is(err, application.ErrInvalidSignature) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("valid signature captures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)
		paid := *b
		paid.PaymentStatus = entity.PaymentPaid
		paid.PaymentID = "pay_1"

		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)
		f.gateway.EXPECT().VerifySignature("order_1", "pay_1", "good").Return(nil)
		f.bookings.EXPECT().SetPaymentStatus(gomock.Any(), b.ID, payable, entity.PaymentPaid, "pay_1").Return(&paid, nil)
		f.ledger.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *entity.PaymentTransaction) error {
			if tx.Event != entity.PaymentCaptured || tx.PaymentID != "pay_1" {
				t.Fatalf("unexpected ledger row %+v", tx)
			}
			return nil
		})
		notified := map[primitive.ObjectID]bool{}
		f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, in application.NotifyInput) error {
			notified[in.UserID] = true
			return nil
		})

		got, err := f.svc.VerifyPayment(context.Background(), application.Actor{ID: guest.Hex()}, b.ID.Hex(),
			application.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: "good"}, application.RequestMeta{})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if got.PaymentStatus != entity.PaymentPaid || !notified[guest] || !notified[owner] {
			t.Fatalf("status %s, notified %v", got.PaymentStatus, notified)
		}
	})

	t.Run("repeat with same payment id is idempotent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)
		b.PaymentStatus = entity.PaymentPaid
		b.PaymentID = "pay_1"

		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil).Times(2)

		actor := application.Actor{ID: guest.Hex()}
		if _, err := f.svc.VerifyPayment(context.Background(), actor, b.ID.Hex(),
			application.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_1"}, application.RequestMeta{}); err != nil {
			t.Fatalf("repeat: %v", err)
		}
		_, err := f.svc.VerifyPayment(context.Background(), actor, b.ID.Hex(),
			application.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_2"}, application.RequestMeta{})
		if !errors.Is(err, application.ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("other user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)
		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)

		_, err := f.svc.VerifyPayment(context.Background(), application.Actor{ID: owner.Hex()}, b.ID.Hex(),
			application.PaymentConfirmation{}, application.RequestMeta{})
		if !errors.Is(err, application.ErrForbidden) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestConfirmBooking(t *testing.T) {
	guest := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	t.Run("no rooms left", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)

		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)
		f.props.EXPECT().DecrementRooms(gomock.Any(), b.ListingID).Return(repo.ErrConflict)

		_, err := f.svc.Confirm(context.Background(), application.Actor{ID: owner.Hex(), Role: entity.RoleOwner}, b.ID.Hex(), application.RequestMeta{})
		if !errors.Is(err, application.ErrNoRoomsLeft) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("lost race restores room", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)

		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)
		f.props.EXPECT().DecrementRooms(gomock.Any(), b.ListingID).Return(nil)
		f.bookings.EXPECT().Transition(gomock.Any(), b.ID, gomock.Any(), gomock.Any()).Return(nil, repo.ErrConflict)
		f.props.EXPECT().IncrementRooms(gomock.Any(), b.ListingID).Return(nil)

		_, err := f.svc.Confirm(context.Background(), application.Actor{ID: owner.Hex(), Role: entity.RoleOwner}, b.ID.Hex(), application.RequestMeta{})
		if !errors.Is(err, application.ErrConflict) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("stranger", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)
		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)

		_, err := f.svc.Confirm(context.Background(), application.Actor{ID: guest.Hex()}, b.ID.Hex(), application.RequestMeta{})
		if !errors.Is(err, application.ErrForbidden) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestCancelConfirmedPaidBooking(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newBookingFixture(ctrl)

	guest := primitive.NewObjectID()
	b := pendingBooking(guest, primitive.NewObjectID())
	b.Status = entity.BookingConfirmed
	b.PaymentStatus = entity.PaymentPaid
	b.PaymentID = "pay_1"
	cancelled := *b
	cancelled.Status = entity.BookingCancelled

	f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)
	f.bookings.EXPECT().Transition(gomock.Any(), b.ID, []entity.BookingStatus{entity.BookingConfirmed}, repo.BookingChange{Status: entity.BookingCancelled}).
		Return(&cancelled, nil)
	f.props.EXPECT().IncrementRooms(gomock.Any(), b.ListingID).Return(nil)
	f.cache.EXPECT().Invalidate(gomock.Any(), "properties").Return(nil)
	f.ledger.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *entity.PaymentTransaction) error {
		if tx.Event != entity.PaymentRefundRequested {
			t.Fatalf("event = %s", tx.Event)
		}
		return nil
	})
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	got, err := f.svc.Cancel(context.Background(), application.Actor{ID: guest.Hex()}, b.ID.Hex(), application.RequestMeta{})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != entity.BookingCancelled {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestRejectBooking(t *testing.T) {
	guest := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	asOwner := application.Actor{ID: owner.Hex(), Role: entity.RoleOwner}

	t.Run("paid booking requests refund", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)
		b.PaymentStatus = entity.PaymentPaid
		b.PaymentID = "pay_9"
		rejected := *b
		rejected.Status = entity.BookingRejected
		rejected.RejectionReason = "full for the term"

		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)
		f.bookings.EXPECT().Transition(gomock.Any(), b.ID, []entity.BookingStatus{entity.BookingPending},
			repo.BookingChange{Status: entity.BookingRejected, RejectionReason: "full for the term"}).Return(&rejected, nil)
		f.ledger.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *entity.PaymentTransaction) error {
			if tx.Event != entity.PaymentRefundRequested || tx.PaymentID != "pay_9" || tx.BookingID != b.ID.Hex() {
				t.Fatalf("unexpected ledger entry %+v", tx)
			}
			return nil
		})
		f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in application.NotifyInput) error {
			if in.UserID != guest || in.Type != entity.NotifyBookingRejected {
				t.Fatalf("unexpected notification %+v", in)
			}
			if in.Message != `Your booking for "Sunrise PG" was rejected. Reason: full for the term` {
				t.Fatalf("message = %q", in.Message)
			}
			return nil
		})

		got, err := f.svc.Reject(context.Background(), asOwner, b.ID.Hex(), " full for the term ", application.RequestMeta{})
		if err != nil {
			t.Fatalf("reject: %v", err)
		}
		if got.Status != entity.BookingRejected {
			t.Fatalf("status = %s", got.Status)
		}
	})

	t.Run("unpaid booking writes no ledger entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)
		rejected := *b
		rejected.Status = entity.BookingRejected

		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)
		f.bookings.EXPECT().Transition(gomock.Any(), b.ID, gomock.Any(), gomock.Any()).Return(&rejected, nil)
		f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

		if _, err := f.svc.Reject(context.Background(), asOwner, b.ID.Hex(), "", application.RequestMeta{}); err != nil {
			t.Fatalf("reject: %v", err)
		}
	})

	t.Run("not pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)
		b.Status = entity.BookingConfirmed

		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)
		f.bookings.EXPECT().Transition(gomock.Any(), b.ID, []entity.BookingStatus{entity.BookingPending}, gomock.Any()).
			Return(nil, repo.ErrConflict)

		_, err := f.svc.Reject(context.Background(), asOwner, b.ID.Hex(), "late", application.RequestMeta{})
		if !errors.Is(err, application.ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("guest cannot reject", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newBookingFixture(ctrl)
		b := pendingBooking(guest, owner)
		f.bookings.EXPECT().GetByID(gomock.Any(), b.ID).Return(b, nil)

		_, err := f.svc.Reject(context.Background(), application.Actor{ID: guest.Hex()}, b.ID.Hex(), "", application.RequestMeta{})
		if !errors.Is(err, application.ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})
}
