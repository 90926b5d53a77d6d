package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/payment"
)

const (
	MinBookingMonths = 1
	MaxBookingMonths = 24
)

type BookingService struct {
	Repo       repo.BookingRepository
	Properties repo.PropertyRepository
	Messes     repo.MessRepository
	Ledger     repo.PaymentRepository
	Gateway    payment.Gateway
	Notifier   Notifier
	Cache      ListCache
	Audit      *Auditor
	Cfg        *config.Config
	Logger     *logrus.Logger
	Now        func() time.Time
}

func NewBookingService(r repo.BookingRepository, props repo.PropertyRepository, messes repo.MessRepository, ledger repo.PaymentRepository, gw payment.Gateway, notifier Notifier, cache ListCache, audit *Auditor, cfg *config.Config, logger *logrus.Logger) *BookingService {
	return &BookingService{
		Repo:       r,
		Properties: props,
		Messes:     messes,
		Ledger:     ledger,
		Gateway:    gw,
		Notifier:   notifier,
		Cache:      cache,
		Audit:      audit,
		Cfg:        cfg,
		Logger:     logger,
		Now:        time.Now,
	}
}

type BookingInput struct {
	ListingID      string
	ListingType    entity.ListingKind
	MoveInDate     time.Time
	DurationMonths int
	Notes          string
}

// Checkout is a new booking together with the gateway order the client pays.
type Checkout struct {
	Booking *entity.Booking `json:"booking"`
	Order   *payment.Order  `json:"order"`
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *BookingService) listingRef(ctx context.Context, kind entity.ListingKind, id primitive.ObjectID) (entity.ListingRef, error) {
	switch kind {
	case entity.KindProperty:
		p, err := s.Properties.GetByID(ctx, id)
		if err != nil {
			return entity.ListingRef{}, err
		}
		return p.Ref(), nil
	case entity.KindMess:
		m, err := s.Messes.GetByID(ctx, id)
		if err != nil {
			return entity.ListingRef{}, err
		}
		return m.Ref(), nil
	}
	return entity.ListingRef{}, invalid("listing_type must be property or mess")
}

// Amount is the total due: monthly price times months, plus the deposit for properties.
func Amount(ref entity.ListingRef, months int) int64 {
	total := ref.MonthlyPrice * int64(months)
	if ref.Kind == entity.KindProperty {
		total += ref.Deposit
	}
	return total
}

func (s *BookingService) Create(ctx context.Context, actor Actor, in BookingInput, meta RequestMeta) (*Checkout, error) {
	userID, err := parseID(actor.ID)
	if err != nil {
		return nil, ErrForbidden
	}
	if !in.ListingType.Valid() {
		return nil, invalid("listing_type must be property or mess")
	}
	if in.DurationMonths < MinBookingMonths || in.DurationMonths > MaxBookingMonths {
		return nil, invalid("duration_months must be between %d and %d", MinBookingMonths, MaxBookingMonths)
	}
	today := s.now().Truncate(24 * time.Hour)
	if in.MoveInDate.UTC().Before(today) {
		return nil, invalid("move_in_date must not be in the past")
	}
	listingID, err := primitive.ObjectIDFromHex(in.ListingID)
	if err != nil {
		return nil, ErrListingNotBookable
	}

	ref, err := s.listingRef(ctx, in.ListingType, listingID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrListingNotBookable
	}
	if err != nil {
		return nil, err
	}
	if ref.Status != entity.ListingApproved {
		return nil, ErrListingNotBookable
	}
	if ref.Kind == entity.KindProperty && ref.RoomsAvailable <= 0 {
		return nil, fmt.Errorf("%w: no rooms available", ErrListingNotBookable)
	}
	if ref.OwnerID == actor.ID {
		return nil, ErrOwnListing
	}
	amount := Amount(ref, in.DurationMonths)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	ownerID, _ := primitive.ObjectIDFromHex(ref.OwnerID)

	b := &entity.Booking{
		UserID:         userID,
		ListingID:      listingID,
		ListingType:    ref.Kind,
		ListingTitle:   ref.Title,
		OwnerID:        ownerID,
		MoveInDate:     in.MoveInDate.UTC(),
		DurationMonths: in.DurationMonths,
		Amount:         amount,
		Currency:       s.Cfg.Currency,
		Status:         entity.BookingPending,
		PaymentStatus:  entity.PaymentUnpaid,
		Notes:          strings.TrimSpace(in.Notes),
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}

	order, err := s.Gateway.CreateOrder(ctx, float64(amount), b.Currency, b.ID.Hex(), map[string]string{
		"booking_id":   b.ID.Hex(),
		"listing_id":   ref.ID,
		"listing_type": string(ref.Kind),
	})
	if err != nil {
		s.Logger.WithError(err).WithField("booking_id", b.ID.Hex()).Error("create payment order failed")
		if _, cErr := s.Repo.Transition(ctx, b.ID, []entity.BookingStatus{entity.BookingPending}, repo.BookingChange{Status: entity.BookingCancelled}); cErr != nil {
			s.Logger.WithError(cErr).WithField("booking_id", b.ID.Hex()).Warn("cancel unpaid booking failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}
	if err := s.Repo.SetOrderID(ctx, b.ID, order.ID); err != nil {
		return nil, err
	}
	b.PaymentOrderID = order.ID

	s.record(ctx, b, entity.PaymentCreated, "")
	s.notify(ctx, b.OwnerID, entity.NotifyBookingCreated, "New booking request",
		fmt.Sprintf("You have a new booking request for %q.", b.ListingTitle), b)
	s.Audit.Record(ctx, actor.ID, "booking.create", "booking:"+b.ID.Hex(), meta, map[string]any{"amount": b.Amount, "listing_id": ref.ID})
	return &Checkout{Booking: b, Order: order}, nil
}

type PaymentConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyPayment checks the checkout signature and records the outcome.
func (s *BookingService) VerifyPayment(ctx context.Context, actor Actor, id string, pc PaymentConfirmation, meta RequestMeta) (*entity.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID.Hex() != actor.ID {
		return nil, ErrForbidden
	}
	if b.PaymentStatus == entity.PaymentPaid {
		if b.PaymentID == pc.PaymentID {
			return b, nil
		}
		return nil, fmt.Errorf("%w: booking already paid", ErrConflict)
	}
	if b.Status == entity.BookingCancelled || b.Status == entity.BookingRejected {
		return nil, fmt.Errorf("%w: booking is %s", ErrConflict, b.Status)
	}

	payable := []entity.PaymentStatus{entity.PaymentUnpaid, entity.PaymentFailed}
	sigErr := errors.New("order mismatch")
	if pc.OrderID == b.PaymentOrderID {
		sigErr = s.Gateway.VerifySignature(pc.OrderID, pc.PaymentID, pc.Signature)
	}
	if sigErr != nil {
		s.Logger.WithError(sigErr).WithField("booking_id", b.ID.Hex()).Warn("payment verification failed")
		if _, err := s.Repo.SetPaymentStatus(ctx, b.ID, payable, entity.PaymentFailed, ""); err != nil && !errors.Is(err, repo.ErrConflict) {
			return nil, err
		}
		s.record(ctx, b, entity.PaymentFailedEvent, pc.PaymentID)
		s.Audit.Record(ctx, actor.ID, "booking.payment_failed", "booking:"+b.ID.Hex(), meta, nil)
		return nil, ErrInvalidSignature
	}

	updated, err := s.Repo.SetPaymentStatus(ctx, b.ID, payable, entity.PaymentPaid, pc.PaymentID)
	if errors.Is(err, repo.ErrConflict) {
		return nil, fmt.Errorf("%w: payment state changed", ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	s.record(ctx, updated, entity.PaymentCaptured, pc.PaymentID)
	msg := fmt.Sprintf("Payment received for %q.", updated.ListingTitle)
	s.notify(ctx, updated.UserID, entity.NotifyPaymentReceived, "Payment successful", msg, updated)
	s.notify(ctx, updated.OwnerID, entity.NotifyPaymentReceived, "Payment received", msg, updated)
	s.Audit.Record(ctx, actor.ID, "booking.payment_captured", "booking:"+b.ID.Hex(), meta, map[string]any{"payment_id": pc.PaymentID})
	return updated, nil
}

func (s *BookingService) load(ctx context.Context, id string) (*entity.Booking, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	b, err := s.Repo.GetByID(ctx, oid)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *BookingService) Get(ctx context.Context, actor Actor, id string) (*entity.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && b.UserID.Hex() != actor.ID && b.OwnerID.Hex() != actor.ID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *BookingService) Mine(ctx context.Context, actor Actor, status entity.BookingStatus, page repo.Page) ([]entity.Booking, int64, error) {
	uid, err := parseID(actor.ID)
	if err != nil {
		return nil, 0, ErrForbidden
	}
	return s.Repo.List(ctx, repo.BookingFilter{UserID: &uid, Status: status, Page: page})
}

// Incoming lists bookings on the actor's listings.
func (s *BookingService) Incoming(ctx context.Context, actor Actor, status entity.BookingStatus, page repo.Page) ([]entity.Booking, int64, error) {
	uid, err := parseID(actor.ID)
	if err != nil {
		return nil, 0, ErrForbidden
	}
	return s.Repo.List(ctx, repo.BookingFilter{OwnerID: &uid, Status: status, Page: page})
}

func (s *BookingService) loadForOwner(ctx context.Context, actor Actor, id string) (*entity.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && b.OwnerID.Hex() != actor.ID {
		return nil, ErrForbidden
	}
	return b, nil
}

func transitionErr(err error, b *entity.Booking, to entity.BookingStatus) error {
	if errors.Is(err, repo.ErrConflict) {
		return fmt.Errorf("%w: cannot move booking from %s to %s", ErrConflict, b.Status, to)
	}
	return err
}

// Confirm accepts a pending booking. Property bookings take a room.
func (s *BookingService) Confirm(ctx context.Context, actor Actor, id string, meta RequestMeta) (*entity.Booking, error) {
	b, err := s.loadForOwner(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Status != entity.BookingPending {
		return nil, transitionErr(repo.ErrConflict, b, entity.BookingConfirmed)
	}
	if b.ListingType == entity.KindProperty {
		if err := s.Properties.DecrementRooms(ctx, b.ListingID); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return nil, ErrNoRoomsLeft
			}
			return nil, err
		}
	}
	updated, err := s.Repo.Transition(ctx, b.ID, []entity.BookingStatus{entity.BookingPending}, repo.BookingChange{Status: entity.BookingConfirmed})
	if err != nil {
		if b.ListingType == entity.KindProperty {
			if rErr := s.Properties.IncrementRooms(ctx, b.ListingID); rErr != nil {
				s.Logger.WithError(rErr).WithField("listing_id", b.ListingID.Hex()).Error("restore room failed")
			}
		}
		return nil, transitionErr(err, b, entity.BookingConfirmed)
	}
	s.roomsChanged(ctx, updated)
	s.notify(ctx, updated.UserID, entity.NotifyBookingConfirmed, "Booking confirmed",
		fmt.Sprintf("Your booking for %q was confirmed.", updated.ListingTitle), updated)
	s.Audit.Record(ctx, actor.ID, "booking.confirm", "booking:"+b.ID.Hex(), meta, nil)
	return updated, nil
}

func (s *BookingService) Reject(ctx context.Context, actor Actor, id, reason string, meta RequestMeta) (*entity.Booking, error) {
	b, err := s.loadForOwner(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	updated, err := s.Repo.Transition(ctx, b.ID, []entity.BookingStatus{entity.BookingPending}, repo.BookingChange{
		Status:          entity.BookingRejected,
		RejectionReason: reason,
	})
	if err != nil {
		return nil, transitionErr(err, b, entity.BookingRejected)
	}
	if updated.PaymentStatus == entity.PaymentPaid {
		s.record(ctx, updated, entity.PaymentRefundRequested, updated.PaymentID)
	}
	msg := fmt.Sprintf("Your booking for %q was rejected.", updated.ListingTitle)
	if reason != "" {
		msg += " Reason: " + reason
	}
	s.notify(ctx, updated.UserID, entity.NotifyBookingRejected, "Booking rejected", msg, updated)
	s.Audit.Record(ctx, actor.ID, "booking.reject", "booking:"+b.ID.Hex(), meta, map[string]any{"reason": reason})
	return updated, nil
}

// Cancel is done by the guest. A confirmed property booking gives its room back.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id string, meta RequestMeta) (*entity.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID.Hex() != actor.ID {
		return nil, ErrForbidden
	}
	if !b.Active() {
		return nil, transitionErr(repo.ErrConflict, b, entity.BookingCancelled)
	}
	was := b.Status
	updated, err := s.Repo.Transition(ctx, b.ID, []entity.BookingStatus{was}, repo.BookingChange{Status: entity.BookingCancelled})
	if err != nil {
		return nil, transitionErr(err, b, entity.BookingCancelled)
	}
	if was == entity.BookingConfirmed && updated.ListingType == entity.KindProperty {
		if err := s.Properties.IncrementRooms(ctx, updated.ListingID); err != nil {
			s.Logger.WithError(err).WithField("listing_id", updated.ListingID.Hex()).Error("restore room failed")
		}
		s.roomsChanged(ctx, updated)
	}
	if updated.PaymentStatus == entity.PaymentPaid {
		s.record(ctx, updated, entity.PaymentRefundRequested, updated.PaymentID)
	}
	s.notify(ctx, updated.OwnerID, entity.NotifyBookingCancelled, "Booking cancelled",
		fmt.Sprintf("A booking for %q was cancelled by the guest.", updated.ListingTitle), updated)
	s.Audit.Record(ctx, actor.ID, "booking.cancel", "booking:"+b.ID.Hex(), meta, map[string]any{"from": string(was)})
	return updated, nil
}

// Payments returns the ledger entries of a booking the actor can see.
func (s *BookingService) Payments(ctx context.Context, actor Actor, id string) ([]entity.PaymentTransaction, error) {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.Ledger == nil {
		return []entity.PaymentTransaction{}, nil
	}
	return s.Ledger.ListByBooking(ctx, b.ID.Hex())
}

func (s *BookingService) record(ctx context.Context, b *entity.Booking, ev entity.PaymentEvent, paymentID string) {
	if s.Ledger == nil {
		return
	}
	err := s.Ledger.Insert(ctx, &entity.PaymentTransaction{
		BookingID: b.ID.Hex(),
		UserID:    b.UserID.Hex(),
		OrderID:   b.PaymentOrderID,
		PaymentID: paymentID,
		Event:     ev,
		Amount:    payment.ToMinor(float64(b.Amount)),
		Currency:  b.Currency,
	})
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"booking_id": b.ID.Hex(), "event": ev}).Error("payment ledger insert failed")
	}
}

func (s *BookingService) notify(ctx context.Context, to primitive.ObjectID, typ entity.NotificationType, title, msg string, b *entity.Booking) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.Notify(ctx, NotifyInput{
		UserID:  to,
		Type:    typ,
		Title:   title,
		Message: msg,
		Link:    "/bookings/" + b.ID.Hex(),
		Data: map[string]string{
			"booking_id":     b.ID.Hex(),
			"status":         string(b.Status),
			"payment_status": string(b.PaymentStatus),
			"listing_title":  b.ListingTitle,
		},
		Email: true,
	})
	if err != nil {
		s.Logger.WithError(err).WithField("booking_id", b.ID.Hex()).Warn("booking notify failed")
	}
}

// roomsChanged drops cached property pages after a room count change.
func (s *BookingService) roomsChanged(ctx context.Context, b *entity.Booking) {
	if s.Cache == nil || b.ListingType != entity.KindProperty {
		return
	}
	if err := s.Cache.Invalidate(ctx, propertyCachePrefix); err != nil {
		s.Logger.WithError(err).Warn("cache invalidate failed")
	}
}
