package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
)

const dateLayout = "2006-01-02"

type BookingHandler struct {
	Svc    *application.BookingService
	Logger *logrus.Logger
}

func NewBookingHandler(svc *application.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

type bookingRequest struct {
	ListingID      string `json:"listing_id" binding:"required,objectid"`
	ListingType    string `json:"listing_type" binding:"required,oneof=property mess"`
	MoveInDate     string `json:"move_in_date" binding:"required,date"`
	DurationMonths int    `json:"duration_months" binding:"required,min=1,max=24"`
	Notes          string `json:"notes" binding:"max=1000"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

type reasonRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type bookingListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed rejected cancelled completed"`
}

// Create POST /api/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req bookingRequest
	if !bind(c, &req) {
		return
	}
	moveIn, err := time.ParseInLocation(dateLayout, req.MoveInDate, time.UTC)
	if err != nil {
		fail(c, h.Logger, application.ErrInvalidInput)
		return
	}
	in := application.BookingInput{
		ListingID:      req.ListingID,
		ListingType:    entity.ListingKind(req.ListingType),
		MoveInDate:     moveIn,
		DurationMonths: req.DurationMonths,
		Notes:          req.Notes,
	}
	out, err := h.Svc.Create(c.Request.Context(), actorFrom(c), in, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, out, "booking created, complete the payment", nil)
}

// VerifyPayment POST /api/bookings/:id/verify-payment
func (h *BookingHandler) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if !bind(c, &req) {
		return
	}
	pc := application.PaymentConfirmation{OrderID: req.OrderID, PaymentID: req.PaymentID, Signature: req.Signature}
	b, err := h.Svc.VerifyPayment(c.Request.Context(), actorFrom(c), c.Param("id"), pc, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "payment verified", nil)
}

func (h *BookingHandler) list(c *gin.Context, load func(entity.BookingStatus, repo.Page) ([]entity.Booking, int64, error), msg string) {
	var q bookingListQuery
	if !bindQuery(c, &q) {
		return
	}
	page := pageFrom(c)
	items, total, err := load(entity.BookingStatus(q.Status), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(items), msg, pageMeta(page, total))
}

// Mine GET /api/bookings/mine
func (h *BookingHandler) Mine(c *gin.Context) {
	h.list(c, func(s entity.BookingStatus, page repo.Page) ([]entity.Booking, int64, error) {
		return h.Svc.Mine(c.Request.Context(), actorFrom(c), s, page)
	}, "my bookings")
}

// Incoming GET /api/bookings/owner
func (h *BookingHandler) Incoming(c *gin.Context) {
	h.list(c, func(s entity.BookingStatus, page repo.Page) ([]entity.Booking, int64, error) {
		return h.Svc.Incoming(c.Request.Context(), actorFrom(c), s, page)
	}, "incoming bookings")
}

// Get GET /api/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "booking", nil)
}

// Confirm POST /api/bookings/:id/confirm
func (h *BookingHandler) Confirm(c *gin.Context) {
	b, err := h.Svc.Confirm(c.Request.Context(), actorFrom(c), c.Param("id"), metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "booking confirmed", nil)
}

// Reject POST /api/bookings/:id/reject
func (h *BookingHandler) Reject(c *gin.Context) {
	var req reasonRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	b, err := h.Svc.Reject(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "booking rejected", nil)
}

// Cancel POST /api/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	b, err := h.Svc.Cancel(c.Request.Context(), actorFrom(c), c.Param("id"), metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "booking cancelled", nil)
}

// Payments GET /api/bookings/:id/payments
func (h *BookingHandler) Payments(c *gin.Context) {
	txs, err := h.Svc.Payments(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(txs), "payment history", nil)
}
