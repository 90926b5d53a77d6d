package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
	"github.com/AdityaShome/Secondhome-sub002/pkg/storage"
)

// statusOf maps service errors to HTTP status codes. Unknown errors are 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrBanned),
		errors.Is(err, application.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, application.ErrNotFound),
		errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrEmailTaken),
		errors.Is(err, application.ErrPhoneTaken),
		errors.Is(err, application.ErrAlreadyVerified),
		errors.Is(err, application.ErrConflict),
		errors.Is(err, application.ErrNoRoomsLeft),
		errors.Is(err, application.ErrActiveBookings):
		return http.StatusConflict
	case errors.Is(err, application.ErrInvalidInput),
		errors.Is(err, application.ErrInvalidOTP),
		errors.Is(err, application.ErrListingNotBookable),
		errors.Is(err, application.ErrOwnListing),
		errors.Is(err, application.ErrInvalidAmount),
		errors.Is(err, application.ErrInvalidSignature),
		errors.Is(err, application.ErrTooManyImages),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, storage.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrPaymentUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail writes the error envelope for err. Internal errors are logged and
// replaced by a generic message.
func fail(c *gin.Context, log *logrus.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		if log != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		response.Error[any](c, status, "internal server error", nil)
		return
	}
	response.Error[any](c, status, err.Error(), nil)
}

func actorFrom(c *gin.Context) application.Actor {
	return application.Actor{ID: c.GetString("userID"), Role: entity.Role(c.GetString("userRole"))}
}

// viewerFrom is nil for anonymous requests on public routes.
func viewerFrom(c *gin.Context) *application.Actor {
	if c.GetString("userID") == "" {
		return nil
	}
	a := actorFrom(c)
	return &a
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func metaFrom(c *gin.Context) application.RequestMeta {
	return application.RequestMeta{IP: clientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

func pageFrom(c *gin.Context) repo.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return repo.Page{Page: page, Limit: limit}.Normalize()
}

func pageMeta(p repo.Page, total int64) response.Page {
	p = p.Normalize()
	return response.Page{Page: p.Page, Limit: p.Limit, Total: total}
}

// emptyIfNil keeps list responses as [] instead of null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// readImages loads every file under field, up to max.
func readImages(c *gin.Context, field string, max int) ([]*storage.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", application.ErrInvalidInput, err)
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files in field %s", application.ErrInvalidInput, field)
	}
	if len(files) > max {
		return nil, application.ErrTooManyImages
	}
	out := make([]*storage.Image, 0, len(files))
	for _, fh := range files {
		img, err := storage.ReadImage(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}
