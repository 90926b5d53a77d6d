package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
	"github.com/AdityaShome/Secondhome-sub002/pkg/storage"
)

type MessHandler struct {
	Svc    *application.MessService
	Logger *logrus.Logger
}

func NewMessHandler(svc *application.MessService, logger *logrus.Logger) *MessHandler {
	return &MessHandler{Svc: svc, Logger: logger}
}

type menuDayRequest struct {
	Day       string `json:"day" binding:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Breakfast string `json:"breakfast" binding:"max=200"`
	Lunch     string `json:"lunch" binding:"max=200"`
	Dinner    string `json:"dinner" binding:"max=200"`
}

type messRequest struct {
	Name         string           `json:"name" binding:"required,min=3,max=120"`
	Description  string           `json:"description" binding:"max=5000"`
	Address      string           `json:"address" binding:"required,max=300"`
	City         string           `json:"city" binding:"required,max=80"`
	Lat          *float64         `json:"lat" binding:"omitempty,latitude"`
	Lng          *float64         `json:"lng" binding:"omitempty,longitude"`
	MonthlyPrice int64            `json:"monthly_price" binding:"required,gt=0"`
	MealsPerDay  int              `json:"meals_per_day" binding:"required,min=1,max=5"`
	MealTypes    string           `json:"meal_types" binding:"required,oneof=veg nonveg both"`
	Menu         []menuDayRequest `json:"menu" binding:"max=7,dive"`
	Images       []string         `json:"images" binding:"max=10,dive,url"`
}

type messPatchRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=3,max=120"`
	Description  *string          `json:"description" binding:"omitempty,max=5000"`
	Address      *string          `json:"address" binding:"omitempty,max=300"`
	City         *string          `json:"city" binding:"omitempty,max=80"`
	Lat          *float64         `json:"lat" binding:"omitempty,latitude"`
	Lng          *float64         `json:"lng" binding:"omitempty,longitude"`
	MonthlyPrice *int64           `json:"monthly_price" binding:"omitempty,gt=0"`
	MealsPerDay  *int             `json:"meals_per_day" binding:"omitempty,min=1,max=5"`
	MealTypes    *string          `json:"meal_types" binding:"omitempty,oneof=veg nonveg both"`
	Menu         []menuDayRequest `json:"menu" binding:"omitempty,max=7,dive"`
}

func menu(days []menuDayRequest) []entity.MenuDay {
	if days == nil {
		return nil
	}
	out := make([]entity.MenuDay, 0, len(days))
	for _, d := range days {
		out = append(out, entity.MenuDay{Day: d.Day, Breakfast: d.Breakfast, Lunch: d.Lunch, Dinner: d.Dinner})
	}
	return out
}

// Create POST /api/messes
func (h *MessHandler) Create(c *gin.Context) {
	var req messRequest
	if !bind(c, &req) {
		return
	}
	in := application.MessInput{
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		City:         req.City,
		Location:     location(req.Lat, req.Lng),
		MonthlyPrice: req.MonthlyPrice,
		MealsPerDay:  req.MealsPerDay,
		MealTypes:    req.MealTypes,
		Menu:         menu(req.Menu),
		Images:       req.Images,
	}
	m, err := h.Svc.Create(c.Request.Context(), actorFrom(c), in, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, m, "mess submitted for review", nil)
}

// List GET /api/messes
func (h *MessHandler) List(c *gin.Context) {
	var q listingQuery
	if !bindQuery(c, &q) {
		return
	}
	f := q.filter()
	page, err := h.Svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, page.Items, "messes", pageMeta(f.Page, page.Total))
}

// Nearby GET /api/messes/nearby
func (h *MessHandler) Nearby(c *gin.Context) {
	var q nearbyQuery
	if !bindQuery(c, &q) {
		return
	}
	items, err := h.Svc.Nearby(c.Request.Context(), q.query())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "nearby messes", nil)
}

// Search GET /api/messes/search
func (h *MessHandler) Search(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.Svc.Search(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(items), "search results", pageMeta(page, total))
}

// Mine GET /api/messes/mine
func (h *MessHandler) Mine(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.Svc.Mine(c.Request.Context(), actorFrom(c), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(items), "my messes", pageMeta(page, total))
}

// Get GET /api/messes/:id
func (h *MessHandler) Get(c *gin.Context) {
	m, err := h.Svc.Get(c.Request.Context(), c.Param("id"), viewerFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, m, "mess", nil)
}

// Update PUT /api/messes/:id
func (h *MessHandler) Update(c *gin.Context) {
	var req messPatchRequest
	if !bind(c, &req) {
		return
	}
	patch := application.MessPatch{
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		City:         req.City,
		Location:     location(req.Lat, req.Lng),
		MonthlyPrice: req.MonthlyPrice,
		MealsPerDay:  req.MealsPerDay,
		MealTypes:    req.MealTypes,
		Menu:         menu(req.Menu),
	}
	m, err := h.Svc.Update(c.Request.Context(), actorFrom(c), c.Param("id"), patch, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, m, "mess updated", nil)
}

// Delete DELETE /api/messes/:id
func (h *MessHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), actorFrom(c), c.Param("id"), metaFrom(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "mess deleted", nil)
}

// AddImages POST /api/messes/:id/images
func (h *MessHandler) AddImages(c *gin.Context) {
	imgs, err := readImages(c, "images", storage.MaxListingImages)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	urls, err := h.Svc.AddImages(c.Request.Context(), actorFrom(c), c.Param("id"), imgs)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"images": urls}, "images uploaded", nil)
}
