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

type PropertyHandler struct {
	Svc    *application.PropertyService
	Logger *logrus.Logger
}

func NewPropertyHandler(svc *application.PropertyService, logger *logrus.Logger) *PropertyHandler {
	return &PropertyHandler{Svc: svc, Logger: logger}
}

type propertyRequest struct {
	Title          string   `json:"title" binding:"required,min=3,max=120"`
	Description    string   `json:"description" binding:"max=5000"`
	Type           string   `json:"type" binding:"required,oneof=pg hostel flat room"`
	Gender         string   `json:"gender" binding:"omitempty,oneof=boys girls coed"`
	Address        string   `json:"address" binding:"required,max=300"`
	City           string   `json:"city" binding:"required,max=80"`
	State          string   `json:"state" binding:"max=80"`
	Pincode        string   `json:"pincode" binding:"omitempty,numeric,len=6"`
	Lat            *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng            *float64 `json:"lng" binding:"omitempty,longitude"`
	Price          int64    `json:"price" binding:"required,gt=0"`
	Deposit        int64    `json:"deposit" binding:"gte=0"`
	Amenities      []string `json:"amenities" binding:"max=30,dive,max=40"`
	Images         []string `json:"images" binding:"max=10,dive,url"`
	RoomsAvailable int      `json:"rooms_available" binding:"gte=0"`
}

type propertyPatchRequest struct {
	Title          *string  `json:"title" binding:"omitempty,min=3,max=120"`
	Description    *string  `json:"description" binding:"omitempty,max=5000"`
	Type           *string  `json:"type" binding:"omitempty,oneof=pg hostel flat room"`
	Gender         *string  `json:"gender" binding:"omitempty,oneof=boys girls coed"`
	Address        *string  `json:"address" binding:"omitempty,max=300"`
	City           *string  `json:"city" binding:"omitempty,max=80"`
	State          *string  `json:"state" binding:"omitempty,max=80"`
	Pincode        *string  `json:"pincode" binding:"omitempty,numeric,len=6"`
	Lat            *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng            *float64 `json:"lng" binding:"omitempty,longitude"`
	Price          *int64   `json:"price" binding:"omitempty,gt=0"`
	Deposit        *int64   `json:"deposit" binding:"omitempty,gte=0"`
	Amenities      []string `json:"amenities" binding:"omitempty,max=30,dive,max=40"`
	RoomsAvailable *int     `json:"rooms_available" binding:"omitempty,gte=0"`
}

func location(lat, lng *float64) *entity.Location {
	if lat == nil || lng == nil {
		return nil
	}
	return &entity.Location{Lat: *lat, Lng: *lng}
}

func (r propertyRequest) input() application.PropertyInput {
	return application.PropertyInput{
		Title:          r.Title,
		Description:    r.Description,
		Type:           entity.PropertyType(r.Type),
		Gender:         r.Gender,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		Pincode:        r.Pincode,
		Location:       location(r.Lat, r.Lng),
		Price:          r.Price,
		Deposit:        r.Deposit,
		Amenities:      r.Amenities,
		Images:         r.Images,
		RoomsAvailable: r.RoomsAvailable,
	}
}

func (r propertyPatchRequest) patch() application.PropertyPatch {
	p := application.PropertyPatch{
		Title:          r.Title,
		Description:    r.Description,
		Gender:         r.Gender,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		Pincode:        r.Pincode,
		Location:       location(r.Lat, r.Lng),
		Price:          r.Price,
		Deposit:        r.Deposit,
		Amenities:      r.Amenities,
		RoomsAvailable: r.RoomsAvailable,
	}
	if r.Type != nil {
		t := entity.PropertyType(*r.Type)
		p.Type = &t
	}
	return p
}

// Create POST /api/properties
func (h *PropertyHandler) Create(c *gin.Context) {
	var req propertyRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), actorFrom(c), req.input(), metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "property submitted for review", nil)
}

// List GET /api/properties
func (h *PropertyHandler) List(c *gin.Context) {
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
	response.Success(c, http.StatusOK, page.Items, "properties", pageMeta(f.Page, page.Total))
}

// Nearby GET /api/properties/nearby
func (h *PropertyHandler) Nearby(c *gin.Context) {
	var q nearbyQuery
	if !bindQuery(c, &q) {
		return
	}
	items, err := h.Svc.Nearby(c.Request.Context(), q.query())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "nearby properties", nil)
}

// Search GET /api/properties/search
func (h *PropertyHandler) Search(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.Svc.Search(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(items), "search results", pageMeta(page, total))
}

// Mine GET /api/properties/mine
func (h *PropertyHandler) Mine(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.Svc.Mine(c.Request.Context(), actorFrom(c), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(items), "my properties", pageMeta(page, total))
}

// Get GET /api/properties/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"), viewerFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "property", nil)
}

// Update PUT /api/properties/:id
func (h *PropertyHandler) Update(c *gin.Context) {
	var req propertyPatchRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), actorFrom(c), c.Param("id"), req.patch(), metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "property updated", nil)
}

// Delete DELETE /api/properties/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), actorFrom(c), c.Param("id"), metaFrom(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "property deleted", nil)
}

// AddImages POST /api/properties/:id/images (multipart field "images")
func (h *PropertyHandler) AddImages(c *gin.Context) {
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
