package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
	"github.com/AdityaShome/Secondhome-sub002/pkg/validation"
)

type listingQuery struct {
	City      string `form:"city"`
	Type      string `form:"type" binding:"omitempty,oneof=pg hostel flat room"`
	Gender    string `form:"gender" binding:"omitempty,oneof=boys girls coed"`
	MealTypes string `form:"meal_types" binding:"omitempty,oneof=veg nonveg both"`
	PriceMin  int64  `form:"price_min" binding:"omitempty,gte=0"`
	PriceMax  int64  `form:"price_max" binding:"omitempty,gte=0"`
	Amenities string `form:"amenities"` // comma-separated, all must match
	Q         string `form:"q" binding:"max=100"`
	Sort      string `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc"`
	Page      int    `form:"page" binding:"omitempty,gte=1"`
	Limit     int    `form:"limit" binding:"omitempty,gte=1"`
}

func (q listingQuery) filter() repo.ListingFilter {
	var amen []string
	for _, a := range strings.Split(q.Amenities, ",") {
		if a = strings.TrimSpace(a); a != "" {
			amen = append(amen, strings.ToLower(a))
		}
	}
	return repo.ListingFilter{
		City:      q.City,
		Type:      q.Type,
		Gender:    q.Gender,
		MealTypes: q.MealTypes,
		PriceMin:  q.PriceMin,
		PriceMax:  q.PriceMax,
		Amenities: amen,
		Q:         q.Q,
		Sort:      q.Sort,
		Page:      repo.Page{Page: q.Page, Limit: q.Limit}.Normalize(),
	}
}

type nearbyQuery struct {
	Lat      *float64 `form:"lat" binding:"required,latitude"`
	Lng      *float64 `form:"lng" binding:"required,longitude"`
	RadiusKm float64  `form:"radius_km" binding:"omitempty,gt=0"`
}

func (q nearbyQuery) query() application.NearbyQuery {
	return application.NearbyQuery{Lat: *q.Lat, Lng: *q.Lng, RadiusKm: q.RadiusKm}
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return false
	}
	return true
}
