package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

//go:generate mockgen -destination=../../internal/mocks/geo_mocks.go -package=mocks github.com/AdityaShome/Secondhome-sub002/pkg/geo Geocoder

const earthRadiusKm = 6371

var ErrNotFound = errors.New("address not found")

// DistanceKm returns the great-circle distance between two points (Haversine).
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// BoundingBox returns the lat/lng window that contains every point within
// radiusKm of the center. Used to narrow the database query before Haversine.
func BoundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	angular := radiusKm / earthRadiusKm
	dLat := angular * 180 / math.Pi
	dLng := 180.0
	if s := math.Sin(angular) / math.Cos(lat*math.Pi/180); s < 1 {
		dLng = math.Asin(s) * 180 / math.Pi
	}
	return lat - dLat, lat + dLat, lng - dLng, lng + dLng
}

// Geocoder resolves a free-form address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

// Nominatim queries an OpenStreetMap Nominatim instance.
type Nominatim struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

func NewNominatim(baseURL, userAgent string) *Nominatim {
	return &Nominatim{
		Client:    &http.Client{Timeout: 5 * time.Second},
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
	}
}

func (n *Nominatim) Geocode(ctx context.Context, address string) (float64, float64, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, 0, ErrNotFound
	}
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}
	// Nominatim usage policy requires an identifying agent
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var places []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return 0, 0, fmt.Errorf("geocode: decode: %w", err)
	}
	if len(places) == 0 {
		return 0, 0, ErrNotFound
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: bad lat: %w", err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: bad lon: %w", err)
	}
	return lat, lng, nil
}

var _ Geocoder = (*Nominatim)(nil)
