package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	// Connaught Place to India Gate, New Delhi
	d := DistanceKm(28.6315, 77.2167, 28.6129, 77.2295)
	if d < 2.3 || d > 2.5 {
		t.Fatalf("distance = %v km", d)
	}
	if got := DistanceKm(12.97, 77.59, 12.97, 77.59); got != 0 {
		t.Fatalf("same point distance = %v", got)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(2.34567); got != 2.35 {
		t.Fatalf("got %v", got)
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	lat, lng, r := 19.076, 72.8777, 5.0
	minLat, maxLat, minLng, maxLng := BoundingBox(lat, lng, r)
	if DistanceKm(lat, lng, maxLat, lng) < r-0.01 || DistanceKm(lat, lng, minLat, lng) < r-0.01 {
		t.Fatal("latitude window too small")
	}
	if DistanceKm(lat, lng, lat, maxLng) < r-0.01 || DistanceKm(lat, lng, lat, minLng) < r-0.01 {
		t.Fatal("longitude window too small")
	}
}

func TestNominatimGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.URL.Query().Get("q") != "Koramangala, Bengaluru" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("missing user agent")
		}
		_, _ = w.Write([]byte(`[{"lat":"12.9352","lon":"77.6245"}]`))
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL, "test-agent")
	lat, lng, err := n.Geocode(context.Background(), "Koramangala, Bengaluru")
	if err != nil {
		t.Fatal(err)
	}
	if lat != 12.9352 || lng != 77.6245 {
		t.Fatalf("got %v,%v", lat, lng)
	}
}

func TestNominatimNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, _, err := NewNominatim(srv.URL, "ua").Geocode(context.Background(), "nowhere")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
