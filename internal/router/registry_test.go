package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

type anonModule struct{}

func (anonModule) Register(*gin.RouterGroup) {}

func TestRegistryMountsUnderAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry(gin.New())
	reg.Add(pingModule{})
	reg.Add(anonModule{})
	names := reg.RegisterAll()

	if len(names) != 2 || names[0] != "ping" || names[1] != "router.anonModule" {
		t.Fatalf("names = %v", names)
	}

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/ping", http.StatusOK},
		{http.MethodGet, "/ping", http.StatusNotFound},
		{http.MethodPost, "/api/ping", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		reg.Engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.want {
			t.Errorf("%s %s: code = %d, want %d", tc.method, tc.path, w.Code, tc.want)
		}
		if tc.want != http.StatusOK {
			var body struct {
				Success bool `json:"success"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Success {
				t.Errorf("%s %s: body = %s", tc.method, tc.path, w.Body.String())
			}
		}
	}
}
