package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	"github.com/AdityaShome/Secondhome-sub002/internal/mocks"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newJWT() *helpers.JWTManager {
	return helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func echoActor(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"id": c.GetString("userID"), "role": c.GetString("userRole")})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	r := gin.New()
	r.GET("/me", Auth(newJWT(), mocks.NewMockSessionStore(ctrl)), echoActor)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestAuthSessionChecks(t *testing.T) {
	jwt := newJWT()
	token, _, err := jwt.GenerateAccessToken("u1", "user", "sid-1")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	cases := []struct {
		name     string
		session  map[string]string
		err      error
		wantCode int
		wantRole string
	}{
		{"live session", map[string]string{"sid": "sid-1", "role": "owner"}, nil, http.StatusOK, "owner"},
		{"role falls back to claim", map[string]string{"sid": "sid-1"}, nil, http.StatusOK, "user"},
		{"replaced session", map[string]string{"sid": "sid-2", "role": "user"}, nil, http.StatusUnauthorized, ""},
		{"no session", map[string]string{}, nil, http.StatusUnauthorized, ""},
		{"redis error", nil, errors.New("connection refused"), http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			sessions := mocks.NewMockSessionStore(ctrl)
			sessions.EXPECT().Get(gomock.Any(), "u1").Return(tc.session, tc.err)

			r := gin.New()
			r.GET("/me", Auth(jwt, sessions), echoActor)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			w := serve(r, req)
			if w.Code != tc.wantCode {
				t.Fatalf("code = %d body = %s", w.Code, w.Body.String())
			}
			if tc.wantRole != "" && !strings.Contains(w.Body.String(), `"role":"`+tc.wantRole+`"`) {
				t.Fatalf("body = %s", w.Body.String())
			}
		})
	}
}

func TestAuthReadsCookie(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	jwt := newJWT()
	token, _, _ := jwt.GenerateAccessToken("u1", "user", "sid-1")
	sessions := mocks.NewMockSessionStore(ctrl)
	sessions.EXPECT().Get(gomock.Any(), "u1").Return(map[string]string{"sid": "sid-1"}, nil)

	r := gin.New()
	r.GET("/me", Auth(jwt, sessions), echoActor)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: token})

	if w := serve(r, req); w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	r := gin.New()
	r.GET("/list", OptionalAuth(newJWT(), mocks.NewMockSessionStore(ctrl)), echoActor)

	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := serve(r, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":""`) {
		t.Fatalf("code = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	withRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set("userRole", role) }
	}
	for role, want := range map[string]int{"admin": http.StatusOK, "owner": http.StatusOK, "user": http.StatusForbidden, "": http.StatusForbidden} {
		r := gin.New()
		r.GET("/x", withRole(role), RequireRole(entity.RoleOwner, entity.RoleAdmin), echoActor)
		if w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)); w.Code != want {
			t.Errorf("role %q: code = %d, want %d", role, w.Code, want)
		}
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, id)
	w := serve(r, req)
	if w.Body.String() != id || w.Header().Get(RequestIDHeader) != id {
		t.Fatalf("got %q / %q", w.Body.String(), w.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = serve(r, req)
	if _, err := uuid.Parse(w.Body.String()); err != nil {
		t.Fatalf("generated id %q is not a uuid", w.Body.String())
	}
}

func TestPrivateOnly(t *testing.T) {
	cases := []struct {
		name       string
		trustProxy bool
		remote     string
		xff        string
		want       int
	}{
		{"loopback socket", false, "127.0.0.1:5555", "", http.StatusOK},
		{"public socket", false, "203.0.113.9:5555", "", http.StatusNotFound},
		{"spoofed header ignored", false, "203.0.113.9:5555", "127.0.0.1", http.StatusNotFound},
		{"trusted proxy public client", true, "10.0.0.2:5555", "203.0.113.9, 10.0.0.2", http.StatusNotFound},
		{"trusted proxy private client", true, "10.0.0.2:5555", "192.168.1.4", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RealIP(tc.trustProxy))
			r.GET("/debug/vars", PrivateOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if w := serve(r, req); w.Code != tc.want {
				t.Fatalf("code = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		if w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)); w.Code != http.StatusNoContent {
			t.Fatalf("request %d: code = %d", i, w.Code)
		}
	}
}

func TestKeyByUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("real_ip", "198.51.100.7")
	if got := KeyByUserID()(c); got != "rl:user:anon:ip:198.51.100.7" {
		t.Fatalf("anon key = %q", got)
	}
	c.Set("userID", "u1")
	if got := KeyByUserID()(c); got != "rl:user:u1" {
		t.Fatalf("user key = %q", got)
	}
}
