package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
)

// identify resolves the caller from the access token (header or cookie) and
// the Redis session. The token's sid must match the live session.
func identify(c *gin.Context, jwt *helpers.JWTManager, sessions application.SessionStore) (int, string) {
	token := helpers.AccessToken(c)
	if token == "" {
		return http.StatusUnauthorized, "missing access token"
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return http.StatusUnauthorized, "invalid access token"
	}
	data, err := sessions.Get(c.Request.Context(), claims.UserID)
	if err != nil || len(data) == 0 {
		return http.StatusUnauthorized, "session not found"
	}
	if data["sid"] != claims.SessionID {
		return http.StatusUnauthorized, "session expired"
	}

	role := data["role"]
	if role == "" {
		role = claims.Role
	}
	c.Set("userID", claims.UserID) // required by handlers
	c.Set("userRole", role)
	c.Set("userName", data["name"])
	c.Set("userEmail", data["email"])
	return 0, ""
}

// Auth rejects requests without a valid token and live session.
// It sets userID, userRole, userName and userEmail in the Gin context.
func Auth(jwt *helpers.JWTManager, sessions application.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if status, msg := identify(c, jwt, sessions); status != 0 {
			response.Error[any](c, status, msg, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when possible and never rejects.
func OptionalAuth(jwt *helpers.JWTManager, sessions application.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if helpers.AccessToken(c) != "" {
			_, _ = identify(c, jwt, sessions)
		}
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.Role(c.GetString("userRole"))
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Error[any](c, http.StatusForbidden, "forbidden", nil)
		c.Abort()
	}
}
