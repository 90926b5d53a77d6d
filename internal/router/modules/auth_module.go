package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/container"
	handlers "github.com/AdityaShome/Secondhome-sub002/internal/interface/http"
	"github.com/AdityaShome/Secondhome-sub002/internal/interface/middleware"
)

// AuthModule registers account and session routes under /auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, auth gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	strict := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	confirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	g := rg.Group("/auth")
	g.POST("/register", loginLimiter, m.Handler.Register)
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.POST("/login/otp/init", strict, m.Handler.LoginOTPInit)
	g.POST("/login/otp/confirm", confirmLimiter, m.Handler.LoginOTPConfirm)
	g.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	g.POST("/password/forgot", strict, m.Handler.ForgotPassword)
	g.POST("/password/reset", confirmLimiter, m.Handler.ResetPassword)

	auth := g.Group("/")
	auth.Use(m.Auth)
	{
		userStrict := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByUserID(), nil)
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/verify/email/init", userStrict, m.Handler.VerifyEmailInit)
		auth.POST("/verify/email/confirm", confirmLimiter, m.Handler.VerifyEmailConfirm)
		auth.POST("/verify/phone/init", userStrict, m.Handler.VerifyPhoneInit)
		auth.POST("/verify/phone/confirm", confirmLimiter, m.Handler.VerifyPhoneConfirm)
	}
}
