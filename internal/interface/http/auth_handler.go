package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
	"github.com/AdityaShome/Secondhome-sub002/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Role     string `json:"role" binding:"omitempty,oneof=user owner"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type phoneRequest struct {
	Phone string `json:"phone" binding:"required,phone"`
}

type phoneCodeRequest struct {
	Phone string `json:"phone" binding:"required,phone"`
	Code  string `json:"code" binding:"required,numeric,min=4,max=8"`
}

type codeRequest struct {
	Code string `json:"code" binding:"required,numeric,min=4,max=8"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,numeric,min=4,max=8"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

// session sets cookies and returns the token pair for bearer clients too.
func (h *AuthHandler) session(c *gin.Context, u *entity.User, pair application.TokenPair, msg string) {
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":          u,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, msg, map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     entity.Role(req.Role),
	}, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "registered; verification code sent", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.session(c, u, pair, "login successful")
}

// LoginOTPInit POST /api/auth/login/otp/init
func (h *AuthHandler) LoginOTPInit(c *gin.Context) {
	var req phoneRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.StartPhoneLogin(c.Request.Context(), req.Phone); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "if the number is registered a code was sent", nil)
}

// LoginOTPConfirm POST /api/auth/login/otp/confirm
func (h *AuthHandler) LoginOTPConfirm(c *gin.Context) {
	var req phoneCodeRequest
	if !bind(c, &req) {
		return
	}
	u, pair, err := h.Svc.ConfirmPhoneLogin(c.Request.Context(), req.Phone, req.Code, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.session(c, u, pair, "login successful")
}

// Refresh POST /api/auth/refresh. The refresh cookie wins over the body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshCookie)
	if token == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	u, pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.session(c, u, pair, "token refreshed")
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), c.GetString("userID"), metaFrom(c)); err != nil {
		h.Logger.WithError(err).Warn("session delete failed on logout")
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// VerifyEmailInit POST /api/auth/verify/email/init
func (h *AuthHandler) VerifyEmailInit(c *gin.Context) {
	exp, err := h.Svc.StartEmailVerification(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"expires_at": exp}, "verification code sent", nil)
}

// VerifyEmailConfirm POST /api/auth/verify/email/confirm
func (h *AuthHandler) VerifyEmailConfirm(c *gin.Context) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.Svc.ConfirmEmailVerification(c.Request.Context(), c.GetString("userID"), req.Code)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "email verified", nil)
}

// VerifyPhoneInit POST /api/auth/verify/phone/init
func (h *AuthHandler) VerifyPhoneInit(c *gin.Context) {
	var req phoneRequest
	if !bind(c, &req) {
		return
	}
	exp, err := h.Svc.StartPhoneVerification(c.Request.Context(), c.GetString("userID"), req.Phone)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"expires_at": exp}, "verification code sent", nil)
}

// VerifyPhoneConfirm POST /api/auth/verify/phone/confirm
func (h *AuthHandler) VerifyPhoneConfirm(c *gin.Context) {
	var req phoneCodeRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.Svc.ConfirmPhoneVerification(c.Request.Context(), c.GetString("userID"), req.Phone, req.Code)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "phone verified", nil)
}

// ForgotPassword POST /api/auth/password/forgot. Always 200.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.Logger.WithError(err).Error("forgot password failed")
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "if the address is registered a reset code was sent", nil)
}

// ResetPassword POST /api/auth/password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword, metaFrom(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}
