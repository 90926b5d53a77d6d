package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
)

type AdminHandler struct {
	Admin      *application.AdminService
	Properties *application.PropertyService
	Messes     *application.MessService
	Logger     *logrus.Logger
}

func NewAdminHandler(admin *application.AdminService, props *application.PropertyService, messes *application.MessService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Admin: admin, Properties: props, Messes: messes, Logger: logger}
}

type pendingQuery struct {
	Type string `form:"type" binding:"omitempty,oneof=property mess"`
}

type userListQuery struct {
	Role string `form:"role" binding:"omitempty,oneof=user owner admin"`
	Q    string `form:"q" binding:"max=100"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=user owner admin"`
}

type auditQuery struct {
	UserID string `form:"user_id" binding:"omitempty,objectid"`
	Action string `form:"action" binding:"max=64"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// PendingListings GET /api/admin/listings/pending?type=property|mess
func (h *AdminHandler) PendingListings(c *gin.Context) {
	var q pendingQuery
	if !bindQuery(c, &q) {
		return
	}
	page := pageFrom(c)
	ctx := c.Request.Context()
	if entity.ListingKind(q.Type) == entity.KindMess {
		items, total, err := h.Messes.ListByStatus(ctx, entity.ListingPending, page)
		if err != nil {
			fail(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusOK, emptyIfNil(items), "pending messes", pageMeta(page, total))
		return
	}
	items, total, err := h.Properties.ListByStatus(ctx, entity.ListingPending, page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(items), "pending properties", pageMeta(page, total))
}

func (h *AdminHandler) moderation(c *gin.Context, approve bool) (application.Moderation, bool) {
	m := application.Moderation{Approve: approve}
	if approve {
		return m, true
	}
	var req reasonRequest
	if !bind(c, &req) {
		return m, false
	}
	m.Reason = req.Reason
	return m, true
}

func (h *AdminHandler) moderateProperty(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := h.moderation(c, approve)
		if !ok {
			return
		}
		p, err := h.Properties.Moderate(c.Request.Context(), actorFrom(c), c.Param("id"), m, metaFrom(c))
		if err != nil {
			fail(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusOK, p, "property "+string(p.Status), nil)
	}
}

func (h *AdminHandler) moderateMess(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := h.moderation(c, approve)
		if !ok {
			return
		}
		ms, err := h.Messes.Moderate(c.Request.Context(), actorFrom(c), c.Param("id"), m, metaFrom(c))
		if err != nil {
			fail(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusOK, ms, "mess "+string(ms.Status), nil)
	}
}

// ApproveProperty POST /api/admin/properties/:id/approve
func (h *AdminHandler) ApproveProperty(c *gin.Context) { h.moderateProperty(true)(c) }

// RejectProperty POST /api/admin/properties/:id/reject
func (h *AdminHandler) RejectProperty(c *gin.Context) { h.moderateProperty(false)(c) }

// ApproveMess POST /api/admin/messes/:id/approve
func (h *AdminHandler) ApproveMess(c *gin.Context) { h.moderateMess(true)(c) }

// RejectMess POST /api/admin/messes/:id/reject
func (h *AdminHandler) RejectMess(c *gin.Context) { h.moderateMess(false)(c) }

// ReviewProperty POST /api/admin/properties/:id/ai-review
func (h *AdminHandler) ReviewProperty(c *gin.Context) {
	r, err := h.Properties.RunAIReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, r, "ai review stored", nil)
}

// ReviewMess POST /api/admin/messes/:id/ai-review
func (h *AdminHandler) ReviewMess(c *gin.Context) {
	r, err := h.Messes.RunAIReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, r, "ai review stored", nil)
}

// Users GET /api/admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	var q userListQuery
	if !bindQuery(c, &q) {
		return
	}
	page := pageFrom(c)
	users, total, err := h.Admin.ListUsers(c.Request.Context(), repo.UserFilter{Role: entity.Role(q.Role), Q: q.Q, Page: page})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(users), "users", pageMeta(page, total))
}

func (h *AdminHandler) setBanned(c *gin.Context, banned bool) {
	u, err := h.Admin.SetBanned(c.Request.Context(), actorFrom(c), c.Param("id"), banned, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	msg := "user unbanned"
	if banned {
		msg = "user banned"
	}
	response.Success(c, http.StatusOK, u, msg, nil)
}

// Ban POST /api/admin/users/:id/ban
func (h *AdminHandler) Ban(c *gin.Context) { h.setBanned(c, true) }

// Unban POST /api/admin/users/:id/unban
func (h *AdminHandler) Unban(c *gin.Context) { h.setBanned(c, false) }

// SetRole PUT /api/admin/users/:id/role
func (h *AdminHandler) SetRole(c *gin.Context) {
	var req roleRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.Admin.SetRole(c.Request.Context(), actorFrom(c), c.Param("id"), entity.Role(req.Role), metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "role updated", nil)
}

// Stats GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	st, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "platform stats", nil)
}

// Audit GET /api/admin/audit
func (h *AdminHandler) Audit(c *gin.Context) {
	var q auditQuery
	if !bindQuery(c, &q) {
		return
	}
	logs, err := h.Admin.AuditTrail(c.Request.Context(), repo.AuditFilter{UserID: q.UserID, Action: q.Action, Limit: q.Limit})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(logs), "audit trail", nil)
}
