package admin

import (
	"errors"
	"strings"

	"github.com/shipping-engine/internal/cache"
	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
)

type createAdminPayload struct {
	Username string   `json:"username" binding:"required,min=3,max=64"`
	Password string   `json:"password" binding:"required"`
	IsSuper  bool     `json:"is_super"`
	Roles    []string `json:"roles"`
}

// ListAdmins 管理员及其角色
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	items := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admin.ID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_unavailable", err)
			return
		}
		items = append(items, gin.H{
			"id":            admin.ID,
			"username":      admin.Username,
			"is_super":      admin.IsSuper,
			"last_login_at": admin.LastLoginAt,
			"created_at":    admin.CreatedAt,
			"roles":         roles,
		})
	}
	response.Success(c, items)
}

// CreateAdmin 创建管理员，可同时分配角色
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req createAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if strings.ContainsAny(username, " \t\r\n") {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	existing, err := h.AdminRepo.GetByUsername(username)
	if err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	if existing != nil {
		respondError(c, response.CodeConflict, "error.admin_exists", nil)
		return
	}
	if err := h.AuthService.ValidatePassword(req.Password); err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			respondPasswordPolicyError(c, err)
			return
		}
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	hash, err := h.AuthService.HashPassword(req.Password)
	if err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}

	admin := &models.Admin{Username: username, PasswordHash: hash, IsSuper: req.IsSuper}
	if err := h.AdminRepo.Create(admin); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondError(c, response.CodeBadRequest, "error.role_invalid", err)
			return
		}
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))
	h.auditAuthz(c, service.AuditEntry{
		TargetAdminID: &admin.ID,
		Action:        "admin_create",
		Detail:        models.JSON{"username": admin.Username, "is_super": admin.IsSuper, "roles": req.Roles},
	})
	response.Success(c, admin)
}

// DeleteAdmin 删除管理员，不允许删除自己或最后一个管理员
func (h *Handler) DeleteAdmin(c *gin.Context) {
	admin, ok := h.loadTargetAdmin(c)
	if !ok {
		return
	}
	if currentAdminID(c) == admin.ID {
		respondError(c, response.CodeBadRequest, "error.admin_self_delete", nil)
		return
	}
	count, err := h.AdminRepo.Count()
	if err != nil {
		respondError(c, response.CodeInternal, "error.delete_failed", err)
		return
	}
	if count <= 1 {
		respondError(c, response.CodeBadRequest, "error.admin_self_delete", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(admin.ID, []string{}); err != nil {
		respondError(c, response.CodeInternal, "error.delete_failed", err)
		return
	}
	if err := h.AdminRepo.Delete(admin.ID); err != nil {
		respondError(c, response.CodeInternal, "error.delete_failed", err)
		return
	}
	_ = cache.DelAdminAuthState(c.Request.Context(), admin.ID)
	h.auditAuthz(c, service.AuditEntry{
		TargetAdminID: &admin.ID,
		Action:        "admin_delete",
		Detail:        models.JSON{"username": admin.Username},
	})
	response.Success(c, nil)
}
