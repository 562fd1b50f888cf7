package admin

import (
	"strconv"
	"strings"

	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs 后台审计日志
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.AuditLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Scope:    c.Query("scope"),
		Action:   c.Query("action"),
	}
	var err error
	if filter.CreatedFrom, err = parseTimeNullable(c.Query("created_from")); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if filter.CreatedTo, err = parseTimeNullable(c.Query("created_to")); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	for name, target := range map[string]*uint{
		"resource_id":       &filter.ResourceID,
		"operator_admin_id": &filter.OperatorAdminID,
	} {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		value, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		*target = uint(value)
	}
	items, total, err := h.AuditService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, pagination(page, pageSize, total))
}

func (h *Handler) auditAuthz(c *gin.Context, entry service.AuditEntry) {
	entry.Scope = models.AuditScopeAuthz
	h.audit(c, entry)
}

// recordChange 记录配置类资源的增删改
func (h *Handler) recordChange(c *gin.Context, scope, action string, resourceID uint, detail models.JSON) {
	h.audit(c, service.AuditEntry{
		Scope:      scope,
		Action:     action,
		ResourceID: resourceID,
		Object:     c.FullPath(),
		Method:     c.Request.Method,
		Detail:     detail,
	})
}

// audit 补齐操作人后写入，失败只告警
func (h *Handler) audit(c *gin.Context, entry service.AuditEntry) {
	entry.OperatorAdminID = currentAdminID(c)
	entry.OperatorUsername = currentUsername(c)
	entry.RequestID = currentRequestID(c)
	requestLog(c).Infow("admin_change_recorded",
		"scope", entry.Scope,
		"action", entry.Action,
		"resource_id", entry.ResourceID,
		"operator_admin_id", entry.OperatorAdminID,
	)
	if h.AuditService == nil {
		return
	}
	if err := h.AuditService.Record(entry); err != nil {
		requestLog(c).Warnw("admin_audit_record_failed", "scope", entry.Scope, "action", entry.Action, "error", err)
	}
}
