package admin

import (
	"strings"

	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
)

func respondShippingAdminError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, shippingAdminErrorRules, response.CodeInternal, fallbackKey)
}

// ====================  配送方式  ====================

// ListShippingMethods 配送方式列表 (Admin)
func (h *Handler) ListShippingMethods(c *gin.Context) {
	page, pageSize := pageQuery(c)
	methods, total, err := h.ShippingAdminService.ListMethods(repository.ShippingMethodListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		IsActive: optionalBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, methods, pagination(page, pageSize, total))
}

// GetShippingMethod 配送方式详情（含阶梯）
func (h *Handler) GetShippingMethod(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	method, err := h.ShippingAdminService.GetMethod(id)
	if err != nil {
		respondShippingAdminError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, method)
}

// CreateShippingMethod 创建配送方式
func (h *Handler) CreateShippingMethod(c *gin.Context) {
	var req service.ShippingMethodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	method, err := h.ShippingAdminService.CreateMethod(c.Request.Context(), req)
	if err != nil {
		respondShippingAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "method_create", method.ID, models.JSON{"name": method.Name})
	response.Success(c, method)
}

// UpdateShippingMethod 更新配送方式
func (h *Handler) UpdateShippingMethod(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ShippingMethodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	method, err := h.ShippingAdminService.UpdateMethod(c.Request.Context(), id, req)
	if err != nil {
		respondShippingAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "method_update", id, models.JSON{"name": method.Name, "is_active": method.IsActive})
	response.Success(c, method)
}

// DeleteShippingMethod 删除配送方式
func (h *Handler) DeleteShippingMethod(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ShippingAdminService.DeleteMethod(c.Request.Context(), id); err != nil {
		respondShippingAdminError(c, err, "error.delete_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "method_delete", id, nil)
	response.Success(c, nil)
}

// ====================  运费阶梯  ====================

// ListShippingTiers 配送方式下的阶梯
func (h *Handler) ListShippingTiers(c *gin.Context) {
	methodID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tiers, err := h.ShippingAdminService.ListTiers(methodID)
	if err != nil {
		respondShippingAdminError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, tiers)
}

// CreateShippingTier 新增阶梯
func (h *Handler) CreateShippingTier(c *gin.Context) {
	methodID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ShippingTierInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	tier, err := h.ShippingAdminService.CreateTier(c.Request.Context(), methodID, req)
	if err != nil {
		respondShippingAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "tier_create", tier.ID, models.JSON{"method_id": methodID})
	response.Success(c, tier)
}

// UpdateShippingTier 更新阶梯
func (h *Handler) UpdateShippingTier(c *gin.Context) {
	id, ok := parseIDParam(c, "tier_id")
	if !ok {
		return
	}
	var req service.ShippingTierInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	tier, err := h.ShippingAdminService.UpdateTier(c.Request.Context(), id, req)
	if err != nil {
		respondShippingAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "tier_update", id, nil)
	response.Success(c, tier)
}

// DeleteShippingTier 删除阶梯
func (h *Handler) DeleteShippingTier(c *gin.Context) {
	id, ok := parseIDParam(c, "tier_id")
	if !ok {
		return
	}
	if err := h.ShippingAdminService.DeleteTier(c.Request.Context(), id); err != nil {
		respondShippingAdminError(c, err, "error.delete_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "tier_delete", id, nil)
	response.Success(c, nil)
}

// ====================  配送分类  ====================

// ListShippingCategories 配送分类列表
func (h *Handler) ListShippingCategories(c *gin.Context) {
	categories, err := h.ShippingAdminService.ListCategories()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// GetShippingCategory 配送分类详情
func (h *Handler) GetShippingCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.ShippingAdminService.GetCategory(id)
	if err != nil {
		respondShippingAdminError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, category)
}

// CreateShippingCategory 创建配送分类
func (h *Handler) CreateShippingCategory(c *gin.Context) {
	var req service.ShippingCategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.ShippingAdminService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondShippingAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "category_create", category.ID, models.JSON{"name": category.Name})
	response.Success(c, category)
}

// UpdateShippingCategory 更新配送分类及允许的配送方式
func (h *Handler) UpdateShippingCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ShippingCategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.ShippingAdminService.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondShippingAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "category_update", id, models.JSON{"name": category.Name})
	response.Success(c, category)
}

// DeleteShippingCategory 删除配送分类
func (h *Handler) DeleteShippingCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ShippingAdminService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondShippingAdminError(c, err, "error.delete_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "category_delete", id, nil)
	response.Success(c, nil)
}

// ====================  免运费规则  ====================

// ListFreeShippingRules 免运费规则列表
func (h *Handler) ListFreeShippingRules(c *gin.Context) {
	rules, err := h.ShippingAdminService.ListFreeRules()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, rules)
}

// CreateFreeShippingRule 创建免运费规则
func (h *Handler) CreateFreeShippingRule(c *gin.Context) {
	var req service.FreeShippingRuleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rule, err := h.ShippingAdminService.CreateFreeRule(c.Request.Context(), req)
	if err != nil {
		respondShippingAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "free_rule_create", rule.ID, models.JSON{"name": rule.Name})
	response.Success(c, rule)
}

// UpdateFreeShippingRule 更新免运费规则
func (h *Handler) UpdateFreeShippingRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.FreeShippingRuleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rule, err := h.ShippingAdminService.UpdateFreeRule(c.Request.Context(), id, req)
	if err != nil {
		respondShippingAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "free_rule_update", id, models.JSON{"name": rule.Name, "active": rule.Active})
	response.Success(c, rule)
}

// DeleteFreeShippingRule 删除免运费规则
func (h *Handler) DeleteFreeShippingRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ShippingAdminService.DeleteFreeRule(c.Request.Context(), id); err != nil {
		respondShippingAdminError(c, err, "error.delete_failed")
		return
	}
	h.recordChange(c, models.AuditScopeShipping, "free_rule_delete", id, nil)
	response.Success(c, nil)
}
