package admin

import (
	"strings"

	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
)

func respondCouponAdminError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, couponAdminErrorRules, response.CodeInternal, fallbackKey)
}

// ListCoupons 优惠券列表
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := pageQuery(c)
	coupons, total, err := h.CouponAdminService.List(repository.CouponListFilter{
		Code:     strings.TrimSpace(c.Query("code")),
		Type:     strings.ToUpper(strings.TrimSpace(c.Query("type"))),
		Active:   optionalBoolQuery(c, "active"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, coupons, pagination(page, pageSize, total))
}

// GetCoupon 优惠券详情（含指定用户）
func (h *Handler) GetCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	coupon, err := h.CouponAdminService.Get(id)
	if err != nil {
		respondCouponAdminError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, coupon)
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req service.CouponAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponAdminService.Create(req)
	if err != nil {
		respondCouponAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeCoupon, "coupon_create", coupon.ID, models.JSON{"code": coupon.Code, "type": coupon.Type})
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.CouponAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponAdminService.Update(id, req)
	if err != nil {
		respondCouponAdminError(c, err, "error.save_failed")
		return
	}
	h.recordChange(c, models.AuditScopeCoupon, "coupon_update", id, models.JSON{"code": coupon.Code, "active": coupon.Active})
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CouponAdminService.Delete(id); err != nil {
		respondCouponAdminError(c, err, "error.delete_failed")
		return
	}
	h.recordChange(c, models.AuditScopeCoupon, "coupon_delete", id, nil)
	response.Success(c, nil)
}
