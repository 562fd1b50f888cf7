package public

import (
	"time"

	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/pricing"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CouponValidateRequest 优惠码校验请求
type CouponValidateRequest struct {
	CouponCode string                  `json:"coupon_code" binding:"required"`
	CartItems  []service.CartItemInput `json:"cart_items"`
	CartTotal  *decimal.Decimal        `json:"cart_total"`
	UserID     *uint                   `json:"user_id"`
}

// CouponCalculateRequest 按优惠券 ID 计算优惠请求
type CouponCalculateRequest struct {
	CartTotal    decimal.Decimal         `json:"cart_total"`
	ShippingCost decimal.Decimal         `json:"shipping_cost"`
	CartItems    []service.CartItemInput `json:"cart_items"`
}

type couponView struct {
	ID                  uint      `json:"id"`
	Code                string    `json:"code"`
	Type                string    `json:"type"`
	TypeLabel           string    `json:"type_label"`
	DiscountPercent     string    `json:"discount_percent"`
	MinQuantityRequired int       `json:"min_quantity_required"`
	MinCartTotal        *string   `json:"min_cart_total"`
	ValidFrom           time.Time `json:"valid_from"`
	ExpiresAt           time.Time `json:"expires_at"`
}

func newCouponView(coupon *models.Coupon) *couponView {
	if coupon == nil {
		return nil
	}
	var minCartTotal *string
	if coupon.MinCartTotal != nil {
		text := money(coupon.MinCartTotal.Decimal)
		minCartTotal = &text
	}
	return &couponView{
		ID:                  coupon.ID,
		Code:                coupon.Code,
		Type:                coupon.Type,
		TypeLabel:           pricing.CouponType(coupon.Type).Label(),
		DiscountPercent:     coupon.DiscountPercent.Decimal.StringFixed(2),
		MinQuantityRequired: coupon.MinQuantityRequired,
		MinCartTotal:        minCartTotal,
		ValidFrom:           coupon.ValidFrom,
		ExpiresAt:           coupon.ExpiresAt,
	}
}

// quantitiesOf 优惠券只统计明确给出的数量，缺省或非正数按 0 计
func quantitiesOf(items []service.CartItemInput) []int {
	quantities := make([]int, 0, len(items))
	for _, item := range items {
		quantities = append(quantities, max(item.Quantity, 0))
	}
	return quantities
}

// respondCouponRejected 优惠券未通过校验时返回原因
func respondCouponRejected(c *gin.Context, verdict pricing.Verdict, extra gin.H) {
	data := gin.H{
		"valid":   false,
		"message": verdict.Message,
	}
	for key, value := range extra {
		data[key] = value
	}
	response.ErrorWithData(c, response.CodeBadRequest, verdict.Message, data)
}

// ValidateCoupon 按优惠码校验优惠券
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req CouponValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CouponService.ValidateByCode(c.Request.Context(), service.CouponValidateInput{
		Code:       req.CouponCode,
		Quantities: quantitiesOf(req.CartItems),
		CartTotal:  req.CartTotal,
		UserID:     req.UserID,
	})
	if err != nil {
		respondCouponError(c, err)
		return
	}
	if !result.Verdict.Valid {
		respondCouponRejected(c, result.Verdict, nil)
		return
	}

	data := gin.H{
		"valid":         true,
		"message":       result.Verdict.Message,
		"coupon":        newCouponView(result.Coupon),
		"discount_type": result.TypeLabel,
	}
	if result.Discount != nil {
		data["discount_amount"] = money(result.Discount.Total())
		data["formatted_discount"] = pricing.FormatDiscount(result.Discount.Total())
		data["discount_breakdown"] = gin.H{
			"product_discount":  money(result.Discount.Product),
			"shipping_discount": money(result.Discount.Shipping),
			"shipping_cost":     money(decimal.Zero),
		}
	}
	response.SuccessWithMsg(c, result.Verdict.Message, data)
}

// CalculateCouponDiscount 按优惠券 ID 计算商品与运费优惠
func (h *Handler) CalculateCouponDiscount(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req CouponCalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CouponService.CalculateByID(c.Request.Context(), id, req.CartTotal, req.ShippingCost, quantitiesOf(req.CartItems))
	if err != nil {
		respondCouponError(c, err)
		return
	}
	if !result.Verdict.Valid {
		respondCouponRejected(c, result.Verdict, gin.H{"discount": nil})
		return
	}
	requestLog(c).Debugw("coupon_discount_calculated",
		"coupon_id", result.Coupon.ID,
		"total_discount", result.Discount.Total().String(),
	)
	response.SuccessWithMsg(c, result.Verdict.Message, gin.H{
		"valid":   true,
		"message": result.Verdict.Message,
		"discount": gin.H{
			"product_discount":  money(result.Discount.Product),
			"shipping_discount": money(result.Discount.Shipping),
			"total_discount":    money(result.Discount.Total()),
		},
		"coupon": newCouponView(result.Coupon),
	})
}
