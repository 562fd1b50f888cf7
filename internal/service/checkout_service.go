package service

import (
	"context"
	"strings"

	"github.com/shipping-engine/internal/config"
	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/obs"
	"github.com/shipping-engine/internal/pricing"

	"github.com/shopspring/decimal"
)

// CheckoutInput 结算试算输入
type CheckoutInput struct {
	Items                    []CartItemInput
	SelectedShippingMethodID string
	CouponCode               string
	UserID                   *uint
}

// CheckoutCoupon 结算中的优惠券信息
type CheckoutCoupon struct {
	Code             string
	Valid            bool
	Error            string
	Message          string
	TypeLabel        string
	DiscountPercent  decimal.Decimal
	ProductDiscount  decimal.Decimal
	ShippingDiscount decimal.Decimal
	TotalDiscount    decimal.Decimal
}

// CheckoutResult 结算试算结果
type CheckoutResult struct {
	Analysis      *CartShippingResult
	Selection     pricing.ShippingSelection
	Totals        pricing.Totals
	Coupon        *CheckoutCoupon
	Opportunities []pricing.SavingsOpportunity
	Warnings      []pricing.Warning
	Currency      string
}

// CheckoutService 结算试算服务
type CheckoutService struct {
	cartShipping *CartShippingService
	coupons      *CouponService
	currency     string
}

// NewCheckoutService 创建结算试算服务
func NewCheckoutService(cartShipping *CartShippingService, coupons *CouponService, cfg config.PricingConfig) *CheckoutService {
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = pricing.CurrencyCode
	}
	return &CheckoutService{
		cartShipping: cartShipping,
		coupons:      coupons,
		currency:     currency,
	}
}

// Calculate 计算运费、优惠与应付金额
func (s *CheckoutService) Calculate(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	ctx, span := obs.StartSpan(ctx, "checkout.calculate")
	defer span.End()

	analysis, err := s.cartShipping.AnalyzeCart(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	subtotal := analysis.Cart.Subtotal
	selection := pricing.SelectShipping(analysis.Shipping.Methods, strings.TrimSpace(input.SelectedShippingMethodID))

	result := &CheckoutResult{
		Analysis:      analysis,
		Selection:     selection,
		Opportunities: make([]pricing.SavingsOpportunity, 0),
		Warnings:      make([]pricing.Warning, 0),
		Currency:      s.currency,
	}

	var discount *pricing.Discount
	if code := strings.TrimSpace(input.CouponCode); code != "" {
		details, applied, err := s.applyCoupon(code, analysis, input.UserID, subtotal, selection.Cost)
		if err != nil {
			return nil, err
		}
		result.Coupon = details
		discount = applied
	}
	result.Totals = pricing.ComputeTotals(subtotal, selection.Cost, discount)

	if opportunity, ok := pricing.FreeShippingOpportunity(analysis.Snapshot.FreeRules, subtotal, analysis.Shipping.FreeShipping); ok {
		result.Opportunities = append(result.Opportunities, opportunity)
	}
	if warning, ok := pricing.SplitShippingWarning(analysis.Shipping.RequiresSplit); ok {
		result.Warnings = append(result.Warnings, warning)
	}
	s.cartShipping.metrics.IncQuote("checkout")
	return result, nil
}

func (s *CheckoutService) applyCoupon(code string, analysis *CartShippingResult, userID *uint, subtotal, shippingCost decimal.Decimal) (*CheckoutCoupon, *pricing.Discount, error) {
	coupon, err := s.coupons.lookupActive(code)
	if err != nil {
		return nil, nil, err
	}
	if coupon == nil {
		return &CheckoutCoupon{Code: code, Error: "Coupon not found or inactive"}, nil, nil
	}

	var user *pricing.UserFacts
	if userID != nil {
		facts, err := s.coupons.userFacts(*userID)
		if err != nil {
			return nil, nil, err
		}
		if facts == nil {
			logger.Debugw("checkout_coupon_user_not_found", "user_id", *userID)
		}
		user = facts
	}

	verdict, discount := s.coupons.evaluate(coupon, analysis.Cart.Quantities(), user, subtotal, shippingCost)
	if !verdict.Valid {
		return &CheckoutCoupon{Code: code, Error: verdict.Message}, nil, nil
	}
	return appliedCoupon(coupon, discount), discount, nil
}

func appliedCoupon(coupon *models.Coupon, discount *pricing.Discount) *CheckoutCoupon {
	return &CheckoutCoupon{
		Code:             coupon.Code,
		Valid:            true,
		Message:          "Coupon applied successfully",
		TypeLabel:        pricing.CouponType(coupon.Type).Label(),
		DiscountPercent:  coupon.DiscountPercent.Decimal,
		ProductDiscount:  discount.Product,
		ShippingDiscount: discount.Shipping,
		TotalDiscount:    discount.Total(),
	}
}
