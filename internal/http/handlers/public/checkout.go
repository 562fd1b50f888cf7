package public

import (
	"errors"

	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/pricing"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算试算请求
type CheckoutRequest struct {
	CartItems                []service.CartItemInput `json:"cart_items"`
	SelectedShippingMethodID string                  `json:"selected_shipping_method_id"`
	CouponCode               string                  `json:"coupon_code"`
	UserID                   *uint                   `json:"user_id"`
}

type calculationSummaryView struct {
	CartSubtotal   string `json:"cart_subtotal"`
	TotalQuantity  int    `json:"total_quantity"`
	ShippingCost   string `json:"shipping_cost"`
	DiscountAmount string `json:"discount_amount"`
	FinalTotal     string `json:"final_total"`
	Currency       string `json:"currency"`
	FormattedTotal string `json:"formatted_total"`
}

type shippingDetailsView struct {
	AvailableMethods      []pricedMethodView `json:"available_methods"`
	SelectedMethod        *pricedMethodView  `json:"selected_method"`
	RequiresSplitShipping bool               `json:"requires_split_shipping"`
	FreeShippingEligible  bool               `json:"free_shipping_eligible"`
	QualifyingFreeRule    *freeRuleView      `json:"qualifying_free_rule"`
}

type couponDetailsView struct {
	Code             string  `json:"code"`
	Valid            bool    `json:"valid"`
	Error            string  `json:"error,omitempty"`
	Message          string  `json:"message,omitempty"`
	Type             string  `json:"type,omitempty"`
	DiscountPercent  *string `json:"discount_percent,omitempty"`
	ProductDiscount  *string `json:"product_discount,omitempty"`
	ShippingDiscount *string `json:"shipping_discount,omitempty"`
	TotalDiscount    *string `json:"total_discount,omitempty"`
}

type checkoutRecommendationsView struct {
	OptimalShipping      *pricedMethodView            `json:"optimal_shipping"`
	SavingsOpportunities []pricing.SavingsOpportunity `json:"savings_opportunities"`
	Warnings             []pricing.Warning            `json:"warnings"`
}

type checkoutView struct {
	Success            bool                        `json:"success"`
	CalculationSummary calculationSummaryView      `json:"calculation_summary"`
	CartDetails        cartAnalysisView            `json:"cart_details"`
	ShippingDetails    shippingDetailsView         `json:"shipping_details"`
	CouponDetails      *couponDetailsView          `json:"coupon_details"`
	Recommendations    checkoutRecommendationsView `json:"recommendations"`
	MissingProducts    []string                    `json:"missing_products"`
}

func newCouponDetailsView(coupon *service.CheckoutCoupon) *couponDetailsView {
	if coupon == nil {
		return nil
	}
	view := &couponDetailsView{
		Code:    coupon.Code,
		Valid:   coupon.Valid,
		Error:   coupon.Error,
		Message: coupon.Message,
	}
	if coupon.Valid {
		percent := coupon.DiscountPercent.StringFixed(2)
		product := money(coupon.ProductDiscount)
		shipping := money(coupon.ShippingDiscount)
		total := money(coupon.TotalDiscount)
		view.Type = coupon.TypeLabel
		view.DiscountPercent = &percent
		view.ProductDiscount = &product
		view.ShippingDiscount = &shipping
		view.TotalDiscount = &total
	}
	return view
}

func newCheckoutView(result *service.CheckoutResult) checkoutView {
	analysis := result.Analysis
	methods := newPricedMethodViews(analysis.Shipping.Methods)
	var selected *pricedMethodView
	if result.Selection.Method != nil {
		view := newPricedMethodView(*result.Selection.Method)
		selected = &view
	}
	var optimal *pricedMethodView
	if len(methods) > 0 {
		optimal = &methods[0]
	}
	missing := analysis.Cart.Missing
	if missing == nil {
		missing = make([]string, 0)
	}
	totals := result.Totals
	return checkoutView{
		Success: true,
		CalculationSummary: calculationSummaryView{
			CartSubtotal:   money(totals.Subtotal),
			TotalQuantity:  analysis.Cart.TotalQuantity,
			ShippingCost:   money(totals.ShippingCost),
			DiscountAmount: money(totals.ProductDiscount),
			FinalTotal:     money(totals.FinalTotal),
			Currency:       result.Currency,
			FormattedTotal: pricing.FormatBDT(totals.FinalTotal, true),
		},
		CartDetails: newCartAnalysisView(analysis.Cart),
		ShippingDetails: shippingDetailsView{
			AvailableMethods:      methods,
			SelectedMethod:        selected,
			RequiresSplitShipping: analysis.Shipping.RequiresSplit,
			FreeShippingEligible:  analysis.Shipping.FreeShipping.Eligible,
			QualifyingFreeRule:    optionalFreeRuleView(analysis.Shipping.FreeShipping.Rule),
		},
		CouponDetails: newCouponDetailsView(result.Coupon),
		Recommendations: checkoutRecommendationsView{
			OptimalShipping:      optimal,
			SavingsOpportunities: result.Opportunities,
			Warnings:             result.Warnings,
		},
		MissingProducts: missing,
	}
}

// EnhancedCheckout 结算试算：运费、优惠券与应付金额
func (h *Handler) EnhancedCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CheckoutService.Calculate(c.Request.Context(), service.CheckoutInput{
		Items:                    req.CartItems,
		SelectedShippingMethodID: req.SelectedShippingMethodID,
		CouponCode:               req.CouponCode,
		UserID:                   req.UserID,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoValidProducts) {
			respondAnalyzeError(c, err)
			return
		}
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, newCheckoutView(result))
}
