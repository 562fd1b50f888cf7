package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/i18n"
	"github.com/shipping-engine/internal/pricing"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CartRequest 购物车配送分析请求
type CartRequest struct {
	CartItems []service.CartItemInput `json:"cart_items"`
}

type cartAnalysisView struct {
	Items                   []lineItemView `json:"items"`
	Subtotal                string         `json:"subtotal"`
	FormattedSubtotal       string         `json:"formatted_subtotal"`
	TotalQuantity           int            `json:"total_quantity"`
	TotalWeight             string         `json:"total_weight"`
	ShippingCategoriesCount int            `json:"shipping_categories_count"`
	ShippingCategoryIDs     []uint         `json:"shipping_category_ids"`
}

type shippingAnalysisView struct {
	RequiresSplitShipping bool               `json:"requires_split_shipping"`
	AvailableMethodsCount int                `json:"available_methods_count"`
	AvailableMethods      []pricedMethodView `json:"available_methods"`
	FreeShippingEligible  bool               `json:"free_shipping_eligible"`
	QualifyingFreeRule    *freeRuleView      `json:"qualifying_free_rule"`
	ConstraintViolations  []violationView    `json:"constraint_violations"`
}

type recommendationsView struct {
	CanSingleShipment       bool              `json:"can_single_shipment"`
	OptimalMethod           *pricedMethodView `json:"optimal_method"`
	SavingsWithFreeShipping *string           `json:"savings_with_free_shipping"`
}

type cartShippingView struct {
	CartAnalysis     cartAnalysisView          `json:"cart_analysis"`
	ShippingAnalysis shippingAnalysisView      `json:"shipping_analysis"`
	Recommendations  recommendationsView       `json:"recommendations"`
	MissingProducts  []string                  `json:"missing_products"`
	InvalidItems     []service.InvalidCartItem `json:"invalid_items"`
	Partial          bool                      `json:"partial"`
}

func newCartAnalysisView(cart pricing.CartAnalysis) cartAnalysisView {
	ids := cart.CategoryIDs
	if ids == nil {
		ids = make([]uint, 0)
	}
	return cartAnalysisView{
		Items:                   newLineItemViews(cart.Items),
		Subtotal:                money(cart.Subtotal),
		FormattedSubtotal:       pricing.FormatBDT(cart.Subtotal, true),
		TotalQuantity:           cart.TotalQuantity,
		TotalWeight:             weightText(cart.TotalWeight),
		ShippingCategoriesCount: len(ids),
		ShippingCategoryIDs:     ids,
	}
}

func newCartShippingView(result *service.CartShippingResult) cartShippingView {
	methods := newPricedMethodViews(result.Shipping.Methods)
	rec := recommendationsView{
		CanSingleShipment:       result.Recommendations.CanSingleShipment,
		SavingsWithFreeShipping: optionalMoney(result.Recommendations.SavingsWithFreeShipping),
	}
	if result.Recommendations.OptimalMethod != nil {
		optimal := newPricedMethodView(*result.Recommendations.OptimalMethod)
		rec.OptimalMethod = &optimal
	}
	missing := result.Cart.Missing
	if missing == nil {
		missing = make([]string, 0)
	}
	invalid := result.InvalidItems
	if invalid == nil {
		invalid = make([]service.InvalidCartItem, 0)
	}
	return cartShippingView{
		CartAnalysis: newCartAnalysisView(result.Cart),
		ShippingAnalysis: shippingAnalysisView{
			RequiresSplitShipping: result.Shipping.RequiresSplit,
			AvailableMethodsCount: len(methods),
			AvailableMethods:      methods,
			FreeShippingEligible:  result.Shipping.FreeShipping.Eligible,
			QualifyingFreeRule:    optionalFreeRuleView(result.Shipping.FreeShipping.Rule),
			ConstraintViolations:  newViolationViews(result.Shipping.Violations),
		},
		Recommendations: rec,
		MissingProducts: missing,
		InvalidItems:    invalid,
		Partial:         result.Cart.Partial(),
	}
}

// respondAnalyzeError 无合法商品 ID 时附带非法条目
func respondAnalyzeError(c *gin.Context, err error) {
	var invalid *service.InvalidCartItemsError
	if errors.As(err, &invalid) {
		locale := i18n.ResolveLocale(c)
		response.ErrorWithData(c, response.CodeBadRequest, i18n.T(locale, "error.no_valid_products"), gin.H{
			"invalid_items": invalid.Items,
		})
		return
	}
	respondCartError(c, err)
}

// AnalyzeCartShipping 分析购物车的可用配送方式与免运费资格
func (h *Handler) AnalyzeCartShipping(c *gin.Context) {
	var req CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CartShippingService.AnalyzeCart(c.Request.Context(), req.CartItems)
	if err != nil {
		respondAnalyzeError(c, err)
		return
	}
	response.Success(c, newCartShippingView(result))
}

// ListShippingMethods 启用的配送方式列表
func (h *Handler) ListShippingMethods(c *gin.Context) {
	methods, err := h.CartShippingService.ActiveMethods(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	views := make([]methodView, 0, len(methods))
	for _, method := range methods {
		views = append(views, newMethodView(method))
	}
	response.Success(c, views)
}

// GetShippingMethod 配送方式详情
func (h *Handler) GetShippingMethod(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	method, err := h.CartShippingService.ActiveMethod(c.Request.Context(), id)
	if err != nil {
		respondShippingQuoteError(c, err)
		return
	}
	response.Success(c, newMethodView(*method))
}

// MethodsForCart 按数量、重量与分类查询可用配送方式
func (h *Handler) MethodsForCart(c *gin.Context) {
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	weight, err := decimal.NewFromString(c.DefaultQuery("weight", "0"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CartShippingService.MethodsForCart(c.Request.Context(), quantity, weight, c.QueryArray("category_ids"))
	if err != nil {
		respondShippingQuoteError(c, err)
		return
	}
	methods := newPricedMethodViews(result.Resolution.Methods)
	response.Success(c, gin.H{
		"quantity":                result.Quantity,
		"weight":                  weightText(result.Weight),
		"category_ids":            result.CategoryIDs,
		"ignored_category_ids":    result.IgnoredCategories,
		"available_methods":       methods,
		"methods_count":           len(methods),
		"requires_split_shipping": result.Resolution.RequiresSplit,
		"constraint_violations":   newViolationViews(result.Resolution.Violations),
	})
}

// PriceForCart 计算指定配送方式的报价
func (h *Handler) PriceForCart(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	weight, err := decimal.NewFromString(c.DefaultQuery("weight", "0"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	quote, err := h.CartShippingService.PriceForCart(c.Request.Context(), id, quantity, weight, c.Query("pricing_type"))
	if err != nil {
		respondShippingQuoteError(c, err)
		return
	}

	method := quote.Method
	quantityTiers := method.TiersOf(pricing.PricingQuantity)
	weightTiers := method.TiersOf(pricing.PricingWeight)
	var pricingTypeUsed *string
	if quote.PricingTypeUsed != nil {
		used := string(*quote.PricingTypeUsed)
		pricingTypeUsed = &used
	}
	var tierApplied *tierView
	if quote.Tier != nil {
		view := newTierView(*quote.Tier)
		tierApplied = &view
	}
	response.Success(c, gin.H{
		"shipping_method":        newMethodView(method),
		"quantity":               quote.Quantity,
		"weight":                 weightText(quote.Weight),
		"pricing_type_used":      pricingTypeUsed,
		"preferred_pricing_type": string(method.PreferredPricingType),
		"price":                  optionalMoney(quote.Price),
		"base_price":             money(method.Price),
		"constraints_met":        quote.ConstraintsMet,
		"constraint_errors":      quote.ConstraintErrors,
		"has_quantity_tiers":     len(quantityTiers) > 0,
		"has_weight_tiers":       len(weightTiers) > 0,
		"max_quantity":           method.MaxQuantity,
		"max_weight":             optionalWeight(method.MaxWeight),
		"quantity_tiers":         newTierViews(quantityTiers),
		"weight_tiers":           newTierViews(weightTiers),
		"tier_applied":           tierApplied,
		"pricing_explanation":    quote.Explanation,
	})
}

// ListFreeShippingRules 启用的免运费规则
func (h *Handler) ListFreeShippingRules(c *gin.Context) {
	rules, err := h.CartShippingService.ActiveFreeRules(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	views := make([]freeRuleView, 0, len(rules))
	for _, rule := range rules {
		views = append(views, newFreeRuleView(rule))
	}
	response.Success(c, views)
}

// CheckFreeShippingEligibility 按金额与分类判断是否免运费
func (h *Handler) CheckFreeShippingEligibility(c *gin.Context) {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.Query("amount")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}
	var categoryID *uint
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		value, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		id := uint(value)
		categoryID = &id
	}

	decision, category, err := h.CartShippingService.CheckEligibility(c.Request.Context(), amount, categoryID)
	if err != nil {
		respondShippingQuoteError(c, err)
		return
	}
	var categoryName *string
	if category != nil {
		categoryName = &category.Name
	}
	response.Success(c, gin.H{
		"qualifies_for_free_shipping": decision.Eligible,
		"qualifying_rule":             optionalFreeRuleView(decision.Rule),
		"amount":                      money(amount),
		"shipping_category":           categoryName,
	})
}

// ListShippingCategories 配送分类及其允许的配送方式
func (h *Handler) ListShippingCategories(c *gin.Context) {
	categories, err := h.CartShippingService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	views := make([]categoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, newCategoryView(category))
	}
	response.Success(c, views)
}

// CurrencyInfo 货币展示信息
func (h *Handler) CurrencyInfo(c *gin.Context) {
	response.Success(c, pricing.GetCurrencyInfo())
}
