package public

import (
	"github.com/shipping-engine/internal/pricing"

	"github.com/shopspring/decimal"
)

func money(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func optionalMoney(value *decimal.Decimal) *string {
	if value == nil {
		return nil
	}
	text := money(*value)
	return &text
}

func weightText(value decimal.Decimal) string {
	return value.StringFixed(3)
}

func optionalWeight(value *decimal.Decimal) *string {
	if value == nil {
		return nil
	}
	text := weightText(*value)
	return &text
}

type tierView struct {
	ID                    uint    `json:"id"`
	PricingType           string  `json:"pricing_type"`
	MinQuantity           *int    `json:"min_quantity"`
	MaxQuantity           *int    `json:"max_quantity"`
	MinWeight             *string `json:"min_weight"`
	MaxWeight             *string `json:"max_weight"`
	BasePrice             string  `json:"base_price"`
	HasIncrementalPricing bool    `json:"has_incremental_pricing"`
	IncrementPerUnit      string  `json:"increment_per_unit"`
	IncrementUnitSize     string  `json:"increment_unit_size"`
	Priority              int     `json:"priority"`
}

func newTierView(tier pricing.Tier) tierView {
	return tierView{
		ID:                    tier.ID,
		PricingType:           string(tier.PricingType),
		MinQuantity:           tier.MinQuantity,
		MaxQuantity:           tier.MaxQuantity,
		MinWeight:             optionalWeight(tier.MinWeight),
		MaxWeight:             optionalWeight(tier.MaxWeight),
		BasePrice:             money(tier.BasePrice),
		HasIncrementalPricing: tier.HasIncrementalPricing,
		IncrementPerUnit:      money(tier.IncrementPerUnit),
		IncrementUnitSize:     weightText(tier.IncrementUnitSize),
		Priority:              tier.Priority,
	}
}

func newTierViews(tiers []pricing.Tier) []tierView {
	views := make([]tierView, 0, len(tiers))
	for _, tier := range tiers {
		views = append(views, newTierView(tier))
	}
	return views
}

type methodView struct {
	ID                    uint       `json:"id"`
	Name                  string     `json:"name"`
	Description           string     `json:"description"`
	Price                 string     `json:"price"`
	DeliveryEstimatedTime string     `json:"delivery_estimated_time"`
	MaxWeight             *string    `json:"max_weight"`
	MaxQuantity           *int       `json:"max_quantity"`
	PreferredPricingType  string     `json:"preferred_pricing_type"`
	IsActive              bool       `json:"is_active"`
	ShippingTiers         []tierView `json:"shipping_tiers"`
}

func newMethodView(method pricing.Method) methodView {
	return methodView{
		ID:                    method.ID,
		Name:                  method.Name,
		Description:           method.Description,
		Price:                 money(method.Price),
		DeliveryEstimatedTime: method.DeliveryEstimatedTime,
		MaxWeight:             optionalWeight(method.MaxWeight),
		MaxQuantity:           method.MaxQuantity,
		PreferredPricingType:  string(method.PreferredPricingType),
		IsActive:              method.IsActive,
		ShippingTiers:         newTierViews(method.Tiers),
	}
}

// pricedMethodView 候选配送方式；免运费选项的 id 为 "free"
type pricedMethodView struct {
	ID                    interface{} `json:"id"`
	Name                  string      `json:"name"`
	Description           string      `json:"description"`
	BasePrice             string      `json:"base_price"`
	DeliveryEstimatedTime string      `json:"delivery_estimated_time"`
	MaxWeight             *string     `json:"max_weight"`
	MaxQuantity           *int        `json:"max_quantity"`
	PreferredPricingType  string      `json:"preferred_pricing_type"`
	CalculatedPrice       string      `json:"calculated_price"`
	PricingMethodUsed     string      `json:"pricing_method_used"`
	TierApplied           bool        `json:"tier_applied"`
	IsFreeShippingRule    bool        `json:"is_free_shipping_rule,omitempty"`
	FormattedPrice        string      `json:"formatted_price"`
}

func newPricedMethodView(priced pricing.PricedMethod) pricedMethodView {
	var id interface{} = priced.Method.ID
	if priced.IsFreeShippingRule {
		id = pricing.FreeShippingMethodID
	}
	return pricedMethodView{
		ID:                    id,
		Name:                  priced.Method.Name,
		Description:           priced.Method.Description,
		BasePrice:             money(priced.Method.Price),
		DeliveryEstimatedTime: priced.Method.DeliveryEstimatedTime,
		MaxWeight:             optionalWeight(priced.Method.MaxWeight),
		MaxQuantity:           priced.Method.MaxQuantity,
		PreferredPricingType:  string(priced.Method.PreferredPricingType),
		CalculatedPrice:       money(priced.CalculatedPrice),
		PricingMethodUsed:     string(priced.PricingMethodUsed),
		TierApplied:           priced.TierApplied,
		IsFreeShippingRule:    priced.IsFreeShippingRule,
		FormattedPrice:        pricing.FormatShippingCost(priced.CalculatedPrice, priced.IsFreeShippingRule),
	}
}

func newPricedMethodViews(methods []pricing.PricedMethod) []pricedMethodView {
	views := make([]pricedMethodView, 0, len(methods))
	for _, method := range methods {
		views = append(views, newPricedMethodView(method))
	}
	return views
}

type freeRuleView struct {
	ID                    uint   `json:"id"`
	ThresholdAmount       string `json:"threshold_amount"`
	FormattedThreshold    string `json:"formatted_threshold"`
	Active                bool   `json:"active"`
	ApplicableCategoryIDs []uint `json:"applicable_category_ids"`
	AppliesTo             string `json:"applies_to"`
}

func newFreeRuleView(rule pricing.FreeRule) freeRuleView {
	ids := rule.CategoryIDs
	if ids == nil {
		ids = make([]uint, 0)
	}
	return freeRuleView{
		ID:                    rule.ID,
		ThresholdAmount:       money(rule.ThresholdAmount),
		FormattedThreshold:    pricing.FormatBDT(rule.ThresholdAmount, true),
		Active:                rule.Active,
		ApplicableCategoryIDs: ids,
		AppliesTo:             rule.AppliesTo(),
	}
}

func optionalFreeRuleView(rule *pricing.FreeRule) *freeRuleView {
	if rule == nil {
		return nil
	}
	view := newFreeRuleView(*rule)
	return &view
}

type categoryView struct {
	ID                       uint   `json:"id"`
	Name                     string `json:"name"`
	AllowsAllMethods         bool   `json:"allows_all_methods"`
	AllowedShippingMethodIDs []uint `json:"allowed_shipping_method_ids"`
}

func newCategoryView(category pricing.Category) categoryView {
	ids := category.Restriction.MethodIDs()
	if ids == nil {
		ids = make([]uint, 0)
	}
	return categoryView{
		ID:                       category.ID,
		Name:                     category.Name,
		AllowsAllMethods:         category.Restriction.IsWildcard(),
		AllowedShippingMethodIDs: ids,
	}
}

type lineItemView struct {
	ProductID          string  `json:"product_id"`
	ProductName        string  `json:"product_name"`
	Quantity           int     `json:"quantity"`
	UnitPrice          string  `json:"unit_price"`
	ItemTotal          string  `json:"item_total"`
	UnitWeight         string  `json:"unit_weight"`
	ItemWeight         string  `json:"item_weight"`
	ShippingCategory   *string `json:"shipping_category"`
	ShippingCategoryID *uint   `json:"shipping_category_id"`
}

func newLineItemViews(items []pricing.LineItem) []lineItemView {
	views := make([]lineItemView, 0, len(items))
	for _, item := range items {
		views = append(views, lineItemView{
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          money(item.UnitPrice),
			ItemTotal:          money(item.ItemTotal),
			UnitWeight:         weightText(item.UnitWeight),
			ItemWeight:         weightText(item.ItemWeight),
			ShippingCategory:   item.CategoryName,
			ShippingCategoryID: item.CategoryID,
		})
	}
	return views
}

type violationView struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	CurrentValue string `json:"current_value"`
	MaxAllowed   string `json:"max_allowed"`
	MethodName   string `json:"method_name"`
}

func newViolationViews(violations []pricing.Violation) []violationView {
	views := make([]violationView, 0, len(violations))
	for _, v := range violations {
		views = append(views, violationView{
			Type:         v.Type,
			Message:      v.Message,
			CurrentValue: v.CurrentValue.String(),
			MaxAllowed:   v.MaxAllowed.String(),
			MethodName:   v.MethodName,
		})
	}
	return views
}
