package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// FreeShippingMethodID 免运费选项的标识
const FreeShippingMethodID = "free"

// FreeShippingDecision 免运费判定结果
type FreeShippingDecision struct {
	Eligible bool
	Rule     *FreeRule
}

// AppliesTo 规则适用范围描述
func (r FreeRule) AppliesTo() string {
	if r.AppliesToAll() {
		return "All categories"
	}
	return fmt.Sprintf("%d specific categories", len(r.CategoryIDs))
}

// AppliesToCategory 规则是否适用于指定分类
func (r FreeRule) AppliesToCategory(categoryID uint) bool {
	if r.AppliesToAll() {
		return true
	}
	for _, id := range r.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

func (r FreeRule) intersects(categoryIDs []uint) bool {
	if r.AppliesToAll() {
		return true
	}
	for _, id := range categoryIDs {
		if r.AppliesToCategory(id) {
			return true
		}
	}
	return false
}

// qualifyingRules 启用且门槛不高于金额的规则，按门槛降序（同门槛按 ID 升序）
func qualifyingRules(rules []FreeRule, amount decimal.Decimal) []FreeRule {
	result := make([]FreeRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Active && rule.ThresholdAmount.LessThanOrEqual(amount) {
			result = append(result, rule)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].ThresholdAmount.Equal(result[j].ThresholdAmount) {
			return result[i].ThresholdAmount.GreaterThan(result[j].ThresholdAmount)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// EvaluateFreeShipping 判断购物车是否满足免运费规则
func EvaluateFreeShipping(rules []FreeRule, subtotal decimal.Decimal, categoryIDs []uint) FreeShippingDecision {
	for _, rule := range qualifyingRules(rules, subtotal) {
		if rule.intersects(categoryIDs) {
			matched := rule
			return FreeShippingDecision{Eligible: true, Rule: &matched}
		}
	}
	return FreeShippingDecision{}
}

// EligibleForCategory 按金额与可选分类检查免运费；categoryID 为空时任一规则均可
func EligibleForCategory(rules []FreeRule, amount decimal.Decimal, categoryID *uint) FreeShippingDecision {
	for _, rule := range qualifyingRules(rules, amount) {
		if categoryID == nil || rule.AppliesToCategory(*categoryID) {
			matched := rule
			return FreeShippingDecision{Eligible: true, Rule: &matched}
		}
	}
	return FreeShippingDecision{}
}

// NextFreeShippingRule 返回门槛高于小计的最低启用规则
func NextFreeShippingRule(rules []FreeRule, subtotal decimal.Decimal) (FreeRule, bool) {
	var (
		next  FreeRule
		found bool
	)
	for _, rule := range rules {
		if !rule.Active || !rule.ThresholdAmount.GreaterThan(subtotal) {
			continue
		}
		if !found || rule.ThresholdAmount.LessThan(next.ThresholdAmount) ||
			(rule.ThresholdAmount.Equal(next.ThresholdAmount) && rule.ID < next.ID) {
			next = rule
			found = true
		}
	}
	return next, found
}

// FreeOption 生成零运费选项
func FreeOption(rule FreeRule) PricedMethod {
	return PricedMethod{
		Method: Method{
			Name:                  "Free Shipping",
			Description:           fmt.Sprintf("Free shipping (order over %s)", FormatWholeBDT(rule.ThresholdAmount)),
			Price:                 decimal.Zero,
			DeliveryEstimatedTime: "Standard delivery time",
			IsActive:              true,
		},
		CalculatedPrice:    decimal.Zero,
		IsFreeShippingRule: true,
	}
}

// WithFreeOption 满足免运费时把零运费选项放在首位
func WithFreeOption(methods []PricedMethod, decision FreeShippingDecision) []PricedMethod {
	if !decision.Eligible || decision.Rule == nil {
		return methods
	}
	result := make([]PricedMethod, 0, len(methods)+1)
	result = append(result, FreeOption(*decision.Rule))
	return append(result, methods...)
}

// CheapestPaid 非免运费选项中的最低运费
func CheapestPaid(methods []PricedMethod) decimal.Decimal {
	var (
		min   decimal.Decimal
		found bool
	)
	for _, method := range methods {
		if method.IsFreeShippingRule {
			continue
		}
		if !found || method.CalculatedPrice.LessThan(min) {
			min = method.CalculatedPrice
			found = true
		}
	}
	if !found {
		return decimal.Zero
	}
	return min
}
