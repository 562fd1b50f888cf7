package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 约束违规类型
const (
	ViolationQuantityExceeded = "quantity_exceeded"
	ViolationWeightExceeded   = "weight_exceeded"
)

// Violation 配送方式上限约束违规
type Violation struct {
	Type         string          `json:"type"`
	Message      string          `json:"message"`
	CurrentValue decimal.Decimal `json:"current_value"`
	MaxAllowed   decimal.Decimal `json:"max_allowed"`
	MethodName   string          `json:"method_name"`
}

// PricedMethod 已计价的候选配送方式
type PricedMethod struct {
	Method             Method          `json:"-"`
	CalculatedPrice    decimal.Decimal `json:"calculated_price"`
	PricingMethodUsed  PricingType     `json:"pricing_method_used"`
	TierApplied        bool            `json:"tier_applied"`
	IsFreeShippingRule bool            `json:"is_free_shipping_rule"`
	Tier               *Tier           `json:"-"`
}

// Resolution 候选配送方式计算结果
type Resolution struct {
	Methods       []PricedMethod
	RequiresSplit bool
	Violations    []Violation
}

// ResolveMethods 根据购物车配送分类与汇总值计算可用配送方式
func ResolveMethods(snap *Snapshot, categoryIDs []uint, totalQuantity int, totalWeight decimal.Decimal) Resolution {
	candidates, split := candidateMethods(snap, categoryIDs)
	result := Resolution{
		Methods:       make([]PricedMethod, 0, len(candidates)),
		RequiresSplit: split,
		Violations:    make([]Violation, 0),
	}
	for _, method := range candidates {
		violations := CheckCaps(method, totalQuantity, totalWeight)
		if len(violations) > 0 {
			result.Violations = append(result.Violations, violations...)
			continue
		}
		quote := method.PriceFor("", totalQuantity, totalWeight)
		result.Methods = append(result.Methods, PricedMethod{
			Method:            method,
			CalculatedPrice:   quote.Price,
			PricingMethodUsed: quote.PricingType,
			TierApplied:       quote.TierApplied(method),
			Tier:              quote.Tier,
		})
	}
	return result
}

// candidateMethods 计算候选集合，返回值已按名称排序且只含启用方式
func candidateMethods(snap *Snapshot, categoryIDs []uint) ([]Method, bool) {
	active := snap.activeMethods()
	if len(categoryIDs) == 0 {
		return active, false
	}
	activeSet := snap.activeMethodSet()

	seen := make(map[uint]struct{}, len(categoryIDs))
	restricted := make([]Restriction, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		category, ok := snap.CategoryByID(id)
		if !ok {
			continue
		}
		r := category.Restriction.narrowTo(activeSet)
		if r.IsWildcard() {
			continue
		}
		restricted = append(restricted, r)
	}
	if len(restricted) == 0 {
		return active, false
	}

	common := intersect(restricted)
	if len(common) > 0 {
		return filterMethods(active, common), false
	}

	union := make(map[uint]struct{})
	for _, r := range restricted {
		for id := range r.ids {
			union[id] = struct{}{}
		}
	}
	if len(union) == 0 {
		return active, true
	}
	return filterMethods(active, union), true
}

func intersect(restrictions []Restriction) map[uint]struct{} {
	common := make(map[uint]struct{}, len(restrictions[0].ids))
	for id := range restrictions[0].ids {
		common[id] = struct{}{}
	}
	for _, r := range restrictions[1:] {
		for id := range common {
			if !r.Allows(id) {
				delete(common, id)
			}
		}
	}
	return common
}

func filterMethods(methods []Method, keep map[uint]struct{}) []Method {
	result := make([]Method, 0, len(keep))
	for _, method := range methods {
		if _, ok := keep[method.ID]; ok {
			result = append(result, method)
		}
	}
	return result
}

// QuantityCap 数量上限，0 或未设置视为不限制
func (m Method) QuantityCap() (int, bool) {
	if m.MaxQuantity == nil || *m.MaxQuantity <= 0 {
		return 0, false
	}
	return *m.MaxQuantity, true
}

// WeightCap 重量上限，0 或未设置视为不限制
func (m Method) WeightCap() (decimal.Decimal, bool) {
	if m.MaxWeight == nil || !m.MaxWeight.IsPositive() {
		return decimal.Zero, false
	}
	return *m.MaxWeight, true
}

// CheckCaps 检查购物车汇总是否超过配送方式上限
func CheckCaps(method Method, totalQuantity int, totalWeight decimal.Decimal) []Violation {
	var violations []Violation
	if max, ok := method.QuantityCap(); ok && totalQuantity > max {
		violations = append(violations, Violation{
			Type:         ViolationQuantityExceeded,
			Message:      fmt.Sprintf("Maximum quantity for %s is %d items. Your cart has %d items.", method.Name, max, totalQuantity),
			CurrentValue: decimal.NewFromInt(int64(totalQuantity)),
			MaxAllowed:   decimal.NewFromInt(int64(max)),
			MethodName:   method.Name,
		})
	}
	if max, ok := method.WeightCap(); ok && totalWeight.GreaterThan(max) {
		violations = append(violations, Violation{
			Type:         ViolationWeightExceeded,
			Message:      fmt.Sprintf("Maximum weight for %s is %skg. Your cart weighs %skg.", method.Name, max.String(), totalWeight.String()),
			CurrentValue: totalWeight,
			MaxAllowed:   max,
			MethodName:   method.Name,
		})
	}
	return violations
}
