package pricing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MatchTier 在候选阶梯中选择适用阶梯
// 过滤 min <= v 且 (max 为空或 max >= v)，按 priority 降序、min 降序取第一条。
func MatchTier(tiers []Tier, pricingType PricingType, value decimal.Decimal) (Tier, bool) {
	type candidate struct {
		tier Tier
		min  decimal.Decimal
	}
	matches := make([]candidate, 0, len(tiers))
	for _, tier := range tiers {
		if tier.PricingType != pricingType {
			continue
		}
		min, max, ok := tier.bounds()
		if !ok {
			continue
		}
		if min.GreaterThan(value) {
			continue
		}
		if max != nil && max.LessThan(value) {
			continue
		}
		matches = append(matches, candidate{tier: tier, min: min})
	}
	if len(matches) == 0 {
		return Tier{}, false
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return tierBefore(matches[i].tier, matches[i].min, matches[j].tier, matches[j].min)
	})
	return matches[0].tier, true
}

// tierBefore 阶梯排序：priority 降序，其次 min 降序
func tierBefore(a Tier, aMin decimal.Decimal, b Tier, bMin decimal.Decimal) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return aMin.GreaterThan(bMin)
}

// Applies 阶梯是否覆盖给定值
func (t Tier) Applies(value decimal.Decimal) bool {
	min, max, ok := t.bounds()
	if !ok {
		return false
	}
	if value.LessThan(min) {
		return false
	}
	return max == nil || !value.GreaterThan(*max)
}

// incrementUnits 超出 min 的部分按 unit size 向上取整的单位数
func (t Tier) incrementUnits(value decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	min, _, _ := t.bounds()
	excess := value.Sub(min)
	if !excess.IsPositive() {
		return decimal.Zero, excess
	}
	size := t.IncrementUnitSize
	if !size.IsPositive() {
		size = decimal.NewFromInt(1)
	}
	units, remainder := excess.QuoRem(size, 0)
	if remainder.IsPositive() {
		units = units.Add(decimal.NewFromInt(1))
	}
	return units, excess
}

// TierPrice 计算阶梯价格：base_price + ceil((v-min)/unit_size) * increment_per_unit
func TierPrice(tier Tier, value decimal.Decimal) decimal.Decimal {
	if !tier.HasIncrementalPricing {
		return tier.BasePrice
	}
	units, _ := tier.incrementUnits(value)
	if units.IsZero() {
		return tier.BasePrice
	}
	return tier.BasePrice.Add(units.Mul(tier.IncrementPerUnit))
}

// Quote 配送方式在某一维度下的报价结果
type Quote struct {
	PricingType PricingType
	Price       decimal.Decimal
	Tier        *Tier
}

// TierApplied 报价是否与基础价不同
func (q Quote) TierApplied(method Method) bool {
	return !q.Price.Equal(method.Price)
}

// PriceFor 按指定维度报价，pricingType 为空时使用方式的偏好维度；无匹配阶梯时回落到基础价
func (m Method) PriceFor(pricingType PricingType, quantity int, weight decimal.Decimal) Quote {
	if pricingType == "" {
		pricingType = m.PreferredPricingType
	}
	var value decimal.Decimal
	switch pricingType {
	case PricingWeight:
		value = weight
	case PricingQuantity:
		value = decimal.NewFromInt(int64(quantity))
	default:
		return Quote{PricingType: pricingType, Price: m.Price}
	}
	tier, ok := MatchTier(m.Tiers, pricingType, value)
	if !ok {
		return Quote{PricingType: pricingType, Price: m.Price}
	}
	return Quote{
		PricingType: pricingType,
		Price:       TierPrice(tier, value),
		Tier:        &tier,
	}
}

// Explain 生成阶梯计价说明
func (t Tier) Explain(quantity *int, weight *decimal.Decimal) string {
	switch {
	case t.PricingType == PricingWeight && weight != nil:
		if !t.Applies(*weight) {
			return "Does not apply to this weight"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Base price for %skg", t.MinWeight.String())
		if t.MaxWeight != nil {
			fmt.Fprintf(&b, "-%skg", t.MaxWeight.String())
		} else {
			b.WriteString("+")
		}
		fmt.Fprintf(&b, ": %s BDT", t.BasePrice.StringFixed(2))
		if t.HasIncrementalPricing && weight.GreaterThan(*t.MinWeight) {
			units, excess := t.incrementUnits(*weight)
			fmt.Fprintf(&b, " + %s × %s BDT (for %skg excess in %skg increments) = %s BDT",
				units.String(),
				t.IncrementPerUnit.StringFixed(2),
				excess.String(),
				t.unitSize().String(),
				TierPrice(t, *weight).StringFixed(2),
			)
		}
		return b.String()
	case t.PricingType == PricingQuantity && quantity != nil:
		value := decimal.NewFromInt(int64(*quantity))
		if !t.Applies(value) {
			return "Does not apply to this quantity"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Base price for %d", *t.MinQuantity)
		if t.MaxQuantity != nil {
			fmt.Fprintf(&b, "-%d", *t.MaxQuantity)
		} else {
			b.WriteString("+")
		}
		fmt.Fprintf(&b, " items: %s BDT", t.BasePrice.StringFixed(2))
		if t.HasIncrementalPricing && *quantity > *t.MinQuantity {
			units, excess := t.incrementUnits(value)
			fmt.Fprintf(&b, " + %s × %s BDT (for %s excess items in %s item increments) = %s BDT",
				units.String(),
				t.IncrementPerUnit.StringFixed(2),
				excess.String(),
				t.unitSize().String(),
				TierPrice(t, value).StringFixed(2),
			)
		}
		return b.String()
	default:
		return "No calculation available"
	}
}

func (t Tier) unitSize() decimal.Decimal {
	if !t.IncrementUnitSize.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return t.IncrementUnitSize
}
