package pricing

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// MethodKey 配送选项的外部标识，免运费选项为 "free"
func (p PricedMethod) MethodKey() string {
	if p.IsFreeShippingRule {
		return FreeShippingMethodID
	}
	return strconv.FormatUint(uint64(p.Method.ID), 10)
}

// ShippingSelection 选中的配送选项
type ShippingSelection struct {
	Method *PricedMethod
	Cost   decimal.Decimal
}

// SelectShipping 根据用户选择确定运费
// 未选择时取第一项；"free" 仅在免运费选项存在时生效；未知标识视为未选择且运费为 0。
func SelectShipping(methods []PricedMethod, selectedID string) ShippingSelection {
	if selectedID == "" {
		if len(methods) == 0 {
			return ShippingSelection{Cost: decimal.Zero}
		}
		first := methods[0]
		return ShippingSelection{Method: &first, Cost: first.CalculatedPrice}
	}
	for _, method := range methods {
		if method.MethodKey() == selectedID {
			chosen := method
			return ShippingSelection{Method: &chosen, Cost: chosen.CalculatedPrice}
		}
	}
	return ShippingSelection{Cost: decimal.Zero}
}

// Totals 结算金额汇总
type Totals struct {
	Subtotal         decimal.Decimal
	ShippingCost     decimal.Decimal
	ProductDiscount  decimal.Decimal
	ShippingDiscount decimal.Decimal
	FinalTotal       decimal.Decimal
}

// moneyPlaces 金额计算保留的小数位
const moneyPlaces = 2

// ComputeTotals 应用优惠：运费不低于 0，最终金额 = 小计 - 商品优惠 + 运费
// 各项先取到分再汇总，保证展示的分项与总额一致。
func ComputeTotals(subtotal, shippingCost decimal.Decimal, discount *Discount) Totals {
	subtotal = subtotal.Round(moneyPlaces)
	shippingCost = shippingCost.Round(moneyPlaces)
	totals := Totals{
		Subtotal:         subtotal,
		ShippingCost:     shippingCost,
		ProductDiscount:  decimal.Zero,
		ShippingDiscount: decimal.Zero,
	}
	if discount != nil {
		totals.ProductDiscount = discount.Product.Round(moneyPlaces)
		totals.ShippingDiscount = discount.Shipping.Round(moneyPlaces)
		if discount.Shipping.IsPositive() {
			totals.ShippingCost = decimal.Max(decimal.Zero, shippingCost.Sub(totals.ShippingDiscount))
		}
	}
	totals.FinalTotal = subtotal.Sub(totals.ProductDiscount).Add(totals.ShippingCost)
	return totals
}

// SavingsOpportunity 凑单免运费提示
type SavingsOpportunity struct {
	Type         string          `json:"type"`
	Message      string          `json:"message"`
	AmountNeeded decimal.Decimal `json:"amount_needed"`
	Threshold    decimal.Decimal `json:"threshold"`
}

// Warning 结算提示
type Warning struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// FreeShippingOpportunity 未满足免运费时给出差额提示
func FreeShippingOpportunity(rules []FreeRule, subtotal decimal.Decimal, decision FreeShippingDecision) (SavingsOpportunity, bool) {
	if decision.Eligible {
		return SavingsOpportunity{}, false
	}
	rule, ok := NextFreeShippingRule(rules, subtotal)
	if !ok {
		return SavingsOpportunity{}, false
	}
	needed := rule.ThresholdAmount.Sub(subtotal)
	return SavingsOpportunity{
		Type:         "free_shipping",
		Message:      fmt.Sprintf("Add %s more for free shipping", FormatWholeBDT(needed)),
		AmountNeeded: needed,
		Threshold:    rule.ThresholdAmount,
	}, true
}

// SplitShippingWarning 需要拆单时的提示
func SplitShippingWarning(requiresSplit bool) (Warning, bool) {
	if !requiresSplit {
		return Warning{}, false
	}
	return Warning{
		Type:     "split_shipping",
		Message:  "Items require different shipping methods - split shipment may be needed",
		Severity: "warning",
	}, true
}
