package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func checkoutSnapshot() *Snapshot {
	return &Snapshot{
		Methods: []Method{
			{ID: 1, Name: "Standard", Price: dec("50"), PreferredPricingType: PricingQuantity, IsActive: true},
			{ID: 2, Name: "Express", Price: dec("100"), PreferredPricingType: PricingQuantity, IsActive: true},
		},
		Categories: []Category{{ID: 1, Name: "General", Restriction: Restricted(1, 2)}},
		FreeRules:  []FreeRule{{ID: 1, ThresholdAmount: dec("1000"), Active: true}},
	}
}

func TestAnalyzeCartSkipsMissing(t *testing.T) {
	cat := uint(1)
	products := map[string]ProductFacts{
		"p1": {ID: "p1", Name: "Mug", Price: dec("250"), Weight: dec("0.4"), CategoryID: &cat, CategoryName: "General"},
		"p2": {ID: "p2", Name: "Poster", Price: dec("100")},
	}
	cart := AnalyzeCart([]CartLine{{ProductID: "p1", Quantity: 2}, {ProductID: "gone", Quantity: 1}, {ProductID: "p2", Quantity: 1}}, products)

	require.True(t, cart.Partial())
	require.Equal(t, []string{"gone"}, cart.Missing)
	require.Len(t, cart.Items, 2)
	require.True(t, cart.Subtotal.Equal(dec("600")))
	require.Equal(t, 3, cart.TotalQuantity)
	require.True(t, cart.TotalWeight.Equal(dec("0.8")))
	require.Equal(t, []uint{1}, cart.CategoryIDs)
	require.Nil(t, cart.Items[1].CategoryID)
}

func TestAnalyzeShippingAddsFreeOption(t *testing.T) {
	cat := uint(1)
	products := map[string]ProductFacts{"p1": {ID: "p1", Price: dec("600"), CategoryID: &cat}}
	cart := AnalyzeCart([]CartLine{{ProductID: "p1", Quantity: 2}}, products)

	analysis, rec := AnalyzeShipping(checkoutSnapshot(), cart)
	require.True(t, analysis.FreeShipping.Eligible)
	require.Len(t, analysis.Methods, 3)
	require.True(t, analysis.Methods[0].IsFreeShippingRule)
	require.True(t, rec.CanSingleShipment)
	require.True(t, rec.OptimalMethod.IsFreeShippingRule)
	require.True(t, rec.SavingsWithFreeShipping.Equal(dec("50")))
	require.Equal(t, "Express", analysis.Methods[1].Method.Name)
}

func TestSelectShipping(t *testing.T) {
	methods := []PricedMethod{
		{Method: Method{ID: 1, Name: "Express"}, CalculatedPrice: dec("100")},
		{Method: Method{ID: 2, Name: "Standard"}, CalculatedPrice: dec("50")},
	}
	sel := SelectShipping(methods, "")
	require.Equal(t, uint(1), sel.Method.Method.ID)
	require.True(t, sel.Cost.Equal(dec("100")))

	sel = SelectShipping(methods, "2")
	require.True(t, sel.Cost.Equal(dec("50")))

	sel = SelectShipping(methods, "99")
	require.Nil(t, sel.Method)
	require.True(t, sel.Cost.IsZero())

	sel = SelectShipping(methods, FreeShippingMethodID)
	require.Nil(t, sel.Method)
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(dec("800"), dec("60"), &Discount{Product: dec("0"), Shipping: dec("100")})
	require.True(t, totals.ShippingCost.IsZero())
	require.True(t, totals.FinalTotal.Equal(dec("800")))

	totals = ComputeTotals(dec("800"), dec("60"), &Discount{Product: dec("80"), Shipping: dec("0")})
	require.True(t, totals.FinalTotal.Equal(dec("780")))

	totals = ComputeTotals(dec("800"), dec("60"), nil)
	require.True(t, totals.FinalTotal.Equal(dec("860")))
}

func TestComputeTotalsLineItemsAddUp(t *testing.T) {
	c := baseCoupon(CouponProductDiscount)
	c.DiscountPercent = dec("12.5")
	subtotal, shipping := dec("333.33"), dec("46.667")
	discount := CalculateDiscount(c, subtotal, shipping)

	totals := ComputeTotals(subtotal, shipping, &discount)
	require.Equal(t, "41.67", totals.ProductDiscount.StringFixed(2))
	require.Equal(t, "46.67", totals.ShippingCost.StringFixed(2))
	require.Equal(t, "338.33", totals.FinalTotal.StringFixed(2))
	require.True(t, totals.Subtotal.Sub(totals.ProductDiscount).Add(totals.ShippingCost).Equal(totals.FinalTotal))
}

func TestFreeShippingOpportunity(t *testing.T) {
	rules := checkoutSnapshot().FreeRules
	op, ok := FreeShippingOpportunity(rules, dec("650"), FreeShippingDecision{})
	require.True(t, ok)
	require.Equal(t, "Add ৳350 more for free shipping", op.Message)
	require.True(t, op.AmountNeeded.Equal(dec("350")))

	_, ok = FreeShippingOpportunity(rules, dec("650"), FreeShippingDecision{Eligible: true})
	require.False(t, ok)

	w, ok := SplitShippingWarning(true)
	require.True(t, ok)
	require.Equal(t, "warning", w.Severity)
}

func TestFormatBDT(t *testing.T) {
	require.Equal(t, "৳1,234,567.89", FormatBDT(dec("1234567.891"), true))
	require.Equal(t, "999.50", FormatBDT(dec("999.5"), false))
	require.Equal(t, "Free", FormatShippingCost(dec("0"), false))
	require.Equal(t, "৳60.00", FormatShippingCost(dec("60"), false))
	require.Equal(t, "-৳80.00", FormatDiscount(dec("80")))
	require.Equal(t, "৳0.00", FormatDiscount(dec("-1")))
}
