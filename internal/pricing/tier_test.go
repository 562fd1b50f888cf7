package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(v int) *int { return &v }

func weightTier(id uint, min string, max *decimal.Decimal, base string, priority int) Tier {
	return Tier{
		ID:          id,
		PricingType: PricingWeight,
		MinWeight:   decPtr(min),
		MaxWeight:   max,
		BasePrice:   dec(base),
		Priority:    priority,
	}
}

func quantityTier(id uint, min int, max *int, base string, priority int) Tier {
	return Tier{
		ID:          id,
		PricingType: PricingQuantity,
		MinQuantity: intPtr(min),
		MaxQuantity: max,
		BasePrice:   dec(base),
		Priority:    priority,
	}
}

func TestMatchTierNonOverlapping(t *testing.T) {
	tiers := []Tier{
		quantityTier(1, 1, intPtr(3), "40", 0),
		quantityTier(2, 4, intPtr(10), "60", 0),
		quantityTier(3, 11, nil, "80", 0),
	}
	cases := map[int]uint{1: 1, 3: 1, 4: 2, 10: 2, 11: 3, 500: 3}
	for qty, want := range cases {
		tier, ok := MatchTier(tiers, PricingQuantity, decimal.NewFromInt(int64(qty)))
		require.True(t, ok, "quantity %d", qty)
		require.Equal(t, want, tier.ID, "quantity %d", qty)
	}

	_, ok := MatchTier(tiers, PricingQuantity, decimal.Zero)
	require.False(t, ok)
}

func TestMatchTierPriorityWinsRegardlessOfOrder(t *testing.T) {
	low := weightTier(1, "0", decPtr("5"), "100", 1)
	high := weightTier(2, "0", decPtr("5"), "200", 9)

	tier, ok := MatchTier([]Tier{low, high}, PricingWeight, dec("2"))
	require.True(t, ok)
	require.Equal(t, uint(2), tier.ID)

	tier, ok = MatchTier([]Tier{high, low}, PricingWeight, dec("2"))
	require.True(t, ok)
	require.Equal(t, uint(2), tier.ID)
}

func TestMatchTierTieBreaksOnHighestMinimum(t *testing.T) {
	wide := weightTier(1, "0", nil, "50", 3)
	tight := weightTier(2, "1", nil, "70", 3)

	tier, ok := MatchTier([]Tier{wide, tight}, PricingWeight, dec("2"))
	require.True(t, ok)
	require.Equal(t, uint(2), tier.ID)
}

func TestMatchTierIgnoresOtherDimension(t *testing.T) {
	tiers := []Tier{quantityTier(1, 0, nil, "10", 0)}
	_, ok := MatchTier(tiers, PricingWeight, dec("1"))
	require.False(t, ok)
}

func TestTierPriceIncremental(t *testing.T) {
	tier := weightTier(1, "1.0", nil, "70", 0)
	tier.HasIncrementalPricing = true
	tier.IncrementPerUnit = dec("20")
	tier.IncrementUnitSize = dec("1.0")

	require.True(t, TierPrice(tier, dec("2.5")).Equal(dec("110")))
	require.True(t, TierPrice(tier, dec("1.0")).Equal(dec("70")))
	require.True(t, TierPrice(tier, dec("2")).Equal(dec("90")))
	require.True(t, TierPrice(tier, dec("2.01")).Equal(dec("110")))
}

func TestTierPriceHalfKiloIncrements(t *testing.T) {
	tier := weightTier(1, "0", decPtr("2"), "100", 5)
	tier.HasIncrementalPricing = true
	tier.IncrementPerUnit = dec("15")
	tier.IncrementUnitSize = dec("0.5")

	require.True(t, TierPrice(tier, dec("0")).Equal(dec("100")))
	require.True(t, TierPrice(tier, dec("0.3")).Equal(dec("115")))
	require.True(t, TierPrice(tier, dec("1.5")).Equal(dec("145")))
}

func TestTierPriceMonotonic(t *testing.T) {
	tier := quantityTier(1, 4, nil, "60", 0)
	tier.HasIncrementalPricing = true
	tier.IncrementPerUnit = dec("5")
	tier.IncrementUnitSize = dec("3")

	prev := decimal.Zero
	for qty := 4; qty <= 40; qty++ {
		price := TierPrice(tier, decimal.NewFromInt(int64(qty)))
		require.False(t, price.LessThan(prev), "quantity %d", qty)
		prev = price
	}
}

func TestTierPriceWithoutIncrementalIsBase(t *testing.T) {
	tier := quantityTier(1, 1, intPtr(3), "40", 0)
	require.True(t, TierPrice(tier, dec("3")).Equal(dec("40")))
}

func TestMethodPriceForFallsBackToFlatPrice(t *testing.T) {
	method := Method{
		ID:                   1,
		Name:                 "Standard",
		Price:                dec("50"),
		PreferredPricingType: PricingWeight,
		Tiers:                []Tier{weightTier(1, "1", decPtr("2"), "70", 0)},
	}
	quote := method.PriceFor("", 1, dec("0.5"))
	require.True(t, quote.Price.Equal(dec("50")))
	require.Nil(t, quote.Tier)
	require.False(t, quote.TierApplied(method))

	quote = method.PriceFor("", 1, dec("1.5"))
	require.True(t, quote.Price.Equal(dec("70")))
	require.NotNil(t, quote.Tier)
	require.True(t, quote.TierApplied(method))

	quote = method.PriceFor(PricingQuantity, 3, dec("1.5"))
	require.Equal(t, PricingQuantity, quote.PricingType)
	require.True(t, quote.Price.Equal(dec("50")))
}

func TestTierExplain(t *testing.T) {
	tier := weightTier(1, "1", nil, "70", 0)
	tier.HasIncrementalPricing = true
	tier.IncrementPerUnit = dec("20")
	tier.IncrementUnitSize = dec("1")

	w := dec("2.5")
	require.Equal(t,
		"Base price for 1kg+: 70.00 BDT + 2 × 20.00 BDT (for 1.5kg excess in 1kg increments) = 110.00 BDT",
		tier.Explain(nil, &w))

	light := dec("0.5")
	require.Equal(t, "Does not apply to this weight", tier.Explain(nil, &light))
	require.Equal(t, "No calculation available", tier.Explain(nil, nil))

	qtier := quantityTier(2, 1, intPtr(3), "40", 0)
	q := 2
	require.Equal(t, "Base price for 1-3 items: 40.00 BDT", qtier.Explain(&q, nil))
}
