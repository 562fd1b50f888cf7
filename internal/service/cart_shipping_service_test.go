package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type shippingCatalog struct {
	standard    models.ShippingMethod
	express     models.ShippingMethod
	economy     models.ShippingMethod
	retired     models.ShippingMethod
	general     models.ShippingCategory
	electronics models.ShippingCategory
}

func seedShippingCatalog(t *testing.T, f *serviceFixture) shippingCatalog {
	t.Helper()
	c := shippingCatalog{}
	c.standard = f.createMethod(t, models.ShippingMethod{Name: "Standard Shipping", Price: money("50"), PreferredPricingType: "quantity", IsActive: true})
	c.express = f.createMethod(t, models.ShippingMethod{Name: "Express Shipping", Price: money("100"), PreferredPricingType: "weight", MaxWeight: decimalPtr("30"), IsActive: true})
	c.economy = f.createMethod(t, models.ShippingMethod{Name: "Economy Shipping", Price: money("30"), MaxQuantity: intPtr(20), IsActive: true})
	c.retired = f.createMethod(t, models.ShippingMethod{Name: "Retired Shipping", Price: money("10"), IsActive: false})

	f.createTier(t, models.ShippingTier{ShippingMethodID: c.standard.ID, PricingType: "quantity", MinQuantity: intPtr(5), MaxQuantity: intPtr(9), BasePrice: money("40"), Priority: 1})
	f.createTier(t, models.ShippingTier{ShippingMethodID: c.express.ID, PricingType: "weight", MinWeight: decimalPtr("0"), MaxWeight: decimalPtr("5"), BasePrice: money("100"), Priority: 1})
	f.createTier(t, models.ShippingTier{
		ShippingMethodID:      c.express.ID,
		PricingType:           "weight",
		MinWeight:             decimalPtr("5"),
		BasePrice:             money("100"),
		HasIncrementalPricing: true,
		IncrementPerUnit:      money("20"),
		Priority:              2,
	})

	c.general = f.createCategory(t, "General", c.standard.ID, c.express.ID, c.economy.ID)
	c.electronics = f.createCategory(t, "Electronics", c.standard.ID, c.express.ID)
	return c
}

func methodNames(methods []pricing.PricedMethod) string {
	names := make([]string, 0, len(methods))
	for _, method := range methods {
		names = append(names, method.Method.Name)
	}
	return strings.Join(names, ",")
}

func TestAnalyzeCartSingleCategory(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)
	shirt := f.createProduct(t, "cotton-t-shirt", "450", "0.250", &catalog.general.ID)

	result, err := f.cartShipping().AnalyzeCart(context.Background(), []CartItemInput{{ProductID: shirt.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("analyze cart failed: %v", err)
	}
	if !result.Cart.Subtotal.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("subtotal want 900 got %s", result.Cart.Subtotal)
	}
	if !result.Cart.TotalWeight.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("weight want 0.5 got %s", result.Cart.TotalWeight)
	}
	if result.Shipping.RequiresSplit {
		t.Fatalf("single category cart should not require split")
	}
	if got := methodNames(result.Shipping.Methods); got != "Economy Shipping,Express Shipping,Standard Shipping" {
		t.Fatalf("unexpected methods: %s", got)
	}
	if result.Recommendations.OptimalMethod == nil || result.Recommendations.OptimalMethod.Method.ID != catalog.economy.ID {
		t.Fatalf("optimal method should be economy: %+v", result.Recommendations.OptimalMethod)
	}
	if result.Recommendations.SavingsWithFreeShipping != nil {
		t.Fatalf("savings should be empty without free shipping")
	}
	if result.Shipping.FreeShipping.Eligible {
		t.Fatalf("no free rule configured")
	}
}

func TestAnalyzeCartIntersectsCategoriesAndAddsFreeOption(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)
	f.createFreeRule(t, "1000", true)
	shirt := f.createProduct(t, "cotton-t-shirt", "450", "0.250", &catalog.general.ID)
	earbuds := f.createProduct(t, "wireless-earbuds", "2500", "0.150", &catalog.electronics.ID)

	result, err := f.cartShipping().AnalyzeCart(context.Background(), []CartItemInput{
		{ProductID: shirt.ID, Quantity: 1},
		{ProductID: earbuds.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("analyze cart failed: %v", err)
	}
	if got := methodNames(result.Shipping.Methods); got != "Free Shipping,Express Shipping,Standard Shipping" {
		t.Fatalf("unexpected methods: %s", got)
	}
	if !result.Shipping.Methods[0].IsFreeShippingRule || !result.Shipping.Methods[0].CalculatedPrice.IsZero() {
		t.Fatalf("first option should be free shipping: %+v", result.Shipping.Methods[0])
	}
	if !result.Shipping.FreeShipping.Eligible {
		t.Fatalf("cart over threshold should be eligible")
	}
	if result.Recommendations.SavingsWithFreeShipping == nil || !result.Recommendations.SavingsWithFreeShipping.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("savings want 50 got %v", result.Recommendations.SavingsWithFreeShipping)
	}
	if len(result.Cart.CategoryIDs) != 2 {
		t.Fatalf("expected two categories, got %v", result.Cart.CategoryIDs)
	}
}

func TestAnalyzeCartDisjointCategoriesRequireSplit(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)
	bulky := f.createCategory(t, "Bulky", catalog.economy.ID)
	fragile := f.createCategory(t, "Fragile", catalog.express.ID)
	sofa := f.createProduct(t, "sofa", "9000", "25", &bulky.ID)
	vase := f.createProduct(t, "vase", "700", "1.2", &fragile.ID)

	result, err := f.cartShipping().AnalyzeCart(context.Background(), []CartItemInput{
		{ProductID: sofa.ID, Quantity: 1},
		{ProductID: vase.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("analyze cart failed: %v", err)
	}
	if !result.Shipping.RequiresSplit || result.Recommendations.CanSingleShipment {
		t.Fatalf("disjoint categories should require split")
	}
	if got := methodNames(result.Shipping.Methods); got != "Economy Shipping,Express Shipping" {
		t.Fatalf("split should offer union of methods, got %s", got)
	}
}

func TestAnalyzeCartInputErrors(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.cartShipping()

	if _, err := svc.AnalyzeCart(context.Background(), nil); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("empty cart want ErrCartEmpty got %v", err)
	}

	_, err := svc.AnalyzeCart(context.Background(), []CartItemInput{{ProductID: "not-a-uuid", Quantity: 1}})
	if !errors.Is(err, ErrNoValidProducts) {
		t.Fatalf("invalid ids want ErrNoValidProducts got %v", err)
	}
	var invalid *InvalidCartItemsError
	if !errors.As(err, &invalid) || len(invalid.Items) != 1 {
		t.Fatalf("expected invalid item details, got %v", err)
	}
	if !strings.Contains(invalid.Items[0].Error, "not-a-uuid") {
		t.Fatalf("error should name the bad id: %s", invalid.Items[0].Error)
	}
}

func TestAnalyzeCartSkipsMissingAndNormalizesQuantity(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)
	mug := f.createProduct(t, "ceramic-mug", "300", "0.400", &catalog.general.ID)
	missing := uuid.NewString()

	result, err := f.cartShipping().AnalyzeCart(context.Background(), []CartItemInput{
		{ProductID: mug.ID, Quantity: 0},
		{ProductID: missing, Quantity: 3},
		{ProductID: "bogus", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("analyze cart failed: %v", err)
	}
	if result.Cart.TotalQuantity != 1 {
		t.Fatalf("quantity 0 should count as 1, got %d", result.Cart.TotalQuantity)
	}
	if len(result.Cart.Missing) != 1 || result.Cart.Missing[0] != missing {
		t.Fatalf("missing product not reported: %v", result.Cart.Missing)
	}
	if len(result.InvalidItems) != 1 {
		t.Fatalf("invalid items not reported: %+v", result.InvalidItems)
	}
}

func TestMethodsForCartIgnoresBadCategoryIDs(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)

	raw := []string{"abc," + uintString(catalog.electronics.ID), "0"}
	result, err := f.cartShipping().MethodsForCart(context.Background(), 2, decimal.NewFromInt(1), raw)
	if err != nil {
		t.Fatalf("methods for cart failed: %v", err)
	}
	if len(result.CategoryIDs) != 1 || result.CategoryIDs[0] != catalog.electronics.ID {
		t.Fatalf("unexpected category ids: %v", result.CategoryIDs)
	}
	if strings.Join(result.IgnoredCategories, ",") != "abc,0" {
		t.Fatalf("unexpected ignored ids: %v", result.IgnoredCategories)
	}
	if got := methodNames(result.Resolution.Methods); got != "Express Shipping,Standard Shipping" {
		t.Fatalf("unexpected methods: %s", got)
	}
}

func TestMethodsForCartReportsCapViolations(t *testing.T) {
	f := setupServiceTest(t)
	seedShippingCatalog(t, f)

	result, err := f.cartShipping().MethodsForCart(context.Background(), 25, decimal.NewFromInt(40), nil)
	if err != nil {
		t.Fatalf("methods for cart failed: %v", err)
	}
	if got := methodNames(result.Resolution.Methods); got != "Standard Shipping" {
		t.Fatalf("only standard should remain, got %s", got)
	}
	if len(result.Resolution.Violations) != 2 {
		t.Fatalf("expected two violations, got %+v", result.Resolution.Violations)
	}
}

func TestPriceForCart(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)
	svc := f.cartShipping()
	ctx := context.Background()

	quote, err := svc.PriceForCart(ctx, catalog.express.ID, 1, decimal.RequireFromString("7.5"), "")
	if err != nil {
		t.Fatalf("price for cart failed: %v", err)
	}
	if !quote.ConstraintsMet || quote.Price == nil || !quote.Price.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("express 7.5kg want 160, got %+v", quote)
	}
	if quote.PricingTypeUsed == nil || *quote.PricingTypeUsed != pricing.PricingWeight {
		t.Fatalf("expected weight pricing, got %v", quote.PricingTypeUsed)
	}
	if !strings.Contains(quote.Explanation, "= 160.00 BDT") {
		t.Fatalf("unexpected explanation: %s", quote.Explanation)
	}

	quote, err = svc.PriceForCart(ctx, catalog.standard.ID, 6, decimal.Zero, "quantity")
	if err != nil {
		t.Fatalf("price for cart failed: %v", err)
	}
	if quote.Price == nil || !quote.Price.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("standard qty 6 want 40, got %+v", quote)
	}

	quote, err = svc.PriceForCart(ctx, catalog.express.ID, 1, decimal.NewFromInt(2), "quantity")
	if err != nil {
		t.Fatalf("price for cart failed: %v", err)
	}
	if quote.Price == nil || !quote.Price.Equal(decimal.NewFromInt(100)) || quote.Tier != nil {
		t.Fatalf("no quantity tier should fall back to method price, got %+v", quote)
	}
}

func TestPriceForCartConstraintsAndErrors(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)
	svc := f.cartShipping()
	ctx := context.Background()

	quote, err := svc.PriceForCart(ctx, catalog.express.ID, 1, decimal.NewFromInt(31), "")
	if err != nil {
		t.Fatalf("price for cart failed: %v", err)
	}
	if quote.ConstraintsMet || quote.Price != nil || len(quote.ConstraintErrors) != 1 {
		t.Fatalf("over-weight quote should fail constraints: %+v", quote)
	}

	if _, err := svc.PriceForCart(ctx, catalog.retired.ID, 1, decimal.Zero, ""); !errors.Is(err, ErrShippingMethodNotFound) {
		t.Fatalf("inactive method want ErrShippingMethodNotFound got %v", err)
	}
	if _, err := svc.PriceForCart(ctx, 9999, 1, decimal.Zero, ""); !errors.Is(err, ErrShippingMethodNotFound) {
		t.Fatalf("unknown method want ErrShippingMethodNotFound got %v", err)
	}
	if _, err := svc.PriceForCart(ctx, catalog.standard.ID, 1, decimal.Zero, "volume"); !errors.Is(err, ErrPricingTypeInvalid) {
		t.Fatalf("bad pricing type want ErrPricingTypeInvalid got %v", err)
	}
}

func TestCheckEligibility(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)
	f.createFreeRule(t, "1000", true, catalog.general.ID)
	f.createFreeRule(t, "500", false)
	svc := f.cartShipping()
	ctx := context.Background()
	amount := decimal.NewFromInt(1200)

	decision, category, err := svc.CheckEligibility(ctx, amount, &catalog.general.ID)
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if !decision.Eligible || category == nil || category.Name != "General" {
		t.Fatalf("general category should qualify: %+v %+v", decision, category)
	}

	decision, _, err = svc.CheckEligibility(ctx, amount, &catalog.electronics.ID)
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if decision.Eligible {
		t.Fatalf("electronics is not covered by the rule")
	}

	decision, _, err = svc.CheckEligibility(ctx, amount, nil)
	if err != nil || !decision.Eligible {
		t.Fatalf("any rule should qualify without category: %+v %v", decision, err)
	}

	decision, _, err = svc.CheckEligibility(ctx, decimal.NewFromInt(600), nil)
	if err != nil || decision.Eligible {
		t.Fatalf("inactive rule must not qualify: %+v %v", decision, err)
	}

	unknown := uint(9999)
	if _, _, err := svc.CheckEligibility(ctx, amount, &unknown); !errors.Is(err, ErrShippingCategoryNotFound) {
		t.Fatalf("unknown category want ErrShippingCategoryNotFound got %v", err)
	}

	rules, err := svc.ActiveFreeRules(ctx)
	if err != nil || len(rules) != 1 {
		t.Fatalf("expected one active rule, got %d %v", len(rules), err)
	}
}

func TestActiveMethodsExcludeInactive(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)
	svc := f.cartShipping()
	ctx := context.Background()

	methods, err := svc.ActiveMethods(ctx)
	if err != nil {
		t.Fatalf("active methods failed: %v", err)
	}
	if len(methods) != 3 {
		t.Fatalf("expected three active methods, got %d", len(methods))
	}
	if _, err := svc.ActiveMethod(ctx, catalog.retired.ID); !errors.Is(err, ErrShippingMethodNotFound) {
		t.Fatalf("inactive method want ErrShippingMethodNotFound got %v", err)
	}
	method, err := svc.ActiveMethod(ctx, catalog.standard.ID)
	if err != nil || method.Name != "Standard Shipping" || len(method.Tiers) != 1 {
		t.Fatalf("unexpected standard method: %+v %v", method, err)
	}
}

func uintString(value uint) string {
	return decimal.NewFromInt(int64(value)).String()
}
