package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shipping-engine/internal/cache"
	"github.com/shipping-engine/internal/constants"

	"github.com/shopspring/decimal"
)

func newShippingAdmin(f *serviceFixture) *ShippingAdminService {
	return NewShippingAdminService(f.shippingRepo, f.snapshots(), nil)
}

func TestShippingAdminCreateMethodValidation(t *testing.T) {
	f := setupServiceTest(t)
	svc := newShippingAdmin(f)
	ctx := context.Background()

	if _, err := svc.CreateMethod(ctx, ShippingMethodInput{Price: decimal.NewFromInt(10)}); !errors.Is(err, ErrShippingMethodInvalid) {
		t.Fatalf("missing name want ErrShippingMethodInvalid got %v", err)
	}
	if _, err := svc.CreateMethod(ctx, ShippingMethodInput{Name: "Bad", Price: decimal.NewFromInt(-1)}); !errors.Is(err, ErrShippingMethodInvalid) {
		t.Fatalf("negative price want ErrShippingMethodInvalid got %v", err)
	}
	if _, err := svc.CreateMethod(ctx, ShippingMethodInput{Name: "Bad", PreferredPricingType: "volume"}); !errors.Is(err, ErrShippingMethodInvalid) {
		t.Fatalf("bad pricing type want ErrShippingMethodInvalid got %v", err)
	}

	method, err := svc.CreateMethod(ctx, ShippingMethodInput{Name: " Standard ", Price: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("create method failed: %v", err)
	}
	if method.Name != "Standard" || !method.IsActive || method.PreferredPricingType != "quantity" {
		t.Fatalf("unexpected method defaults: %+v", method)
	}

	inactive := false
	updated, err := svc.UpdateMethod(ctx, method.ID, ShippingMethodInput{Name: "Standard", Price: decimal.NewFromInt(60), IsActive: &inactive})
	if err != nil {
		t.Fatalf("update method failed: %v", err)
	}
	if updated.IsActive || !updated.Price.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("update not applied: %+v", updated)
	}
	if _, err := svc.UpdateMethod(ctx, 9999, ShippingMethodInput{Name: "Ghost"}); !errors.Is(err, ErrShippingMethodNotFound) {
		t.Fatalf("unknown method want ErrShippingMethodNotFound got %v", err)
	}
}

func TestShippingAdminTierValidation(t *testing.T) {
	f := setupServiceTest(t)
	svc := newShippingAdmin(f)
	ctx := context.Background()
	method, err := svc.CreateMethod(ctx, ShippingMethodInput{Name: "Standard", Price: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("create method failed: %v", err)
	}

	cases := []struct {
		name  string
		input ShippingTierInput
	}{
		{name: "unknown pricing type", input: ShippingTierInput{PricingType: "volume", MinQuantity: intPtr(1)}},
		{name: "quantity without min", input: ShippingTierInput{PricingType: "quantity"}},
		{name: "weight without min", input: ShippingTierInput{PricingType: "weight"}},
		{name: "max not above min", input: ShippingTierInput{PricingType: "quantity", MinQuantity: intPtr(5), MaxQuantity: intPtr(5)}},
		{name: "weight max below min", input: ShippingTierInput{PricingType: "weight", MinWeight: decimalPtr("5"), MaxWeight: decimalPtr("2")}},
		{name: "incremental without unit price", input: ShippingTierInput{PricingType: "weight", MinWeight: decimalPtr("0"), HasIncrementalPricing: true}},
		{name: "negative base price", input: ShippingTierInput{PricingType: "quantity", MinQuantity: intPtr(1), BasePrice: decimal.NewFromInt(-5)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateTier(ctx, method.ID, tc.input); !errors.Is(err, ErrTierInvalid) {
				t.Fatalf("want ErrTierInvalid got %v", err)
			}
		})
	}

	valid := ShippingTierInput{PricingType: "quantity", MinQuantity: intPtr(5), MaxQuantity: intPtr(9), BasePrice: decimal.NewFromInt(40), Priority: 1}
	if _, err := svc.CreateTier(ctx, 9999, valid); !errors.Is(err, ErrShippingMethodNotFound) {
		t.Fatalf("unknown method want ErrShippingMethodNotFound got %v", err)
	}
	tier, err := svc.CreateTier(ctx, method.ID, valid)
	if err != nil {
		t.Fatalf("create tier failed: %v", err)
	}
	if !tier.IncrementUnitSize.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unit size should default to 1, got %s", tier.IncrementUnitSize)
	}
	tiers, err := svc.ListTiers(method.ID)
	if err != nil || len(tiers) != 1 {
		t.Fatalf("expected one tier, got %d %v", len(tiers), err)
	}
	if err := svc.DeleteTier(ctx, tier.ID); err != nil {
		t.Fatalf("delete tier failed: %v", err)
	}
	if err := svc.DeleteTier(ctx, tier.ID); !errors.Is(err, ErrShippingTierNotFound) {
		t.Fatalf("deleted tier want ErrShippingTierNotFound got %v", err)
	}
}

func TestShippingAdminCategories(t *testing.T) {
	f := setupServiceTest(t)
	svc := newShippingAdmin(f)
	ctx := context.Background()
	standard, err := svc.CreateMethod(ctx, ShippingMethodInput{Name: "Standard", Price: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("create method failed: %v", err)
	}

	category, err := svc.CreateCategory(ctx, ShippingCategoryInput{Name: "Electronics", AllowedMethodIDs: []uint{standard.ID}})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if len(category.AllowedMethods) != 1 {
		t.Fatalf("expected one allowed method, got %+v", category.AllowedMethods)
	}
	if _, err := svc.CreateCategory(ctx, ShippingCategoryInput{Name: "electronics"}); !errors.Is(err, ErrShippingCategoryExists) {
		t.Fatalf("duplicate name want ErrShippingCategoryExists got %v", err)
	}
	if _, err := svc.CreateCategory(ctx, ShippingCategoryInput{Name: "Fragile", AllowedMethodIDs: []uint{9999}}); !errors.Is(err, ErrShippingMethodNotFound) {
		t.Fatalf("unknown method want ErrShippingMethodNotFound got %v", err)
	}
	if _, err := svc.CreateCategory(ctx, ShippingCategoryInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty name want ErrInvalidInput got %v", err)
	}

	updated, err := svc.UpdateCategory(ctx, category.ID, ShippingCategoryInput{Name: "ELECTRONICS"})
	if err != nil {
		t.Fatalf("renaming to own name should pass: %v", err)
	}
	if len(updated.AllowedMethods) != 0 {
		t.Fatalf("empty method list should clear restriction")
	}

	product := f.createProduct(t, "earbuds", "2500", "0.150", &category.ID)
	if err := svc.DeleteCategory(ctx, category.ID); err != nil {
		t.Fatalf("delete category failed: %v", err)
	}
	reloaded, err := f.productRepo.GetByID(product.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("product should survive category delete: %v", err)
	}
	if reloaded.ShippingCategoryID != nil {
		t.Fatalf("product category should be cleared")
	}
	if _, err := svc.GetCategory(category.ID); !errors.Is(err, ErrShippingCategoryNotFound) {
		t.Fatalf("deleted category want ErrShippingCategoryNotFound got %v", err)
	}
}

func TestShippingAdminFreeRules(t *testing.T) {
	f := setupServiceTest(t)
	svc := newShippingAdmin(f)
	ctx := context.Background()
	general := f.createCategory(t, "General")

	if _, err := svc.CreateFreeRule(ctx, FreeShippingRuleInput{ThresholdAmount: decimal.NewFromInt(-1)}); !errors.Is(err, ErrFreeRuleInvalid) {
		t.Fatalf("negative threshold want ErrFreeRuleInvalid got %v", err)
	}
	if _, err := svc.CreateFreeRule(ctx, FreeShippingRuleInput{ThresholdAmount: decimal.NewFromInt(1000), CategoryIDs: []uint{9999}}); !errors.Is(err, ErrShippingCategoryNotFound) {
		t.Fatalf("unknown category want ErrShippingCategoryNotFound got %v", err)
	}

	rule, err := svc.CreateFreeRule(ctx, FreeShippingRuleInput{Name: "Big orders", ThresholdAmount: decimal.NewFromInt(1000), CategoryIDs: []uint{general.ID}})
	if err != nil {
		t.Fatalf("create free rule failed: %v", err)
	}
	if !rule.Active || len(rule.Categories) != 1 {
		t.Fatalf("unexpected rule: %+v", rule)
	}

	inactive := false
	rule, err = svc.UpdateFreeRule(ctx, rule.ID, FreeShippingRuleInput{Name: "Big orders", ThresholdAmount: decimal.NewFromInt(1500), Active: &inactive})
	if err != nil {
		t.Fatalf("update free rule failed: %v", err)
	}
	if rule.Active || len(rule.Categories) != 0 || !rule.ThresholdAmount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("update not applied: %+v", rule)
	}

	if err := svc.DeleteFreeRule(ctx, rule.ID); err != nil {
		t.Fatalf("delete free rule failed: %v", err)
	}
	if err := svc.DeleteFreeRule(ctx, rule.ID); !errors.Is(err, ErrFreeRuleNotFound) {
		t.Fatalf("deleted rule want ErrFreeRuleNotFound got %v", err)
	}
}

func TestShippingAdminWriteInvalidatesSnapshot(t *testing.T) {
	mr := useMiniRedis(t)
	f := setupServiceTest(t)
	svc := newShippingAdmin(f)
	ctx := context.Background()
	key := cache.BuildKey(constants.CacheKeyShippingSnapshot)

	if _, err := f.snapshots().Current(ctx); err != nil {
		t.Fatalf("warm snapshot failed: %v", err)
	}
	if !mr.Exists(key) {
		t.Fatalf("snapshot should be cached")
	}
	if _, err := svc.CreateMethod(ctx, ShippingMethodInput{Name: "Express", Price: decimal.NewFromInt(100)}); err != nil {
		t.Fatalf("create method failed: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("write without queue should drop cached snapshot")
	}

	snap, err := f.snapshots().Current(ctx)
	if err != nil || len(snap.Methods) != 1 {
		t.Fatalf("next read should rebuild from database: %v", err)
	}
}
