package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shipping-engine/internal/config"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/provider"
	"github.com/shipping-engine/internal/repository"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type publicFixture struct {
	engine *gin.Engine
	mugID  string
}

func setupPublicHandlerTest(t *testing.T) *publicFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:public_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.ShippingMethod{},
		&models.ShippingTier{},
		&models.ShippingCategory{},
		&models.FreeShippingRule{},
		&models.Product{},
		&models.User{},
		&models.Coupon{},
		&models.Order{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	shippingRepo := repository.NewShippingRepository(db)
	productRepo := repository.NewProductRepository(db)
	couponRepo := repository.NewCouponRepository(db)

	standard := models.ShippingMethod{Name: "Standard", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(60)), PreferredPricingType: "quantity", IsActive: true}
	if err := shippingRepo.CreateMethod(&standard); err != nil {
		t.Fatalf("create method failed: %v", err)
	}
	general := models.ShippingCategory{Name: "General"}
	if err := shippingRepo.CreateCategory(&general); err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if err := shippingRepo.ReplaceCategoryMethods(&general, []uint{standard.ID}); err != nil {
		t.Fatalf("link category failed: %v", err)
	}
	rule := models.FreeShippingRule{Name: "Big orders", ThresholdAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(1000)), Active: true}
	if err := shippingRepo.CreateFreeRule(&rule); err != nil {
		t.Fatalf("create free rule failed: %v", err)
	}
	mug := models.Product{
		Name:               "Ceramic Mug",
		Slug:               "ceramic-mug",
		Price:              models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
		Weight:             decimal.RequireFromString("0.4"),
		ShippingCategoryID: &general.ID,
		IsActive:           true,
	}
	if err := productRepo.Create(&mug); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	coupon := models.Coupon{
		Code:                "SAVE10",
		Type:                "PRODUCT_DISCOUNT",
		DiscountPercent:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		MinQuantityRequired: 1,
		Active:              true,
		ValidFrom:           time.Now().Add(-time.Hour),
		ExpiresAt:           time.Now().Add(24 * time.Hour),
	}
	if err := couponRepo.Create(&coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	pricingCfg := config.PricingConfig{Currency: "BDT"}
	snapshots := service.NewShippingSnapshotService(shippingRepo, pricingCfg, nil)
	cartShipping := service.NewCartShippingService(snapshots, productRepo, nil)
	coupons := service.NewCouponService(couponRepo, repository.NewUserRepository(db), repository.NewOrderRepository(db), nil)
	h := New(&provider.Container{
		CartShippingService: cartShipping,
		CouponService:       coupons,
		CheckoutService:     service.NewCheckoutService(cartShipping, coupons, pricingCfg),
	})

	engine := gin.New()
	engine.POST("/cart/analyze-shipping", h.AnalyzeCartShipping)
	engine.POST("/checkout/calculate", h.EnhancedCheckout)
	engine.POST("/coupons/validate", h.ValidateCoupon)
	return &publicFixture{engine: engine, mugID: mug.ID}
}

func (f *publicFixture) post(t *testing.T, path string, body interface{}) envelope {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body failed: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	f.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func (f *publicFixture) cart(quantity int) gin.H {
	return gin.H{"cart_items": []gin.H{{"product_id": f.mugID, "quantity": quantity}}}
}

func TestAnalyzeCartShippingHandler(t *testing.T) {
	f := setupPublicHandlerTest(t)

	resp := f.post(t, "/cart/analyze-shipping", f.cart(2))
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	var data cartShippingView
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	if data.CartAnalysis.Subtotal != "600.00" || data.CartAnalysis.TotalWeight != "0.800" {
		t.Fatalf("unexpected cart analysis: %+v", data.CartAnalysis)
	}
	if data.ShippingAnalysis.FreeShippingEligible || len(data.ShippingAnalysis.AvailableMethods) != 1 {
		t.Fatalf("unexpected shipping analysis: %+v", data.ShippingAnalysis)
	}
	if data.ShippingAnalysis.AvailableMethods[0].CalculatedPrice != "60.00" {
		t.Fatalf("standard price want 60.00 got %s", data.ShippingAnalysis.AvailableMethods[0].CalculatedPrice)
	}

	resp = f.post(t, "/cart/analyze-shipping", f.cart(4))
	data = cartShippingView{}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	methods := data.ShippingAnalysis.AvailableMethods
	if !data.ShippingAnalysis.FreeShippingEligible || len(methods) != 2 || methods[0].ID != "free" {
		t.Fatalf("free option should come first: %+v", methods)
	}
	if data.Recommendations.SavingsWithFreeShipping == nil || *data.Recommendations.SavingsWithFreeShipping != "60.00" {
		t.Fatalf("savings want 60.00 got %v", data.Recommendations.SavingsWithFreeShipping)
	}

	resp = f.post(t, "/cart/analyze-shipping", gin.H{"cart_items": []gin.H{}})
	if resp.StatusCode != 400 || resp.Msg != "Cart is empty" {
		t.Fatalf("empty cart want 400 got %d %q", resp.StatusCode, resp.Msg)
	}
}

func TestEnhancedCheckoutHandler(t *testing.T) {
	f := setupPublicHandlerTest(t)
	body := f.cart(2)
	body["coupon_code"] = "SAVE10"

	resp := f.post(t, "/checkout/calculate", body)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	var data struct {
		CalculationSummary calculationSummaryView `json:"calculation_summary"`
		CouponDetails      *couponDetailsView     `json:"coupon_details"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	summary := data.CalculationSummary
	if summary.FinalTotal != "600.00" || summary.DiscountAmount != "60.00" || summary.Currency != "BDT" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if data.CouponDetails == nil || !data.CouponDetails.Valid {
		t.Fatalf("coupon should apply: %+v", data.CouponDetails)
	}
}

func TestValidateCouponHandler(t *testing.T) {
	f := setupPublicHandlerTest(t)

	resp := f.post(t, "/coupons/validate", gin.H{"coupon_code": "NOPE", "cart_items": []gin.H{{"quantity": 1}}})
	if resp.StatusCode != 404 || resp.Msg != "Coupon not found or inactive." {
		t.Fatalf("missing coupon want 404 got %d %q", resp.StatusCode, resp.Msg)
	}

	resp = f.post(t, "/coupons/validate", gin.H{"coupon_code": "SAVE10", "cart_items": []gin.H{{"quantity": 2}}, "cart_total": "600"})
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	var data struct {
		Valid          bool   `json:"valid"`
		Message        string `json:"message"`
		DiscountAmount string `json:"discount_amount"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	if !data.Valid || data.DiscountAmount != "60.00" || data.Message != resp.Msg {
		t.Fatalf("unexpected validation: %+v msg=%q", data, resp.Msg)
	}

	resp = f.post(t, "/coupons/validate", gin.H{"cart_items": []gin.H{}})
	if resp.StatusCode != 400 {
		t.Fatalf("missing code want 400 got %d", resp.StatusCode)
	}
}

func TestValidateCouponCountsOnlyGivenQuantities(t *testing.T) {
	f := setupPublicHandlerTest(t)
	const wantMsg = "You need at least 1 items in your cart to use this product discount coupon."

	lines := map[string]gin.H{
		"missing quantity": {"product_id": f.mugID},
		"zero quantity":    {"product_id": f.mugID, "quantity": 0},
	}
	for name, line := range lines {
		resp := f.post(t, "/coupons/validate", gin.H{"coupon_code": "SAVE10", "cart_items": []gin.H{line}})
		if resp.StatusCode != 400 || resp.Msg != wantMsg {
			t.Fatalf("%s: want 400 %q got %d %q", name, wantMsg, resp.StatusCode, resp.Msg)
		}
		var data struct {
			Valid bool `json:"valid"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			t.Fatalf("%s: decode data failed: %v", name, err)
		}
		if data.Valid {
			t.Fatalf("%s: coupon should be rejected", name)
		}
	}
}
