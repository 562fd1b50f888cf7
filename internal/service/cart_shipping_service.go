package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/obs"
	"github.com/shipping-engine/internal/pricing"
	"github.com/shipping-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ShippingSnapshotSource 提供只读配送配置快照
type ShippingSnapshotSource interface {
	Current(ctx context.Context) (*pricing.Snapshot, error)
}

// CartItemInput 购物车行输入
type CartItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// InvalidCartItem 无法解析的购物车行
type InvalidCartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Error     string `json:"error"`
}

// InvalidCartItemsError 没有任何合法商品 ID 时返回
type InvalidCartItemsError struct {
	Items []InvalidCartItem
}

func (e *InvalidCartItemsError) Error() string {
	return fmt.Sprintf("%s: %d invalid items", ErrNoValidProducts.Error(), len(e.Items))
}

// Is 支持 errors.Is(err, ErrNoValidProducts)
func (e *InvalidCartItemsError) Is(target error) bool {
	return target == ErrNoValidProducts
}

// CartShippingResult 购物车配送分析结果
type CartShippingResult struct {
	Cart            pricing.CartAnalysis
	Shipping        pricing.ShippingAnalysis
	Recommendations pricing.Recommendations
	InvalidItems    []InvalidCartItem
	Snapshot        *pricing.Snapshot
}

// MethodsForCartResult 按汇总值查询的可用方式
type MethodsForCartResult struct {
	Quantity          int
	Weight            decimal.Decimal
	CategoryIDs       []uint
	IgnoredCategories []string
	Resolution        pricing.Resolution
}

// MethodQuote 单个配送方式报价
type MethodQuote struct {
	Method           pricing.Method
	Quantity         int
	Weight           decimal.Decimal
	PricingTypeUsed  *pricing.PricingType
	Price            *decimal.Decimal
	ConstraintsMet   bool
	ConstraintErrors []string
	Tier             *pricing.Tier
	Explanation      string
}

// CartShippingService 购物车运费计算服务
type CartShippingService struct {
	snapshots   ShippingSnapshotSource
	productRepo repository.ProductRepository
	metrics     *obs.Metrics
}

// NewCartShippingService 创建购物车运费计算服务
func NewCartShippingService(snapshots ShippingSnapshotSource, productRepo repository.ProductRepository, metrics *obs.Metrics) *CartShippingService {
	return &CartShippingService{
		snapshots:   snapshots,
		productRepo: productRepo,
		metrics:     metrics,
	}
}

// AnalyzeCart 分析购物车：汇总商品、计算候选配送方式与免运费资格
func (s *CartShippingService) AnalyzeCart(ctx context.Context, items []CartItemInput) (*CartShippingResult, error) {
	ctx, span := obs.StartSpan(ctx, "shipping.analyze_cart")
	defer span.End()

	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	lines := make([]pricing.CartLine, 0, len(items))
	ids := make([]string, 0, len(items))
	invalid := make([]InvalidCartItem, 0)
	for _, item := range items {
		raw := strings.TrimSpace(item.ProductID)
		parsed, err := uuid.Parse(raw)
		if raw == "" || err != nil {
			invalid = append(invalid, InvalidCartItem{
				ProductID: raw,
				Quantity:  item.Quantity,
				Error:     fmt.Sprintf("Invalid product ID format: %s. Expected UUID format.", raw),
			})
			continue
		}
		id := parsed.String()
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		lines = append(lines, pricing.CartLine{ProductID: id, Quantity: quantity})
		ids = append(ids, id)
	}
	if len(lines) == 0 {
		return nil, &InvalidCartItemsError{Items: invalid}
	}
	if len(invalid) > 0 {
		logger.Warnw("cart_items_invalid_product_ids", "count", len(invalid))
	}

	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	facts := make(map[string]pricing.ProductFacts, len(products))
	for i := range products {
		facts[products[i].ID] = toProductFacts(&products[i])
	}

	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	cart := pricing.AnalyzeCart(lines, facts)
	shipping, rec := pricing.AnalyzeShipping(snap, cart)
	if cart.Partial() {
		logger.Warnw("cart_products_missing", "missing", cart.Missing)
	}
	span.SetAttributes(
		attribute.Int("cart.lines", len(cart.Items)),
		attribute.Int("shipping.methods", len(shipping.Methods)),
		attribute.Bool("shipping.requires_split", shipping.RequiresSplit),
	)
	s.metrics.IncQuote("analyze_cart")
	s.metrics.IncFreeShipping(shipping.FreeShipping.Eligible)

	return &CartShippingResult{
		Cart:            cart,
		Shipping:        shipping,
		Recommendations: rec,
		InvalidItems:    invalid,
		Snapshot:        snap,
	}, nil
}

// MethodsForCart 按数量、重量、分类计算可用配送方式
func (s *CartShippingService) MethodsForCart(ctx context.Context, quantity int, weight decimal.Decimal, rawCategoryIDs []string) (*MethodsForCartResult, error) {
	categoryIDs, ignored := parseCategoryIDs(rawCategoryIDs)
	if quantity < 0 {
		quantity = 1
	}
	if weight.IsNegative() {
		weight = decimal.Zero
	}
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.IncQuote("methods_for_cart")
	return &MethodsForCartResult{
		Quantity:          quantity,
		Weight:            weight,
		CategoryIDs:       categoryIDs,
		IgnoredCategories: ignored,
		Resolution:        pricing.ResolveMethods(snap, categoryIDs, quantity, weight),
	}, nil
}

// PriceForCart 计算单个配送方式的报价
func (s *CartShippingService) PriceForCart(ctx context.Context, methodID uint, quantity int, weight decimal.Decimal, pricingType string) (*MethodQuote, error) {
	pt := pricing.PricingType(strings.ToLower(strings.TrimSpace(pricingType)))
	if pt != "" && !pt.Valid() {
		return nil, ErrPricingTypeInvalid
	}
	if quantity < 0 {
		quantity = 1
	}
	if weight.IsNegative() {
		weight = decimal.Zero
	}

	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	method, ok := snap.MethodByID(methodID)
	if !ok || !method.IsActive {
		return nil, ErrShippingMethodNotFound
	}

	quote := &MethodQuote{
		Method:           method,
		Quantity:         quantity,
		Weight:           weight,
		ConstraintsMet:   true,
		ConstraintErrors: make([]string, 0),
	}
	if limit, capped := method.QuantityCap(); capped && quantity > limit {
		quote.ConstraintsMet = false
		quote.ConstraintErrors = append(quote.ConstraintErrors, fmt.Sprintf("Quantity %d exceeds maximum %d", quantity, limit))
	}
	if limit, capped := method.WeightCap(); capped && weight.GreaterThan(limit) {
		quote.ConstraintsMet = false
		quote.ConstraintErrors = append(quote.ConstraintErrors, fmt.Sprintf("Weight %skg exceeds maximum %skg", weight.String(), limit.String()))
	}
	if quote.ConstraintsMet {
		result := method.PriceFor(pt, quantity, weight)
		used := result.PricingType
		price := result.Price
		quote.PricingTypeUsed = &used
		quote.Price = &price
		quote.Tier = result.Tier
		if result.Tier != nil {
			quote.Explanation = result.Tier.Explain(&quantity, &weight)
		}
	}
	s.metrics.IncQuote("price_for_cart")
	return quote, nil
}

// CheckEligibility 按金额与可选分类判断免运费
func (s *CartShippingService) CheckEligibility(ctx context.Context, amount decimal.Decimal, categoryID *uint) (pricing.FreeShippingDecision, *pricing.Category, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return pricing.FreeShippingDecision{}, nil, err
	}
	var category *pricing.Category
	if categoryID != nil {
		found, ok := snap.CategoryByID(*categoryID)
		if !ok {
			return pricing.FreeShippingDecision{}, nil, ErrShippingCategoryNotFound
		}
		category = &found
	}
	decision := pricing.EligibleForCategory(snap.FreeRules, amount, categoryID)
	s.metrics.IncFreeShipping(decision.Eligible)
	return decision, category, nil
}

// ActiveFreeRules 返回启用的免运费规则（门槛降序）
func (s *CartShippingService) ActiveFreeRules(ctx context.Context) ([]pricing.FreeRule, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]pricing.FreeRule, 0, len(snap.FreeRules))
	for _, rule := range snap.FreeRules {
		if rule.Active {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

func toProductFacts(product *models.Product) pricing.ProductFacts {
	facts := pricing.ProductFacts{
		ID:         product.ID,
		Name:       product.Name,
		Price:      product.Price.Decimal,
		Weight:     product.Weight,
		CategoryID: product.ShippingCategoryID,
	}
	if product.ShippingCategory != nil {
		facts.CategoryName = product.ShippingCategory.Name
	}
	return facts
}

// parseCategoryIDs 解析分类 ID，非法值单独返回
func parseCategoryIDs(raw []string) ([]uint, []string) {
	ids := make([]uint, 0, len(raw))
	ignored := make([]string, 0)
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := parseUintID(part)
			if err != nil {
				ignored = append(ignored, part)
				continue
			}
			ids = append(ids, id)
		}
	}
	return pricing.SortedCategoryIDs(ids), ignored
}

func parseUintID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, ErrInvalidInput
	}
	return uint(value), nil
}

// ActiveMethods 返回启用的配送方式
func (s *CartShippingService) ActiveMethods(ctx context.Context) ([]pricing.Method, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	methods := make([]pricing.Method, 0, len(snap.Methods))
	for _, method := range snap.Methods {
		if method.IsActive {
			methods = append(methods, method)
		}
	}
	return methods, nil
}

// ActiveMethod 获取单个启用的配送方式
func (s *CartShippingService) ActiveMethod(ctx context.Context, id uint) (*pricing.Method, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	method, ok := snap.MethodByID(id)
	if !ok || !method.IsActive {
		return nil, ErrShippingMethodNotFound
	}
	return &method, nil
}

// Categories 返回配送分类
func (s *CartShippingService) Categories(ctx context.Context) ([]pricing.Category, error) {
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Categories, nil
}
