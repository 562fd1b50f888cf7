package pricing

import "github.com/shopspring/decimal"

// CartLine 购物车行
type CartLine struct {
	ProductID string
	Quantity  int
}

// ProductFacts 外部解析得到的商品信息
type ProductFacts struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	Weight       decimal.Decimal
	CategoryID   *uint
	CategoryName string
}

// LineItem 购物车分析行
type LineItem struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ItemTotal    decimal.Decimal `json:"item_total"`
	UnitWeight   decimal.Decimal `json:"unit_weight"`
	ItemWeight   decimal.Decimal `json:"item_weight"`
	CategoryName *string         `json:"shipping_category"`
	CategoryID   *uint           `json:"shipping_category_id"`
}

// CartAnalysis 购物车汇总
type CartAnalysis struct {
	Items         []LineItem
	Subtotal      decimal.Decimal
	TotalQuantity int
	TotalWeight   decimal.Decimal
	CategoryIDs   []uint
	Missing       []string
}

// Partial 是否有商品未找到
func (a CartAnalysis) Partial() bool {
	return len(a.Missing) > 0
}

// Quantities 各行数量
func (a CartAnalysis) Quantities() []int {
	result := make([]int, 0, len(a.Items))
	for _, item := range a.Items {
		result = append(result, item.Quantity)
	}
	return result
}

// AnalyzeCart 汇总购物车；未找到的商品跳过并记录
func AnalyzeCart(lines []CartLine, products map[string]ProductFacts) CartAnalysis {
	analysis := CartAnalysis{
		Items:       make([]LineItem, 0, len(lines)),
		Subtotal:    decimal.Zero,
		TotalWeight: decimal.Zero,
		CategoryIDs: make([]uint, 0),
		Missing:     make([]string, 0),
	}
	categories := make(map[uint]struct{})
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			analysis.Missing = append(analysis.Missing, line.ProductID)
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		itemTotal := product.Price.Mul(qty)
		itemWeight := product.Weight.Mul(qty)
		analysis.Subtotal = analysis.Subtotal.Add(itemTotal)
		analysis.TotalQuantity += line.Quantity
		analysis.TotalWeight = analysis.TotalWeight.Add(itemWeight)

		item := LineItem{
			ProductID:   line.ProductID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			ItemTotal:   itemTotal,
			UnitWeight:  product.Weight,
			ItemWeight:  itemWeight,
		}
		if product.CategoryID != nil {
			id := *product.CategoryID
			name := product.CategoryName
			item.CategoryID = &id
			item.CategoryName = &name
			categories[id] = struct{}{}
		}
		analysis.Items = append(analysis.Items, item)
	}
	analysis.CategoryIDs = sortedIDs(categories)
	return analysis
}

// ShippingAnalysis 配送分析
type ShippingAnalysis struct {
	RequiresSplit bool
	Methods       []PricedMethod
	FreeShipping  FreeShippingDecision
	Violations    []Violation
}

// Recommendations 配送建议
type Recommendations struct {
	CanSingleShipment       bool
	OptimalMethod           *PricedMethod
	SavingsWithFreeShipping *decimal.Decimal
}

// AnalyzeShipping 计算候选配送方式、免运费资格并生成建议
func AnalyzeShipping(snap *Snapshot, cart CartAnalysis) (ShippingAnalysis, Recommendations) {
	resolution := ResolveMethods(snap, cart.CategoryIDs, cart.TotalQuantity, cart.TotalWeight)
	var rules []FreeRule
	if snap != nil {
		rules = snap.FreeRules
	}
	decision := EvaluateFreeShipping(rules, cart.Subtotal, cart.CategoryIDs)
	methods := WithFreeOption(resolution.Methods, decision)

	analysis := ShippingAnalysis{
		RequiresSplit: resolution.RequiresSplit,
		Methods:       methods,
		FreeShipping:  decision,
		Violations:    resolution.Violations,
	}
	rec := Recommendations{CanSingleShipment: !resolution.RequiresSplit}
	if len(methods) > 0 {
		optimal := methods[0]
		rec.OptimalMethod = &optimal
	}
	if decision.Eligible {
		savings := CheapestPaid(methods)
		rec.SavingsWithFreeShipping = &savings
	}
	return analysis, rec
}

// SortedCategoryIDs 去重并排序分类 ID
func SortedCategoryIDs(ids []uint) []uint {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return sortedIDs(set)
}
