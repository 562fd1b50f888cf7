package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PricingType 计价维度
type PricingType string

const (
	PricingQuantity PricingType = "quantity"
	PricingWeight   PricingType = "weight"
)

// Valid 判断计价维度是否合法
func (p PricingType) Valid() bool {
	return p == PricingQuantity || p == PricingWeight
}

// Tier 运费阶梯（只读快照）
type Tier struct {
	ID                    uint             `json:"id"`
	PricingType           PricingType      `json:"pricing_type"`
	MinQuantity           *int             `json:"min_quantity"`
	MaxQuantity           *int             `json:"max_quantity"`
	MinWeight             *decimal.Decimal `json:"min_weight"`
	MaxWeight             *decimal.Decimal `json:"max_weight"`
	BasePrice             decimal.Decimal  `json:"base_price"`
	HasIncrementalPricing bool             `json:"has_incremental_pricing"`
	IncrementPerUnit      decimal.Decimal  `json:"increment_per_unit"`
	IncrementUnitSize     decimal.Decimal  `json:"increment_unit_size"`
	Priority              int              `json:"priority"`
}

// bounds 返回阶梯在自身计价维度上的区间，min 缺失时阶梯不可用
func (t Tier) bounds() (decimal.Decimal, *decimal.Decimal, bool) {
	switch t.PricingType {
	case PricingQuantity:
		if t.MinQuantity == nil {
			return decimal.Zero, nil, false
		}
		min := decimal.NewFromInt(int64(*t.MinQuantity))
		if t.MaxQuantity == nil {
			return min, nil, true
		}
		max := decimal.NewFromInt(int64(*t.MaxQuantity))
		return min, &max, true
	case PricingWeight:
		if t.MinWeight == nil {
			return decimal.Zero, nil, false
		}
		return *t.MinWeight, t.MaxWeight, true
	default:
		return decimal.Zero, nil, false
	}
}

// Method 配送方式（只读快照）
type Method struct {
	ID                    uint             `json:"id"`
	Name                  string           `json:"name"`
	Description           string           `json:"description"`
	Price                 decimal.Decimal  `json:"price"`
	DeliveryEstimatedTime string           `json:"delivery_estimated_time"`
	MaxWeight             *decimal.Decimal `json:"max_weight"`
	MaxQuantity           *int             `json:"max_quantity"`
	PreferredPricingType  PricingType      `json:"preferred_pricing_type"`
	IsActive              bool             `json:"is_active"`
	Tiers                 []Tier           `json:"tiers"`
}

// TiersOf 返回指定维度的阶梯
func (m Method) TiersOf(pricingType PricingType) []Tier {
	result := make([]Tier, 0, len(m.Tiers))
	for _, tier := range m.Tiers {
		if tier.PricingType == pricingType {
			result = append(result, tier)
		}
	}
	return result
}

// Category 配送分类（只读快照）
type Category struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Restriction Restriction `json:"restriction"`
}

// FreeRule 免运费规则（只读快照）
type FreeRule struct {
	ID              uint            `json:"id"`
	ThresholdAmount decimal.Decimal `json:"threshold_amount"`
	Active          bool            `json:"active"`
	CategoryIDs     []uint          `json:"category_ids"`
}

// AppliesToAll 规则是否不限分类
func (r FreeRule) AppliesToAll() bool {
	return len(r.CategoryIDs) == 0
}

// Snapshot 一次计算使用的只读配置
type Snapshot struct {
	Methods    []Method   `json:"methods"`
	Categories []Category `json:"categories"`
	FreeRules  []FreeRule `json:"free_rules"`
}

// MethodByID 按 ID 查找配送方式
func (s *Snapshot) MethodByID(id uint) (Method, bool) {
	if s == nil {
		return Method{}, false
	}
	for _, method := range s.Methods {
		if method.ID == id {
			return method, true
		}
	}
	return Method{}, false
}

// CategoryByID 按 ID 查找配送分类
func (s *Snapshot) CategoryByID(id uint) (Category, bool) {
	if s == nil {
		return Category{}, false
	}
	for _, category := range s.Categories {
		if category.ID == id {
			return category, true
		}
	}
	return Category{}, false
}

func (s *Snapshot) activeMethods() []Method {
	if s == nil {
		return nil
	}
	result := make([]Method, 0, len(s.Methods))
	for _, method := range s.Methods {
		if method.IsActive {
			result = append(result, method)
		}
	}
	sortMethods(result)
	return result
}

func (s *Snapshot) activeMethodSet() map[uint]struct{} {
	set := make(map[uint]struct{})
	for _, method := range s.activeMethods() {
		set[method.ID] = struct{}{}
	}
	return set
}

// sortMethods 配送方式按名称、ID 排序，保证结果稳定
func sortMethods(methods []Method) {
	sort.SliceStable(methods, func(i, j int) bool {
		if methods[i].Name == methods[j].Name {
			return methods[i].ID < methods[j].ID
		}
		return methods[i].Name < methods[j].Name
	})
}

func sortedIDs(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
