package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 货币配置
const (
	CurrencySymbol = "৳"
	CurrencyCode   = "BDT"
	CurrencyName   = "Bangladeshi Taka"
)

// CurrencyInfo 货币信息
type CurrencyInfo struct {
	Symbol             string `json:"symbol"`
	Code               string `json:"code"`
	Name               string `json:"name"`
	DecimalPlaces      int    `json:"decimal_places"`
	ThousandsSeparator string `json:"thousands_separator"`
	DecimalSeparator   string `json:"decimal_separator"`
	SymbolPosition     string `json:"symbol_position"`
	SpaceAfterSymbol   bool   `json:"space_after_symbol"`
}

// GetCurrencyInfo 返回 BDT 配置
func GetCurrencyInfo() CurrencyInfo {
	return CurrencyInfo{
		Symbol:             CurrencySymbol,
		Code:               CurrencyCode,
		Name:               CurrencyName,
		DecimalPlaces:      2,
		ThousandsSeparator: ",",
		DecimalSeparator:   ".",
		SymbolPosition:     "before",
	}
}

// FormatBDT 保留两位小数并加千分位
func FormatBDT(amount decimal.Decimal, showSymbol bool) string {
	text := groupThousands(amount.StringFixed(2))
	if showSymbol {
		return CurrencySymbol + text
	}
	return text
}

// FormatWholeBDT 取整到元并加千分位，用于提示文案
func FormatWholeBDT(amount decimal.Decimal) string {
	return CurrencySymbol + groupThousands(amount.StringFixed(0))
}

// FormatShippingCost 运费展示，免运费或为 0 时显示 Free
func FormatShippingCost(cost decimal.Decimal, isFree bool) string {
	if isFree || cost.IsZero() {
		return "Free"
	}
	return FormatBDT(cost, true)
}

// FormatDiscount 优惠展示，非正数显示 ৳0.00
func FormatDiscount(discount decimal.Decimal) string {
	if !discount.IsPositive() {
		return FormatBDT(decimal.Zero, true)
	}
	return "-" + FormatBDT(discount, true)
}

func groupThousands(text string) string {
	sign := ""
	if strings.HasPrefix(text, "-") {
		sign = "-"
		text = text[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(text, ".")
	if len(intPart) > 3 {
		var b strings.Builder
		head := len(intPart) % 3
		if head > 0 {
			b.WriteString(intPart[:head])
		}
		for i := head; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	if hasFrac {
		return sign + intPart + "." + fracPart
	}
	return sign + intPart
}
