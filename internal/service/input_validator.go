package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/shipping-engine/internal/pricing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	inputValidatorOnce sync.Once
	inputValidator     *validator.Validate
)

// getInputValidator 后台录入校验器，decimal 字段按 float64 参与 gte/gt 等比较
func getInputValidator() *validator.Validate {
	inputValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if value, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := value.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("pricing_type", func(fl validator.FieldLevel) bool {
			return pricing.PricingType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("coupon_type", func(fl validator.FieldLevel) bool {
			return pricing.CouponType(fl.Field().String()).Valid()
		})
		v.RegisterStructValidation(validateTierInput, ShippingTierInput{})
		v.RegisterStructValidation(validateCouponInput, CouponAdminInput{})
		inputValidator = v
	})
	return inputValidator
}

// validateInput 执行结构体校验，失败时包装为指定的哨兵错误
func validateInput(input interface{}, sentinel error) error {
	err := getInputValidator().Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s:%s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", sentinel, strings.Join(parts, ","))
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

// validateTierInput 阶梯按计价维度要求下限，上限必须大于下限，递增计价需要单价与单位
func validateTierInput(sl validator.StructLevel) {
	input := sl.Current().Interface().(ShippingTierInput)
	switch pricing.PricingType(input.PricingType) {
	case pricing.PricingQuantity:
		if input.MinQuantity == nil {
			sl.ReportError(input.MinQuantity, "min_quantity", "MinQuantity", "required_for_quantity", "")
		} else if input.MaxQuantity != nil && *input.MaxQuantity <= *input.MinQuantity {
			sl.ReportError(input.MaxQuantity, "max_quantity", "MaxQuantity", "gtfield", "min_quantity")
		}
	case pricing.PricingWeight:
		if input.MinWeight == nil {
			sl.ReportError(input.MinWeight, "min_weight", "MinWeight", "required_for_weight", "")
		} else if input.MaxWeight != nil && input.MaxWeight.LessThanOrEqual(*input.MinWeight) {
			sl.ReportError(input.MaxWeight, "max_weight", "MaxWeight", "gtfield", "min_weight")
		}
	}
	if input.HasIncrementalPricing {
		if input.IncrementPerUnit == nil || !input.IncrementPerUnit.IsPositive() {
			sl.ReportError(input.IncrementPerUnit, "increment_per_unit", "IncrementPerUnit", "required_for_incremental", "")
		}
		if input.IncrementUnitSize != nil && !input.IncrementUnitSize.IsPositive() {
			sl.ReportError(input.IncrementUnitSize, "increment_unit_size", "IncrementUnitSize", "gt", "0")
		}
	}
}

// validateCouponInput 失效时间必须晚于生效时间
func validateCouponInput(sl validator.StructLevel) {
	input := sl.Current().Interface().(CouponAdminInput)
	if !input.ExpiresAt.IsZero() && !input.ExpiresAt.After(input.ValidFrom) {
		sl.ReportError(input.ExpiresAt, "expires_at", "ExpiresAt", "gtfield", "valid_from")
	}
}
