package public

import (
	"errors"

	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrNoValidProducts, code: response.CodeBadRequest, key: "error.no_valid_products"},
}

var shippingQuoteErrorRules = []mappedHandlerError{
	{target: service.ErrShippingMethodNotFound, code: response.CodeNotFound, key: "error.shipping_method_not_found"},
	{target: service.ErrShippingCategoryNotFound, code: response.CodeNotFound, key: "error.shipping_category_not_found"},
	{target: service.ErrPricingTypeInvalid, code: response.CodeBadRequest, key: "error.pricing_type_invalid"},
	{target: service.ErrAmountInvalid, code: response.CodeBadRequest, key: "error.amount_invalid"},
}

var couponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponNotFound, code: response.CodeNotFound, key: "error.coupon_not_found"},
	{target: service.ErrUserNotFound, code: response.CodeBadRequest, key: "error.user_not_found"},
	{target: service.ErrAmountInvalid, code: response.CodeBadRequest, key: "error.amount_invalid"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

var checkoutErrorRules = concatMappedHandlerErrors(cartErrorRules, shippingQuoteErrorRules)

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.quote_failed")
}

func respondShippingQuoteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, shippingQuoteErrorRules, response.CodeInternal, "error.quote_failed")
}

func respondCouponError(c *gin.Context, err error) {
	respondWithMappedError(c, err, couponErrorRules, response.CodeInternal, "error.internal_error")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.quote_failed")
}
