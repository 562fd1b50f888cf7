package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shipping-engine/internal/authz"
	"github.com/shipping-engine/internal/cache"
	"github.com/shipping-engine/internal/config"
	adminhandlers "github.com/shipping-engine/internal/http/handlers/admin"
	publichandlers "github.com/shipping-engine/internal/http/handlers/public"
	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "se"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	quoteRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:quote", redisPrefix),
		WindowSeconds: cfg.Security.QuoteRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.QuoteRateLimit.MaxAttempts,
	}
	quoteLimiter := RateLimitMiddleware(redisClient, quoteRule, KeyByIP)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware(c.Metrics))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 购物车运费分析与结算试算
		apiV1.POST("/cart/analyze-shipping", quoteLimiter, publicHandler.AnalyzeCartShipping)
		apiV1.POST("/checkout/calculate", quoteLimiter, publicHandler.EnhancedCheckout)

		// 配送方式
		apiV1.GET("/shipping-methods", publicHandler.ListShippingMethods)
		apiV1.GET("/shipping-methods/for-cart", publicHandler.MethodsForCart)
		apiV1.GET("/shipping-methods/:id", publicHandler.GetShippingMethod)
		apiV1.GET("/shipping-methods/:id/price-for-cart", quoteLimiter, publicHandler.PriceForCart)

		// 免运费规则与配送分类
		apiV1.GET("/free-shipping-rules", publicHandler.ListFreeShippingRules)
		apiV1.GET("/free-shipping-rules/check-eligibility", publicHandler.CheckFreeShippingEligibility)
		apiV1.GET("/shipping-categories", publicHandler.ListShippingCategories)
		apiV1.GET("/currency", publicHandler.CurrencyInfo)

		// 优惠券
		apiV1.POST("/coupons/validate", quoteLimiter, publicHandler.ValidateCoupon)
		apiV1.POST("/coupons/:id/calculate-discount", quoteLimiter, publicHandler.CalculateCouponDiscount)

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(c.AuthService, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 配送方式与阶梯
				authorized.GET("/shipping/methods", adminHandler.ListShippingMethods)
				authorized.POST("/shipping/methods", adminHandler.CreateShippingMethod)
				authorized.GET("/shipping/methods/:id", adminHandler.GetShippingMethod)
				authorized.PUT("/shipping/methods/:id", adminHandler.UpdateShippingMethod)
				authorized.DELETE("/shipping/methods/:id", adminHandler.DeleteShippingMethod)
				authorized.GET("/shipping/methods/:id/tiers", adminHandler.ListShippingTiers)
				authorized.POST("/shipping/methods/:id/tiers", adminHandler.CreateShippingTier)
				authorized.PUT("/shipping/tiers/:tier_id", adminHandler.UpdateShippingTier)
				authorized.DELETE("/shipping/tiers/:tier_id", adminHandler.DeleteShippingTier)

				// 配送分类
				authorized.GET("/shipping/categories", adminHandler.ListShippingCategories)
				authorized.POST("/shipping/categories", adminHandler.CreateShippingCategory)
				authorized.GET("/shipping/categories/:id", adminHandler.GetShippingCategory)
				authorized.PUT("/shipping/categories/:id", adminHandler.UpdateShippingCategory)
				authorized.DELETE("/shipping/categories/:id", adminHandler.DeleteShippingCategory)

				// 免运费规则
				authorized.GET("/shipping/free-rules", adminHandler.ListFreeShippingRules)
				authorized.POST("/shipping/free-rules", adminHandler.CreateFreeShippingRule)
				authorized.PUT("/shipping/free-rules/:id", adminHandler.UpdateFreeShippingRule)
				authorized.DELETE("/shipping/free-rules/:id", adminHandler.DeleteFreeShippingRule)

				// 优惠券
				authorized.GET("/coupons", adminHandler.ListCoupons)
				authorized.POST("/coupons", adminHandler.CreateCoupon)
				authorized.GET("/coupons/:id", adminHandler.GetCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				authorized.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

				// 商品管理
				authorized.GET("/products", adminHandler.ListProducts)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				// 用户与订单（优惠券资格数据）
				authorized.GET("/users", adminHandler.ListUsers)
				authorized.POST("/users", adminHandler.CreateUser)
				authorized.PUT("/users/batch-status", adminHandler.BatchUpdateUserStatus)
				authorized.GET("/users/:id", adminHandler.GetUser)
				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.POST("/orders", adminHandler.UpsertOrder)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.PATCH("/orders/:id", adminHandler.UpdateOrderStatus)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins", adminHandler.ListAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAdmin)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/audit-logs", adminHandler.ListAuditLogs)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	if c.Metrics != nil {
		r.GET("/metrics", gin.WrapH(c.Metrics.Handler()))
	}

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
