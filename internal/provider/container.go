package provider

import (
	"github.com/shipping-engine/internal/authz"
	"github.com/shipping-engine/internal/cache"
	"github.com/shipping-engine/internal/config"
	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/obs"
	"github.com/shipping-engine/internal/queue"
	"github.com/shipping-engine/internal/repository"
	"github.com/shipping-engine/internal/service"

	"github.com/redis/go-redis/extra/redisotel/v9"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *obs.Metrics

	// Repositories
	AdminRepo    repository.AdminRepository
	UserRepo     repository.UserRepository
	OrderRepo    repository.OrderRepository
	ProductRepo  repository.ProductRepository
	CouponRepo   repository.CouponRepository
	ShippingRepo repository.ShippingRepository
	AuditLogRepo repository.AuditLogRepository

	// Services
	AuthzService            *authz.Service
	AuthService             *service.AuthService
	ShippingSnapshotService *service.ShippingSnapshotService
	CartShippingService     *service.CartShippingService
	CheckoutService         *service.CheckoutService
	CouponService           *service.CouponService
	CouponAdminService      *service.CouponAdminService
	ShippingAdminService    *service.ShippingAdminService
	ProductService          *service.ProductService
	UserService             *service.UserService
	OrderService            *service.OrderService
	AuditService            *service.AuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}
	if cfg.Telemetry.TracingEnabled && cache.Enabled() {
		if err := redisotel.InstrumentTracing(cache.Client()); err != nil {
			logger.Warnw("provider_redis_tracing_failed", "error", err)
		}
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	var metrics *obs.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = obs.NewMetrics(cfg.Telemetry.MetricsNamespace)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Metrics:     metrics,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.ShippingRepo = repository.NewShippingRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.ShippingSnapshotService = service.NewShippingSnapshotService(c.ShippingRepo, c.Config.Pricing, c.Metrics)
	c.CartShippingService = service.NewCartShippingService(c.ShippingSnapshotService, c.ProductRepo, c.Metrics)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.UserRepo, c.OrderRepo, c.Metrics)
	c.CheckoutService = service.NewCheckoutService(c.CartShippingService, c.CouponService, c.Config.Pricing)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo, c.UserRepo)
	c.ShippingAdminService = service.NewShippingAdminService(c.ShippingRepo, c.ShippingSnapshotService, c.QueueClient)
	c.ProductService = service.NewProductService(c.ProductRepo, c.ShippingRepo)
	c.UserService = service.NewUserService(c.UserRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.UserRepo)
	c.AuditService = service.NewAuditService(c.AuditLogRepo)
}
