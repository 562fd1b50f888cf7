package constants

// 订单状态常量
const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
)

// CommittedOrderStatuses 已确认订单状态（用于首单资格判断）
var CommittedOrderStatuses = []string{OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered}

// OrderStatuses 全部订单状态
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 队列常量
const (
	QueueDefault               = "default"
	TaskShippingSnapshotRefresh = "shipping:snapshot_refresh"
)

// 缓存常量
const (
	RedisPrefixDefault              = "se"
	CacheKeyShippingSnapshot        = "shipping:snapshot"
	CacheKeyShippingSnapshotVersion = "shipping:snapshot:version"
)

// 币种常量
const (
	SiteCurrencyDefault = "BDT"
)

// 站点语言常量
const (
	LocaleEnUS = "en-US"
	LocaleBnBD = "bn-BD"
	LocaleZhCN = "zh-CN"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleEnUS, LocaleBnBD, LocaleZhCN}

// 快照刷新原因
const (
	SnapshotReasonAdminWrite = "admin_write"
	SnapshotReasonWarmup     = "warmup"
)
