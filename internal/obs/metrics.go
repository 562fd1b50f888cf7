package obs

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 服务指标集合，方法对 nil 接收者安全
type Metrics struct {
	registry *prometheus.Registry

	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge

	QuotesTotal       *prometheus.CounterVec
	CouponValidations *prometheus.CounterVec
	FreeShippingHits  *prometheus.CounterVec
	SnapshotLoads     *prometheus.CounterVec
	SnapshotRefreshes *prometheus.CounterVec
}

// NewMetrics 创建独立 registry 并注册全部采集器
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipping_quotes_total",
			Help:      "Count of shipping quotes computed by endpoint.",
		}, []string{"endpoint"}),
		CouponValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_validations_total",
			Help:      "Count of coupon validations by coupon type and result.",
		}, []string{"type", "result"}),
		FreeShippingHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "free_shipping_evaluations_total",
			Help:      "Count of free shipping evaluations by outcome.",
		}, []string{"result"}),
		SnapshotLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipping_snapshot_loads_total",
			Help:      "Count of shipping configuration snapshot loads by source.",
		}, []string{"source"}),
		SnapshotRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipping_snapshot_refreshes_total",
			Help:      "Count of shipping configuration snapshot refreshes by reason and result.",
		}, []string{"reason", "result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ReqTotal,
		m.ReqDur,
		m.InFlight,
		m.QuotesTotal,
		m.CouponValidations,
		m.FreeShippingHits,
		m.SnapshotLoads,
		m.SnapshotRefreshes,
	)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.ReqTotal.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
	m.ReqDur.WithLabelValues(method, route).Observe(DurationMillis(elapsed))
}

// IncQuote 记录一次运费计算
func (m *Metrics) IncQuote(endpoint string) {
	if m == nil {
		return
	}
	m.QuotesTotal.WithLabelValues(endpoint).Inc()
}

// IncCouponValidation 记录一次优惠券校验
func (m *Metrics) IncCouponValidation(couponType string, valid bool) {
	if m == nil {
		return
	}
	m.CouponValidations.WithLabelValues(couponType, resultLabel(valid)).Inc()
}

// IncFreeShipping 记录一次免运费判定
func (m *Metrics) IncFreeShipping(eligible bool) {
	if m == nil {
		return
	}
	result := "not_eligible"
	if eligible {
		result = "eligible"
	}
	m.FreeShippingHits.WithLabelValues(result).Inc()
}

// IncSnapshotLoad 记录快照来源（cache/database）
func (m *Metrics) IncSnapshotLoad(source string) {
	if m == nil {
		return
	}
	m.SnapshotLoads.WithLabelValues(source).Inc()
}

// IncSnapshotRefresh 记录快照刷新结果
func (m *Metrics) IncSnapshotRefresh(reason string, ok bool) {
	if m == nil {
		return
	}
	m.SnapshotRefreshes.WithLabelValues(reason, resultLabel(ok)).Inc()
}

// DurationMillis 转换为毫秒
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
