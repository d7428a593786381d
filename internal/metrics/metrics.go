package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ordersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_orders_created_total",
			Help: "Total number of maintenance orders created",
		},
		[]string{"priority"},
	)

	// 状态迁移（包括分配供应商引起的提升）
	orderTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_order_transitions_total",
			Help: "Total number of maintenance order status transitions",
		},
		[]string{"from", "to"},
	)

	orderTransitionsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_order_transitions_rejected_total",
			Help: "Total number of rejected maintenance order status transitions",
		},
		[]string{"from", "to"},
	)

	vendorAssignmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "maintenance_order_vendor_assignments_total",
			Help: "Total number of vendor assignments",
		},
	)

	ordersByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "maintenance_orders_by_status",
			Help: "Number of maintenance orders by status",
		},
		[]string{"status"},
	)

	webhookDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_event_deliveries_total",
			Help: "Total number of order event webhook deliveries",
		},
		[]string{"result"}, // success, failed
	)

	websocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "order_websocket_connections",
			Help: "Number of open order event websocket connections",
		},
	)

	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)
)

var once sync.Once

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(ordersCreatedTotal)
	prometheus.MustRegister(orderTransitionsTotal)
	prometheus.MustRegister(orderTransitionsRejectedTotal)
	prometheus.MustRegister(vendorAssignmentsTotal)
	prometheus.MustRegister(ordersByStatus)
	prometheus.MustRegister(webhookDeliveriesTotal)
	prometheus.MustRegister(websocketConnections)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)

	// 默认注册表已包含 Go 运行时指标时忽略错误
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	apiRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordOrderCreated 记录工单创建
func RecordOrderCreated(priority string) {
	ordersCreatedTotal.WithLabelValues(priority).Inc()
}

// RecordTransition 记录状态迁移
func RecordTransition(from, to string) {
	orderTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordRejectedTransition 记录被拒绝的状态迁移
func RecordRejectedTransition(from, to string) {
	orderTransitionsRejectedTotal.WithLabelValues(from, to).Inc()
}

// RecordVendorAssignment 记录供应商分配
func RecordVendorAssignment() {
	vendorAssignmentsTotal.Inc()
}

// RecordWebhookDelivery 记录事件推送结果
func RecordWebhookDelivery(success bool) {
	result := "success"
	if !success {
		result = "failed"
	}
	webhookDeliveriesTotal.WithLabelValues(result).Inc()
}

// SetWebSocketConnections 更新 WebSocket 连接数
func SetWebSocketConnections(n int) {
	websocketConnections.Set(float64(n))
}

// UpdateOrdersByStatus 更新工单状态分布指标
func UpdateOrdersByStatus(counts map[string]int64) {
	ordersByStatus.Reset()
	for status, count := range counts {
		ordersByStatus.WithLabelValues(status).Set(float64(count))
	}
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.InUse))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}
