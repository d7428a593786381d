package container

import (
	"context"
	"fmt"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/config"
	"github.com/aalbahar80/rems-ai-sub000/internal/database"
	"github.com/aalbahar80/rems-ai-sub000/internal/integration"
	"github.com/aalbahar80/rems-ai-sub000/internal/metrics"
	"github.com/aalbahar80/rems-ai-sub000/internal/repository"
	"github.com/aalbahar80/rems-ai-sub000/internal/service"
	"github.com/aalbahar80/rems-ai-sub000/internal/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const metricsInterval = 30 * time.Second

// Container 依赖注入容器
// 管理数据库、仓储、事件发布器、WebSocket Hub 和工单服务
type Container struct {
	db           *gorm.DB
	publisher    *integration.WebhookPublisher
	hub          *websocket.Hub
	orderService service.MaintenanceOrderService
	collector    *metrics.Collector
	logger       logrus.FieldLogger
}

// NewContainer 创建依赖注入容器
func NewContainer(cfg *config.Config, logger logrus.FieldLogger) (*Container, error) {
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return NewContainerWithDB(db, cfg, logger)
}

// NewContainerWithDB 使用已有连接创建容器（测试使用 sqlite 内存库）
func NewContainerWithDB(db *gorm.DB, cfg *config.Config, logger logrus.FieldLogger) (*Container, error) {
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	publisher := integration.NewWebhookPublisher(repository.NewEventRepository(db), cfg.Events, logger)
	if n, err := publisher.RequeuePending(context.Background(), cfg.Events.QueueSize); err != nil {
		logger.WithError(err).Warn("failed to requeue pending events")
	} else if n > 0 {
		logger.WithField("count", n).Info("requeued pending events")
	}

	hub := websocket.NewHub(logger)
	go hub.Run()

	orderService := service.NewMaintenanceOrderService(
		repository.NewTransactor(db),
		repository.NewMaintenanceOrderRepository(db),
		repository.NewVendorRepository(db),
		repository.NewStateHistoryRepository(db),
		service.WithAuditLog(service.NewAuditLogService(repository.NewAuditLogRepository(db))),
		service.WithEventPublisher(service.Publishers{publisher, hub}),
		service.WithLogger(logger),
	)

	collector := metrics.NewCollector(db, orderService.CountByStatus, metricsInterval, logger)
	collector.Start()

	return &Container{
		db:           db,
		publisher:    publisher,
		hub:          hub,
		orderService: orderService,
		collector:    collector,
		logger:       logger,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// OrderService 获取维修工单服务
func (c *Container) OrderService() service.MaintenanceOrderService {
	return c.orderService
}

// Publisher 获取事件发布器
func (c *Container) Publisher() *integration.WebhookPublisher {
	return c.publisher
}

// Hub 获取工单事件 WebSocket Hub
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// Close 关闭容器,按依赖逆序清理资源
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}
	if c.hub != nil {
		c.hub.Stop()
	}
	if c.publisher != nil {
		c.publisher.Close()
	}
	database.Close(c.db)
	return nil
}
