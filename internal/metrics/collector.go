package metrics

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatusCountFunc 返回各状态的工单数
type StatusCountFunc func(ctx context.Context) (map[string]int64, error)

// Collector 定期刷新数据库连接与工单状态分布指标
type Collector struct {
	db          *gorm.DB
	countStatus StatusCountFunc
	interval    time.Duration
	logger      logrus.FieldLogger
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, countStatus StatusCountFunc, interval time.Duration, logger logrus.FieldLogger) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Collector{
		db:          db,
		countStatus: countStatus,
		interval:    interval,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器并等待退出
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	c.collectOnce()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.collectOnce()
		}
	}
}

func (c *Collector) collectOnce() {
	_ = UpdateDatabaseConnections(c.db)

	if c.countStatus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()
	counts, err := c.countStatus(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("failed to collect order status metrics")
		return
	}
	UpdateOrdersByStatus(counts)
}
