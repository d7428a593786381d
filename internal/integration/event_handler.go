package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/config"
	"github.com/aalbahar80/rems-ai-sub000/internal/metrics"
	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"github.com/aalbahar80/rems-ai-sub000/internal/repository"
	"github.com/aalbahar80/rems-ai-sub000/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// queuedEvent 待推送的事件
type queuedEvent struct {
	id      string
	orderID int64
	typ     string
	payload []byte
}

// WebhookPublisher 基于数据库的工单事件发布器
//
// 事件先落库（status=pending）,再由 worker 异步推送到所有配置的 Webhook。
// 推送失败按指数退避重试,最终状态为 success 或 failed。
type WebhookPublisher struct {
	eventRepo  repository.EventRepository
	httpClient *http.Client
	webhooks   []string
	maxRetries int
	backoff    time.Duration
	logger     logrus.FieldLogger

	queue chan *queuedEvent
	stop  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// PublisherOption 发布器可选配置
type PublisherOption func(*WebhookPublisher)

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(client *http.Client) PublisherOption {
	return func(p *WebhookPublisher) {
		p.httpClient = client
	}
}

// WithInitialBackoff 设置首次重试等待时间
func WithInitialBackoff(d time.Duration) PublisherOption {
	return func(p *WebhookPublisher) {
		p.backoff = d
	}
}

// NewWebhookPublisher 创建事件发布器并启动 worker
func NewWebhookPublisher(eventRepo repository.EventRepository, cfg config.EventsConfig, logger logrus.FieldLogger, opts ...PublisherOption) *WebhookPublisher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := &WebhookPublisher{
		eventRepo:  eventRepo,
		httpClient: &http.Client{Timeout: timeout},
		webhooks:   cfg.Webhooks,
		maxRetries: maxRetries,
		backoff:    time.Second,
		logger:     logger.WithField("component", "webhook_publisher"),
		queue:      make(chan *queuedEvent, queueSize),
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Publish 持久化事件并异步推送
func (p *WebhookPublisher) Publish(ctx context.Context, evt *service.OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	now := time.Now()
	eventModel := &model.EventModel{
		ID:        uuid.New().String(),
		OrderID:   evt.OrderID,
		Type:      evt.Type,
		Data:      payload,
		Status:    model.EventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// 没有 Webhook 时无需推送
	if len(p.webhooks) == 0 {
		eventModel.Status = model.EventStatusSuccess
	}
	if err := p.eventRepo.Save(ctx, eventModel); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	if len(p.webhooks) == 0 {
		return nil
	}

	p.enqueue(&queuedEvent{id: eventModel.ID, orderID: evt.OrderID, typ: evt.Type, payload: payload})
	return nil
}

// RequeuePending 重新投递库中仍为 pending 的事件（启动时调用）
func (p *WebhookPublisher) RequeuePending(ctx context.Context, limit int) (int, error) {
	if len(p.webhooks) == 0 {
		return 0, nil
	}
	pending, err := p.eventRepo.FindPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	for _, e := range pending {
		p.enqueue(&queuedEvent{id: e.ID, orderID: e.OrderID, typ: e.Type, payload: e.Data})
	}
	return len(pending), nil
}

// Close 停止 worker 并等待正在进行的推送结束
func (p *WebhookPublisher) Close() {
	p.once.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
}

func (p *WebhookPublisher) enqueue(evt *queuedEvent) {
	select {
	case p.queue <- evt:
	default:
		// 队列满时保持 pending,等待下次 RequeuePending
		p.logger.WithFields(logrus.Fields{
			"event_id": evt.id,
			"order_id": evt.orderID,
			"type":     evt.typ,
		}).Warn("event queue full, event left pending")
	}
}

func (p *WebhookPublisher) worker() {
	defer p.wg.Done()
	for {
		select {
		case evt := <-p.queue:
			p.deliver(evt)
		case <-p.stop:
			return
		}
	}
}

// deliver 推送到所有 Webhook,全部成功才算成功
// 重试只针对尚未成功的 Webhook
func (p *WebhookPublisher) deliver(evt *queuedEvent) {
	entry := p.logger.WithFields(logrus.Fields{
		"event_id": evt.id,
		"order_id": evt.orderID,
		"type":     evt.typ,
	})
	ctx := context.Background()
	backoff := p.backoff

	remaining := append([]string(nil), p.webhooks...)
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		failed := remaining[:0]
		for _, url := range remaining {
			if err := p.send(ctx, url, evt); err != nil {
				failed = append(failed, url)
				entry.WithError(err).WithField("url", url).Warn("webhook delivery failed")
			}
		}
		remaining = failed

		if len(remaining) == 0 {
			metrics.RecordWebhookDelivery(true)
			if err := p.eventRepo.UpdateStatus(ctx, evt.id, model.EventStatusSuccess, attempt-1); err != nil {
				entry.WithError(err).Error("failed to update event status")
			}
			return
		}

		if attempt == p.maxRetries {
			break
		}
		if err := p.eventRepo.UpdateStatus(ctx, evt.id, model.EventStatusPending, attempt); err != nil {
			entry.WithError(err).Error("failed to update event status")
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-p.stop:
			// 关闭时保持 pending,下次启动重新投递
			return
		}
	}

	metrics.RecordWebhookDelivery(false)
	entry.WithField("retries", p.maxRetries).Error("webhook delivery exhausted retries")
	if err := p.eventRepo.UpdateStatus(ctx, evt.id, model.EventStatusFailed, p.maxRetries); err != nil {
		entry.WithError(err).Error("failed to update event status")
	}
}

func (p *WebhookPublisher) send(ctx context.Context, url string, evt *queuedEvent) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(evt.payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", evt.typ)
	req.Header.Set("X-Event-ID", evt.id)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status code: %d", resp.StatusCode)
	}
	return nil
}
