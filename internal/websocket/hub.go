package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aalbahar80/rems-ai-sub000/internal/metrics"
	"github.com/aalbahar80/rems-ai-sub000/internal/service"
	"github.com/sirupsen/logrus"
)

// ErrHubClosed Hub 已停止
var ErrHubClosed = errors.New("websocket hub is closed")

// orderMessage 发往某个工单订阅者的消息
type orderMessage struct {
	orderID int64
	payload []byte
}

// Hub 管理所有 WebSocket 连接
//
// 客户端按工单 ID 订阅,事件只推送给订阅了该工单的客户端。
// clients 只在 Run 所在的 goroutine 中修改;broadcast 不带缓冲,
// Publish 返回时事件已分发,之后注册的客户端不会收到该事件。
type Hub struct {
	// 按工单分组的客户端
	clients map[int64]map[*Client]bool

	broadcast  chan orderMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// 保护 count
	mu     sync.RWMutex
	count  int
	logger logrus.FieldLogger
}

// NewHub 创建新的 Hub
func NewHub(logger logrus.FieldLogger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan orderMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.WithField("component", "websocket_hub"),
	}
}

// Run 运行 Hub,直到 Stop 被调用
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			subs, ok := h.clients[client.OrderID]
			if !ok {
				subs = make(map[*Client]bool)
				h.clients[client.OrderID] = subs
			}
			subs[client] = true
			h.setCount(1)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			for client := range h.clients[msg.orderID] {
				select {
				case client.Send <- msg.payload:
				default:
					// 发送缓冲区已满,断开慢客户端
					h.logger.WithFields(logrus.Fields{
						"client_id": client.ID,
						"order_id":  client.OrderID,
					}).Warn("websocket client too slow, dropping connection")
					h.remove(client)
				}
			}

		case <-h.done:
			for _, subs := range h.clients {
				for client := range subs {
					close(client.Send)
				}
			}
			h.clients = make(map[int64]map[*Client]bool)
			h.mu.Lock()
			h.count = 0
			h.mu.Unlock()
			metrics.SetWebSocketConnections(0)
			return
		}
	}
}

// Stop 停止 Hub 并关闭所有客户端
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Register 注册客户端,Hub 已停止时返回 false
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish 将工单事件推送给该工单的订阅者
func (h *Hub) Publish(ctx context.Context, evt *service.OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	select {
	case h.broadcast <- orderMessage{orderID: evt.OrderID, payload: payload}:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount 获取客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) remove(client *Client) {
	subs, ok := h.clients[client.OrderID]
	if !ok || !subs[client] {
		return
	}
	delete(subs, client)
	if len(subs) == 0 {
		delete(h.clients, client.OrderID)
	}
	close(client.Send)
	h.setCount(-1)
}

func (h *Hub) setCount(delta int) {
	h.mu.Lock()
	h.count += delta
	n := h.count
	h.mu.Unlock()
	metrics.SetWebSocketConnections(n)
}
