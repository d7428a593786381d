package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// 写超时时间
	writeWait = 10 * time.Second

	// 读超时时间
	pongWait = 60 * time.Second

	// ping 周期 (必须小于 pongWait)
	pingPeriod = (pongWait * 9) / 10

	// 客户端只发送控制帧,限制读取大小
	maxMessageSize = 4 * 1024

	sendBufferSize = 64
)

// Client 订阅单个工单事件的 WebSocket 客户端
type Client struct {
	ID      string
	UserID  string
	OrderID int64

	hub  *Hub
	conn *websocket.Conn

	// Send 待发送的消息,由 Hub 关闭
	Send chan []byte

	logger logrus.FieldLogger
}

// NewClient 创建新的客户端
func NewClient(id, userID string, orderID int64, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:      id,
		UserID:  userID,
		OrderID: orderID,
		hub:     hub,
		conn:    conn,
		Send:    make(chan []byte, sendBufferSize),
		logger: hub.logger.WithFields(logrus.Fields{
			"client_id": id,
			"order_id":  orderID,
		}),
	}
}

// ReadPump 读取连接直到断开,断开后注销客户端
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("websocket read error")
			}
			return
		}
	}
}

// WritePump 将 Send 中的消息写入连接,每条事件一帧
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了 channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WithError(err).Debug("websocket write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
