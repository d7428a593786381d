package websocket_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/auth"
	"github.com/aalbahar80/rems-ai-sub000/internal/config"
	"github.com/aalbahar80/rems-ai-sub000/internal/database"
	"github.com/aalbahar80/rems-ai-sub000/internal/logging"
	"github.com/aalbahar80/rems-ai-sub000/internal/repository"
	"github.com/aalbahar80/rems-ai-sub000/internal/service"
	"github.com/aalbahar80/rems-ai-sub000/internal/websocket"
	"github.com/gin-gonic/gin"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "ws-test-secret"

type wsFixture struct {
	hub    *websocket.Hub
	svc    service.MaintenanceOrderService
	server *httptest.Server
}

// setupHub 创建 Hub、工单服务和挂载了 WebSocket 路由的测试服务器
func setupHub(t *testing.T, validator *auth.TokenValidator) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	hub := websocket.NewHub(logging.Discard())
	go hub.Run()
	t.Cleanup(hub.Stop)

	svc := service.NewMaintenanceOrderService(
		repository.NewTransactor(db),
		repository.NewMaintenanceOrderRepository(db),
		repository.NewVendorRepository(db),
		repository.NewStateHistoryRepository(db),
		service.WithEventPublisher(hub),
		service.WithLogger(logging.Discard()),
	)

	router := gin.New()
	router.GET("/ws/maintenance-orders/:id", websocket.WebSocketHandler(hub, svc, websocket.HandlerOptions{Validator: validator}))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &wsFixture{hub: hub, svc: svc, server: server}
}

func (f *wsFixture) createOrder(t *testing.T) *service.MaintenanceOrder {
	t.Helper()
	unit, tenant, expenseType := int64(12), int64(44), int64(2)
	order, err := f.svc.Create(context.Background(), &service.CreateOrderRequest{
		UnitID:        &unit,
		RequestorType: "tenant",
		TenantID:      &tenant,
		ExpenseTypeID: &expenseType,
		Title:         "AC not cooling",
		Description:   "Living room AC blows warm air",
	})
	require.NoError(t, err)
	return order
}

func (f *wsFixture) url(path string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + path
}

func (f *wsFixture) dial(t *testing.T, orderID int64) *gorillaWS.Conn {
	t.Helper()
	before := f.hub.ClientCount()
	conn, _, err := gorillaWS.DefaultDialer.Dial(f.url(fmt.Sprintf("/ws/maintenance-orders/%d", orderID)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return f.hub.ClientCount() == before+1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *gorillaWS.Conn) service.OrderEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt service.OrderEvent
	require.NoError(t, json.Unmarshal(data, &evt))
	return evt
}

// TestWebSocket_ReceivesOrderEvents 测试订阅者收到本工单的状态变更事件
func TestWebSocket_ReceivesOrderEvents(t *testing.T) {
	f := setupHub(t, nil)
	watched := f.createOrder(t)
	other := f.createOrder(t)

	conn := f.dial(t, watched.ID)
	otherConn := f.dial(t, other.ID)

	_, err := f.svc.UpdateStatus(context.Background(), watched.ID, &service.UpdateStatusRequest{Status: "acknowledged", Note: "on it"})
	require.NoError(t, err)

	evt := readEvent(t, conn)
	assert.Equal(t, service.EventOrderStatusChanged, evt.Type)
	assert.Equal(t, watched.ID, evt.OrderID)
	assert.Equal(t, "submitted", evt.FromStatus)
	assert.Equal(t, "acknowledged", evt.ToStatus)

	// 其他工单的订阅者收不到
	require.NoError(t, otherConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = otherConn.ReadMessage()
	assert.Error(t, err)

	approver := int64(9)
	_, err = f.svc.Approve(context.Background(), watched.ID, &service.ApproveRequest{ApproverID: &approver})
	require.NoError(t, err)

	evt = readEvent(t, conn)
	assert.Equal(t, service.EventOrderApproved, evt.Type)
	assert.Equal(t, "approved", evt.ToStatus)
}

// TestWebSocket_MultipleSubscribers 测试同一工单的多个订阅者都能收到事件
func TestWebSocket_MultipleSubscribers(t *testing.T) {
	f := setupHub(t, nil)
	order := f.createOrder(t)

	first := f.dial(t, order.ID)
	second := f.dial(t, order.ID)
	assert.Equal(t, 2, f.hub.ClientCount())

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, &service.UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", readEvent(t, first).ToStatus)
	assert.Equal(t, "cancelled", readEvent(t, second).ToStatus)
}

// TestWebSocket_ClientDisconnectUnregisters 测试客户端断开后被注销
func TestWebSocket_ClientDisconnectUnregisters(t *testing.T) {
	f := setupHub(t, nil)
	order := f.createOrder(t)

	conn := f.dial(t, order.ID)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return f.hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	// 无订阅者时发布不报错
	require.NoError(t, f.hub.Publish(context.Background(), &service.OrderEvent{Type: service.EventOrderCreated, OrderID: order.ID}))
}

// TestWebSocket_RejectsBadRequests 测试无效工单 ID 与不存在的工单
func TestWebSocket_RejectsBadRequests(t *testing.T) {
	f := setupHub(t, nil)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"invalid id", "/ws/maintenance-orders/abc", http.StatusBadRequest},
		{"unknown order", "/ws/maintenance-orders/999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := gorillaWS.DefaultDialer.Dial(f.url(tt.path), nil)
			require.ErrorIs(t, err, gorillaWS.ErrBadHandshake)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
	assert.Zero(t, f.hub.ClientCount())
}

// TestWebSocket_TokenAuthentication 测试启用认证时需要有效 token
func TestWebSocket_TokenAuthentication(t *testing.T) {
	validator := auth.NewTokenValidator(testSecret, "")
	f := setupHub(t, validator)
	order := f.createOrder(t)
	path := fmt.Sprintf("/ws/maintenance-orders/%d", order.ID)

	for _, query := range []string{"", "?token=not-a-jwt"} {
		_, resp, err := gorillaWS.DefaultDialer.Dial(f.url(path+query), nil)
		require.ErrorIs(t, err, gorillaWS.ErrBadHandshake, query)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, query)
		resp.Body.Close()
	}

	token, err := validator.IssueToken("7", "manager", time.Hour)
	require.NoError(t, err)
	conn, _, err := gorillaWS.DefaultDialer.Dial(f.url(path+"?token="+token), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn2, _, err := gorillaWS.DefaultDialer.Dial(f.url(path), header)
	require.NoError(t, err)
	defer conn2.Close()
	assert.Eventually(t, func() bool { return f.hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)
}

// TestHub_StopClosesClients 测试停止 Hub 后关闭所有连接并拒绝发布
func TestHub_StopClosesClients(t *testing.T) {
	f := setupHub(t, nil)
	order := f.createOrder(t)
	conn := f.dial(t, order.ID)

	f.hub.Stop()
	f.hub.Stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, gorillaWS.IsCloseError(err, gorillaWS.CloseGoingAway), "unexpected error: %v", err)

	err = f.hub.Publish(context.Background(), &service.OrderEvent{Type: service.EventOrderCreated, OrderID: order.ID})
	assert.ErrorIs(t, err, websocket.ErrHubClosed)
	assert.Eventually(t, func() bool { return f.hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
