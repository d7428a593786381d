package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/api"
	"github.com/aalbahar80/rems-ai-sub000/internal/auth"
	"github.com/aalbahar80/rems-ai-sub000/internal/config"
	"github.com/aalbahar80/rems-ai-sub000/internal/database"
	"github.com/aalbahar80/rems-ai-sub000/internal/logging"
	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"github.com/aalbahar80/rems-ai-sub000/internal/repository"
	"github.com/aalbahar80/rems-ai-sub000/internal/service"
	"github.com/aalbahar80/rems-ai-sub000/internal/websocket"
	"github.com/gin-gonic/gin"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type testServer struct {
	router http.Handler
	db     *gorm.DB
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	for _, m := range mutate {
		m(cfg)
	}

	logger := logging.Discard()
	svc := service.NewMaintenanceOrderService(
		repository.NewTransactor(db),
		repository.NewMaintenanceOrderRepository(db),
		repository.NewVendorRepository(db),
		repository.NewStateHistoryRepository(db),
		service.WithAuditLog(service.NewAuditLogService(repository.NewAuditLogRepository(db))),
		service.WithLogger(logger),
	)
	router := api.SetupRoutes(api.RouterDeps{
		Config:       cfg,
		DB:           db,
		OrderService: svc,
		Logger:       logger,
	})
	return &testServer{router: router, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func createBody() map[string]interface{} {
	return map[string]interface{}{
		"firm_id":         1,
		"unit_id":         12,
		"requestor_type":  "tenant",
		"tenant_id":       44,
		"expense_type_id": 2,
		"title":           "AC not cooling",
		"description":     "Living room AC blows warm air",
	}
}

func (s *testServer) createOrder(t *testing.T) service.MaintenanceOrder {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/maintenance-orders", createBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order service.MaintenanceOrder
	require.NoError(t, json.Unmarshal(env.Data, &order))
	return order
}

// TestCreateOrder 测试创建工单返回 201
func TestCreateOrder(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/maintenance-orders", createBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Maintenance order created", env.Message)
	var order service.MaintenanceOrder
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "submitted", order.Status)
	assert.Equal(t, "medium", order.Priority)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

// TestCreateOrder_Validation 测试校验失败返回 400
func TestCreateOrder_Validation(t *testing.T) {
	s := newTestServer(t)
	body := createBody()
	delete(body, "tenant_id")

	w, env := s.do(t, http.MethodPost, "/api/v1/maintenance-orders", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, api.CodeValidationError, env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "tenant_id")
}

// TestCreateOrder_InvalidFields 测试清理后为空的文本与非正数引用返回 400
func TestCreateOrder_InvalidFields(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"control characters only title", "title", "\x01\x02"},
		{"zero unit id", "unit_id", 0},
		{"negative tenant id", "tenant_id", -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			body := createBody()
			body[tt.key] = tt.value

			w, env := s.do(t, http.MethodPost, "/api/v1/maintenance-orders", body)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, api.CodeValidationError, env.Error.Code)
			assert.Contains(t, string(env.Error.Details), tt.key)
		})
	}
}

// TestCreateOrder_MalformedJSON 测试非法请求体
func TestCreateOrder_MalformedJSON(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/maintenance-orders", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, api.CodeValidationError, env.Error.Code)
}

// TestUpdateStatus_BusinessRuleViolation 测试非法迁移返回 409
func TestUpdateStatus_BusinessRuleViolation(t *testing.T) {
	s := newTestServer(t)
	order := s.createOrder(t)

	w, env := s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/maintenance-orders/%d/status", order.ID),
		map[string]string{"status": "completed"})

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, api.CodeBusinessRuleViolated, env.Error.Code)
	assert.Equal(t, "Invalid status transition from submitted to completed", env.Error.Message)

	var details struct {
		From    string   `json:"from"`
		To      string   `json:"to"`
		Allowed []string `json:"allowed"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, "submitted", details.From)
	assert.Equal(t, "completed", details.To)
	assert.Equal(t, []string{"acknowledged", "cancelled", "rejected"}, details.Allowed)
}

// TestUpdateStatus_Success 测试合法迁移
func TestUpdateStatus_Success(t *testing.T) {
	s := newTestServer(t)
	order := s.createOrder(t)

	w, env := s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/maintenance-orders/%d/status", order.ID),
		map[string]string{"status": "acknowledged", "note": "seen"})

	assert.Equal(t, http.StatusOK, w.Code)
	var updated service.MaintenanceOrder
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "acknowledged", updated.Status)
	assert.NotNil(t, updated.AcknowledgedDate)
	assert.Contains(t, updated.AdminNotes, "seen")
}

// TestNotFound 测试不存在的工单返回 404
func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/maintenance-orders/999"},
		{http.MethodPatch, "/api/v1/maintenance-orders/999/status"},
		{http.MethodPost, "/api/v1/maintenance-orders/999/approve"},
	} {
		w, env := s.do(t, tc.method, tc.path, map[string]interface{}{"status": "acknowledged", "approver_id": 7})
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
		require.NotNil(t, env.Error, tc.path)
		assert.Equal(t, api.CodeNotFound, env.Error.Code)
	}
}

// TestInvalidID 测试非法 ID 返回 400
func TestInvalidID(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/v1/maintenance-orders/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, api.CodeValidationError, env.Error.Code)
}

// TestAssignVendor 测试分配供应商
func TestAssignVendor(t *testing.T) {
	s := newTestServer(t)
	vendor := &model.VendorModel{Name: "CoolFix", IsActive: true}
	require.NoError(t, s.db.Create(vendor).Error)
	order := s.createOrder(t)

	w, env := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/maintenance-orders/%d/assign-vendor", order.ID),
		map[string]interface{}{"vendor_id": vendor.ID, "scheduled_date": "2025-03-05T14:00:00Z"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated service.MaintenanceOrder
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "scheduled", updated.Status)
	assert.True(t, updated.ScheduledDate.Equal(time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)))

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/maintenance-orders/%d/assign-vendor", order.ID),
		map[string]interface{}{"vendor_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeValidationError, env.Error.Code)
}

// TestApprove 测试审批
func TestApprove(t *testing.T) {
	s := newTestServer(t)
	order := s.createOrder(t)

	w, env := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/maintenance-orders/%d/approve", order.ID),
		map[string]interface{}{"approver_id": 7, "note": "ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var approved service.MaintenanceOrder
	require.NoError(t, json.Unmarshal(env.Data, &approved))
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, int64(7), *approved.ApprovedBy)

	// 再次审批不允许
	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/maintenance-orders/%d/approve", order.ID),
		map[string]interface{}{"approver_id": 7})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, env.Error.Message, "cannot be approved")
}

// TestApprove_EmptyBodyWithoutUser 测试空请求体且无用户时返回 400
func TestApprove_EmptyBodyWithoutUser(t *testing.T) {
	s := newTestServer(t)
	order := s.createOrder(t)

	w, env := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/maintenance-orders/%d/approve", order.ID), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeValidationError, env.Error.Code)
}

// TestReadEndpoints 测试列表、历史、迁移与统计
func TestReadEndpoints(t *testing.T) {
	s := newTestServer(t)
	order := s.createOrder(t)
	s.createOrder(t)

	w, _ := s.do(t, http.MethodGet, "/api/v1/maintenance-orders?status=submitted&page_size=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data       []service.MaintenanceOrder `json:"data"`
		Pagination api.PaginationInfo         `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPage)

	w, _ = s.do(t, http.MethodGet, "/api/v1/maintenance-orders?sort_by=password", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/maintenance-orders/%d/transitions", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var opts service.TransitionOptions
	require.NoError(t, json.Unmarshal(env.Data, &opts))
	assert.True(t, opts.CanApprove)

	w, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/maintenance-orders/%d/history", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []service.StateHistory
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "submitted", history[0].ToStatus)

	w, env = s.do(t, http.MethodGet, "/api/v1/maintenance-orders/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats service.OrderStatistics
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus["submitted"])
}

// TestAuthEnabled 测试启用 JWT 后的认证与审计
func TestAuthEnabled(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.JWTSecret = "test-secret"
		cfg.Auth.Issuer = "rems"
	})

	w, env := s.do(t, http.MethodPost, "/api/v1/maintenance-orders", createBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	token, err := auth.NewTokenValidator("test-secret", "rems").IssueToken("7", "manager", time.Hour)
	require.NoError(t, err)
	w, env = s.do(t, http.MethodPost, "/api/v1/maintenance-orders", createBody(),
		"Authorization", "Bearer "+token, "X-Request-ID", "req-42")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	var order service.MaintenanceOrder
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.NotNil(t, order.CreatedBy)
	assert.Equal(t, int64(7), *order.CreatedBy)

	var audit model.AuditLogModel
	require.NoError(t, s.db.Where("action = ?", service.AuditActionCreate).First(&audit).Error)
	assert.Equal(t, "7", audit.UserID)
	assert.Equal(t, "req-42", audit.RequestID)

	// 健康检查不需要认证
	w, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestRateLimit 测试限流
func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})

	w, _ := s.do(t, http.MethodGet, "/api/v1/maintenance-orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/v1/maintenance-orders", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, api.CodeTooManyRequests, env.Error.Code)
}

// TestHealthAndMetrics 测试健康检查与指标端点
func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"healthy"`)

	s.createOrder(t)
	w, _ = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "maintenance_orders_created_total")
}

// TestCORSPreflight 测试预检请求
func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodOptions, "/api/v1/maintenance-orders", nil, "Origin", "http://example.com")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// TestSetupRoutes_NilLogger 测试未注入 logger 时使用默认 logger
func TestSetupRoutes_NilLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.RateLimit.Enabled = false

	var router *gin.Engine
	require.NotPanics(t, func() {
		router = api.SetupRoutes(api.RouterDeps{Config: cfg})
	})
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), api.CodeInternalServerError)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestWebSocketRoute 测试通过 HTTP 修改状态后订阅者收到事件
func TestWebSocketRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	logger := logging.Discard()
	hub := websocket.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	svc := service.NewMaintenanceOrderService(
		repository.NewTransactor(db),
		repository.NewMaintenanceOrderRepository(db),
		repository.NewVendorRepository(db),
		repository.NewStateHistoryRepository(db),
		service.WithEventPublisher(hub),
		service.WithLogger(logger),
	)
	s := &testServer{
		router: api.SetupRoutes(api.RouterDeps{Config: cfg, DB: db, OrderService: svc, Logger: logger, Hub: hub}),
		db:     db,
	}
	server := httptest.NewServer(s.router)
	defer server.Close()

	order := s.createOrder(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + fmt.Sprintf("/ws/maintenance-orders/%d", order.ID)
	conn, _, err := gorillaWS.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	w, _ := s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/maintenance-orders/%d/status", order.ID),
		map[string]interface{}{"status": "acknowledged"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt service.OrderEvent
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, service.EventOrderStatusChanged, evt.Type)
	assert.Equal(t, order.ID, evt.OrderID)
	assert.Equal(t, "acknowledged", evt.ToStatus)

	// 未挂载 Hub 时路由不存在
	plain := newTestServer(t)
	w, _ = plain.do(t, http.MethodGet, fmt.Sprintf("/ws/maintenance-orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestSwaggerDoc 测试文档路径与实际挂载位置一致
func TestSwaggerDoc(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "/", doc.BasePath)
	assert.Contains(t, doc.Paths, "/health")
	assert.Contains(t, doc.Paths, "/api/v1/maintenance-orders")
	assert.Contains(t, doc.Paths, "/api/v1/maintenance-orders/{id}/status")

	// 文档中的 /health 可直接访问
	w, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
