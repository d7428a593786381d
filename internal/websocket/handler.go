package websocket

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aalbahar80/rems-ai-sub000/internal/auth"
	"github.com/aalbahar80/rems-ai-sub000/internal/service"
	"github.com/aalbahar80/rems-ai-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
)

// HandlerOptions WebSocket 处理器配置
type HandlerOptions struct {
	// Validator 为 nil 时不做认证
	Validator *auth.TokenValidator
	// AllowedOrigins 为空或包含 "*" 时允许所有来源
	AllowedOrigins []string
}

// WebSocketHandler 订阅单个工单事件的 WebSocket 处理器
//
// 路径参数 id 为工单 ID;启用认证时 token 从 query 参数或 Bearer 头读取。
func WebSocketHandler(hub *Hub, orders service.MaintenanceOrderService, opts HandlerOptions) gin.HandlerFunc {
	upgrader := gorillaWS.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}

	return func(c *gin.Context) {
		// 1. 认证
		userID := ""
		if opts.Validator != nil {
			token := c.Query("token")
			if token == "" {
				token, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
			}
			if token == "" {
				abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing token")
				return
			}
			claims, err := opts.Validator.ValidateToken(token)
			if err != nil {
				abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}
			userID = claims.Subject
		}

		// 2. 校验工单存在
		orderID, err := utils.ParseID(c.Param("id"))
		if err != nil {
			abort(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		if _, err := orders.Get(c.Request.Context(), orderID); err != nil {
			var nfe *service.NotFoundError
			if errors.As(err, &nfe) {
				abort(c, http.StatusNotFound, "NOT_FOUND", nfe.Error())
				return
			}
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error")
			return
		}

		// 3. 升级连接,失败时 upgrader 已写回错误响应
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.WithError(err).Debug("websocket upgrade failed")
			c.Abort()
			return
		}

		// 4. 注册客户端并启动读写
		client := NewClient(uuid.New().String(), userID, orderID, hub, conn)
		if !hub.Register(client) {
			_ = conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseGoingAway, "server shutting down"))
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
