package api

import (
	"errors"
	"net/http"

	"github.com/aalbahar80/rems-ai-sub000/internal/service"
	"github.com/aalbahar80/rems-ai-sub000/internal/statemachine"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HandleError 将服务层错误转换为错误响应
func HandleError(c *gin.Context, err error) {
	var (
		ve  *service.ValidationError
		nfe *service.NotFoundError
		bre *service.BusinessRuleError
		ce  *service.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		var details interface{}
		if len(ve.Fields) > 0 {
			details = ve.Fields
		}
		Error(c, http.StatusBadRequest, CodeValidationError, ve.Message, details)
	case errors.As(err, &nfe):
		Error(c, http.StatusNotFound, CodeNotFound, nfe.Error(), nil)
	case errors.As(err, &bre):
		details := gin.H{"from": bre.From}
		if bre.To != "" {
			details["to"] = bre.To
		}
		details["allowed"] = statemachine.AllowedTransitions(bre.From)
		Error(c, http.StatusConflict, CodeBusinessRuleViolated, bre.Message, details)
	case errors.As(err, &ce):
		Error(c, http.StatusConflict, CodeConflict, ce.Error(), gin.H{"order_id": ce.OrderID})
	default:
		// 内部错误不向调用方暴露细节
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, CodeInternalServerError, "internal server error", nil)
	}
}

// ErrorHandlerMiddleware 处理未写响应的 c.Errors
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			HandleError(c, c.Errors.Last().Err)
		}
	}
}

// RecoveryMiddleware panic 时返回 500
func RecoveryMiddleware(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorBody{Code: CodeInternalServerError, Message: "internal server error"},
		})
	})
}
