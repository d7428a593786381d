package service

import "context"

type contextKey int

const (
	userIDKey contextKey = iota
	requestInfoKey
)

// RequestInfo 审计需要的请求信息
type RequestInfo struct {
	RequestID string
	IP        string
	UserAgent string
}

// WithUserID 在 context 中保存当前用户 ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext 获取当前用户 ID,未认证时返回空字符串
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// WithRequestInfo 在 context 中保存请求信息
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey, info)
}

// RequestInfoFromContext 获取请求信息
func RequestInfoFromContext(ctx context.Context) RequestInfo {
	if v, ok := ctx.Value(requestInfoKey).(RequestInfo); ok {
		return v
	}
	return RequestInfo{}
}

// operatorFromContext 状态历史中的操作人,无用户时为 system
func operatorFromContext(ctx context.Context) string {
	if id := UserIDFromContext(ctx); id != "" {
		return id
	}
	return "system"
}
