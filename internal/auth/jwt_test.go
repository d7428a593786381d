package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(validator *auth.TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(auth.JWTAuthMiddleware(validator))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id")+"/"+c.GetString("role"))
	})
	return r
}

func doRequest(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestJWTAuthMiddleware_ValidToken 测试有效 Token
func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	validator := auth.NewTokenValidator("secret", "rems")
	token, err := validator.IssueToken("7", "manager", time.Hour)
	require.NoError(t, err)

	w := doRequest(newRouter(validator), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7/manager", w.Body.String())
}

// TestJWTAuthMiddleware_Rejects 测试各类无效请求
func TestJWTAuthMiddleware_Rejects(t *testing.T) {
	validator := auth.NewTokenValidator("secret", "rems")
	other := auth.NewTokenValidator("other-secret", "rems")
	wrongIssuer := auth.NewTokenValidator("secret", "someone-else")

	badSig, err := other.IssueToken("7", "", time.Hour)
	require.NoError(t, err)
	expired, err := validator.IssueToken("7", "", -time.Minute)
	require.NoError(t, err)
	foreign, err := wrongIssuer.IssueToken("7", "", time.Hour)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "rems", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage", "Bearer not-a-token"},
		{"bad signature", "Bearer " + badSig},
		{"expired", "Bearer " + expired},
		{"wrong issuer", "Bearer " + foreign},
		{"no subject", "Bearer " + noSubject},
	}
	r := newRouter(validator)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"UNAUTHORIZED"`)
		})
	}
}

// TestValidateToken_RejectsOtherAlgorithms 测试拒绝非 HS256 签名
func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	validator := auth.NewTokenValidator("secret", "")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "7"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}
