package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func do(r *gin.Engine, header map[string]string) int {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr.Code
}

func TestAPIKeyAuth(t *testing.T) {
	keys := []string{"sk_test_12345678"}

	t.Run("未启用", func(t *testing.T) {
		r := newEngine(APIKeyAuth(AuthConfig{Enabled: false}, nil))
		assert.Equal(t, http.StatusOK, do(r, nil))
	})

	r := newEngine(APIKeyAuth(AuthConfig{Enabled: true, APIKeys: keys}, nil))
	tests := []struct {
		name   string
		header map[string]string
		code   int
	}{
		{"缺少key", nil, http.StatusUnauthorized},
		{"无效key", map[string]string{"X-API-Key": "nope"}, http.StatusForbidden},
		{"X-API-Key", map[string]string{"X-API-Key": keys[0]}, http.StatusOK},
		{"Bearer", map[string]string{"Authorization": "Bearer " + keys[0]}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, do(r, tt.header))
		})
	}
}

func TestInternalAuth(t *testing.T) {
	r := newEngine(InternalAuth([]string{"internal-key-0001"}, nil))
	assert.Equal(t, http.StatusUnauthorized, do(r, nil))
	assert.Equal(t, http.StatusOK, do(r, map[string]string{"X-Internal-API-Key": "internal-key-0001"}))

	empty := newEngine(InternalAuth(nil, nil))
	assert.Equal(t, http.StatusForbidden, do(empty, map[string]string{"X-API-Key": "anything"}), "没有配置 key 时拒绝")
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(0.001, 1))
	assert.Equal(t, http.StatusOK, do(r, nil))
	assert.Equal(t, http.StatusTooManyRequests, do(r, nil))

	open := newEngine(RateLimit(0, 0))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(open, nil))
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk_t****5678", maskAPIKey("sk_test_12345678"))
}

func TestCORSPreflight(t *testing.T) {
	r := newEngine(CORS())
	r.OPTIONS("/x", func(c *gin.Context) {})
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
