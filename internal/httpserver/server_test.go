package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
	appmetrics "github.com/tasifacuj/mission-control/internal/metrics"
)

func serve(s *Server, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestProbesAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := cfgpkg.HTTPConfig{Addr: ":0", ReadTimeout: time.Second, WriteTimeout: time.Second}

	t.Run("就绪并暴露指标", func(t *testing.T) {
		reg := appmetrics.NewRegistry()
		srv := New(cfg, Options{MetricsPath: "/m", Metrics: appmetrics.Handler(reg), Ready: func() bool { return true }})
		assert.Equal(t, http.StatusOK, serve(srv, "/healthz").Code)
		assert.Equal(t, http.StatusOK, serve(srv, "/readyz").Code)
		assert.Equal(t, http.StatusOK, serve(srv, "/m").Code)
	})

	t.Run("未就绪且没有指标", func(t *testing.T) {
		srv := New(cfg, Options{Ready: func() bool { return false }})
		rr := serve(srv, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "not-ready", rr.Body.String())
		assert.Equal(t, http.StatusNotFound, serve(srv, "/metrics").Code)
	})
}

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	srv := New(cfgpkg.HTTPConfig{}, Options{Logger: zap.New(core)})
	srv.Register(func(r *gin.Engine) {
		r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	})

	serve(srv, "/healthz")
	serve(srv, "/boom")

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "/healthz", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, 500, entries[1].ContextMap()["status"])
}

func TestListenServeShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(cfgpkg.HTTPConfig{Addr: "127.0.0.1:0"}, Options{})
	srv.Register(func(r *gin.Engine) {
		r.GET("/extra", func(c *gin.Context) { c.String(http.StatusOK, "extra") })
	})
	assert.Error(t, srv.Serve(), "未 Listen")

	require.NoError(t, srv.Listen())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	resp, err := http.Get("http://" + srv.Addr() + "/extra")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "extra", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-errCh, "Shutdown 后 Serve 返回 nil")
}
