package api

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tasifacuj/mission-control/internal/metrics"
	"github.com/tasifacuj/mission-control/internal/msp"
	"github.com/tasifacuj/mission-control/internal/outbound"
	"github.com/tasifacuj/mission-control/internal/storage"
	"github.com/tasifacuj/mission-control/internal/storage/models"
	"github.com/tasifacuj/mission-control/internal/telemetry"
)

// OutboundStats 出站统计来源（Dispatcher）
type OutboundStats interface {
	Stats(ctx context.Context) outbound.DispatcherStats
}

// SampleHistory 遥测历史来源（gormrepo）
type SampleHistory interface {
	ListSamples(ctx context.Context, messageID uint16, limit int) ([]models.TelemetrySample, error)
}

// TelemetryHandler 遥测API处理器
type TelemetryHandler struct {
	router   *telemetry.Router
	outbound OutboundStats
	history  SampleHistory
	metrics  *metrics.AppMetrics
	logger   *zap.Logger
}

// NewTelemetryHandler outbound/history/metrics 可为 nil
func NewTelemetryHandler(router *telemetry.Router, out OutboundStats, history SampleHistory, m *metrics.AppMetrics, logger *zap.Logger) *TelemetryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelemetryHandler{router: router, outbound: out, history: history, metrics: m, logger: logger}
}

// statusFor 错误到 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, msp.ErrUnknownID),
		errors.Is(err, telemetry.ErrNotSubscribed),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, msp.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, msp.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, telemetry.ErrAlreadySubscribed):
		return http.StatusConflict
	case errors.Is(err, outbound.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, outbound.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *TelemetryHandler) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("api request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func (h *TelemetryHandler) paramID(c *gin.Context) (msp.ID, bool) {
	id, err := msp.ParseID(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return 0, false
	}
	return id, true
}

type messageInfo struct {
	ID   msp.ID `json:"id"`
	Name string `json:"name"`
	V2   bool   `json:"v2"`
}

// ListMessages 已实现的消息类型
// @Router /api/messages [get]
func (h *TelemetryHandler) ListMessages(c *gin.Context) {
	ids := msp.Supported()
	out := make([]messageInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, messageInfo{ID: id, Name: id.String(), V2: id.IsV2()})
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// ListTelemetry 所有最新快照
// @Router /api/telemetry [get]
func (h *TelemetryHandler) ListTelemetry(c *gin.Context) {
	list, err := h.router.Snapshots(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"telemetry": list})
}

// GetTelemetry 单条消息的最新快照
// @Router /api/telemetry/{name} [get]
func (h *TelemetryHandler) GetTelemetry(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	snap, err := h.router.Snapshot(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ListSubscriptions 订阅状态
// @Router /api/subscriptions [get]
func (h *TelemetryHandler) ListSubscriptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subscriptions": h.router.Subscriptions()})
}

type subscribeRequest struct {
	Message string  `json:"message" binding:"required"`
	RateHz  float64 `json:"rate_hz" binding:"gte=0"`
}

// CreateSubscription 新增订阅
// @Router /api/subscriptions [post]
func (h *TelemetryHandler) CreateSubscription(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := msp.ParseID(req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	sub, err := h.router.SubscribeID(id, req.RateHz)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        id,
		"name":      id.String(),
		"automatic": sub.IsAutomatic(),
	})
}

// DeleteSubscription 取消订阅
// @Router /api/subscriptions/{name} [delete]
func (h *TelemetryHandler) DeleteSubscription(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	if !h.router.Unsubscribe(id) {
		h.fail(c, telemetry.ErrNotSubscribed)
		return
	}
	c.Status(http.StatusNoContent)
}

type rateRequest struct {
	RateHz *float64 `json:"rate_hz" binding:"required"`
}

// SetRate 修改订阅的请求频率；rate_hz 为 0 停止自动请求
// @Router /api/subscriptions/{name}/rate [put]
func (h *TelemetryHandler) SetRate(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	running, err := h.router.SetRate(id, *req.RateHz)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": id.String(), "rate_hz": *req.RateHz, "running": running})
}

// RequestOnce 为订阅发起一次手动请求
// @Router /api/subscriptions/{name}/request [post]
func (h *TelemetryHandler) RequestOnce(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	req, err := h.router.Request(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, req)
}

type rcRequest struct {
	Channels []uint16 `json:"channels" binding:"required,min=1,max=32"`
}

// SendRawRc 下发 MSP_SET_RAW_RC
// @Router /api/rc [post]
func (h *TelemetryHandler) SendRawRc(c *gin.Context) {
	var body rcRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg := msp.NewSetRawRc(h.router.Firmware())
	msg.Channels = body.Channels
	req, err := h.router.Send(c.Request.Context(), msg)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, req)
}

type ingestRequest struct {
	Message    string `json:"message" binding:"required"`
	PayloadHex string `json:"payload_hex"`
}

// Ingest 外部分帧器送入一条响应载荷
// @Router /api/ingest [post]
func (h *TelemetryHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.countIngest(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := msp.ParseID(req.Message)
	if err != nil {
		h.countIngest(false)
		h.fail(c, err)
		return
	}
	payload, err := hex.DecodeString(strings.ReplaceAll(req.PayloadHex, " ", ""))
	if err != nil {
		h.countIngest(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload_hex: " + err.Error()})
		return
	}

	snap, err := h.router.Route(c.Request.Context(), id, payload)
	h.countIngest(err == nil)
	if err != nil {
		if snap != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "snapshot": snap})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *TelemetryHandler) countIngest(ok bool) {
	if h.metrics != nil {
		h.metrics.IngestTotal.WithLabelValues(metrics.Result(ok)).Inc()
	}
}

// OutboundStats 出站队列统计
// @Router /api/outbound/stats [get]
func (h *TelemetryHandler) OutboundStats(c *gin.Context) {
	if h.outbound == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "outbound dispatcher not configured"})
		return
	}
	c.JSON(http.StatusOK, h.outbound.Stats(c.Request.Context()))
}

// History 遥测历史；?message=&limit=
// @Router /api/history [get]
func (h *TelemetryHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history not enabled"})
		return
	}
	var messageID uint16
	if v := c.Query("message"); v != "" {
		id, err := msp.ParseID(v)
		if err != nil {
			h.fail(c, err)
			return
		}
		messageID = uint16(id)
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	list, err := h.history.ListSamples(c.Request.Context(), messageID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": list})
}
