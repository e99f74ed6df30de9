package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	DecodeTotal            *prometheus.CounterVec // labels: message, result=ok|error
	RequestTotal           *prometheus.CounterVec // labels: message
	SubscriptionsAutomatic prometheus.Gauge       // 当前带定时器的订阅数
	OutboundEnqueueTotal   *prometheus.CounterVec // labels: result=ok|rate_limited|error
	OutboundRateLimited    prometheus.Counter
	IngestTotal            *prometheus.CounterVec // labels: result=ok|error
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		DecodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "msp_decode_total",
			Help: "MSP payload decode attempts by message.",
		}, []string{"message", "result"}),
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "msp_request_total",
			Help: "MSP requests issued by message.",
		}, []string{"message"}),
		SubscriptionsAutomatic: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "msp_subscriptions_automatic",
			Help: "Subscriptions currently polled by a timer.",
		}),
		OutboundEnqueueTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "msp_outbound_enqueue_total",
			Help: "Outbound request enqueue attempts.",
		}, []string{"result"}),
		OutboundRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "msp_outbound_rate_limited_total",
			Help: "Outbound requests rejected by the rate limiter.",
		}),
		IngestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "msp_ingest_total",
			Help: "Payloads received through the ingest endpoint.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.DecodeTotal, m.RequestTotal, m.SubscriptionsAutomatic, m.OutboundEnqueueTotal, m.OutboundRateLimited, m.IngestTotal)
	return m
}

// Result 将布尔结果映射为 ok/error 标签
func Result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
