package app

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tasifacuj/mission-control/internal/metrics"
	"github.com/tasifacuj/mission-control/internal/outbound"
)

// NewMetrics 初始化注册表与应用指标
func NewMetrics() (*prometheus.Registry, *metrics.AppMetrics) {
	reg := metrics.NewRegistry()
	return reg, metrics.NewAppMetrics(reg)
}

type dispatcherStats interface {
	Stats(ctx context.Context) outbound.DispatcherStats
}

// dispatcherCollector 抓取时读取出站消费者的计数
type dispatcherCollector struct {
	src     dispatcherStats
	pending *prometheus.Desc
	events  *prometheus.Desc
}

// RegisterDispatcherMetrics 暴露 msp_outbound_pending 与 msp_outbound_events_total{event}
func RegisterDispatcherMetrics(reg prometheus.Registerer, d dispatcherStats) error {
	return reg.Register(&dispatcherCollector{
		src: d,
		pending: prometheus.NewDesc("msp_outbound_pending",
			"Requests waiting in the outbound queue.", nil, nil),
		events: prometheus.NewDesc("msp_outbound_events_total",
			"Outbound dispatcher outcomes.", []string{"event"}, nil),
	})
}

func (c *dispatcherCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pending
	ch <- c.events
}

func (c *dispatcherCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s := c.src.Stats(ctx)
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(s.Pending))
	for event, v := range map[string]int64{
		"sent":    s.Sent,
		"failed":  s.Failed,
		"retried": s.Retried,
		"dropped": s.Dropped,
	} {
		ch <- prometheus.MustNewConstMetric(c.events, prometheus.CounterValue, float64(v), event)
	}
}
