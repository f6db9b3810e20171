// Package metrics 提供 Prometheus 指标集合：HTTP 请求、业务计数与 outbox 投递
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
)

const namespace = "optionsdesk"

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 定价次数
	PricingTotal *prometheus.CounterVec
	// 盈亏分析次数
	PayoffTotal prometheus.Counter
	// 风险预警数量
	AlertsTotal *prometheus.CounterVec
	// 上传文件字节数
	UploadBytes prometheus.Counter
	// 定价缓存命中
	CacheHits *prometheus.CounterVec
	// outbox 投递结果
	OutboxRelayed *prometheus.CounterVec
}

// New 创建指标实例，使用独立 registry，测试中可重复创建
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PricingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_calculations_total",
			Help:      "Black-Scholes calculations by option type",
		}, []string{"option_type"}),
		PayoffTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payoff_calculations_total",
			Help:      "Payoff analyses",
		}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_alerts_total",
			Help:      "Risk alerts raised by severity",
		}, []string{"severity"}),
		UploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_upload_bytes_total",
			Help:      "Uploaded file bytes",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_cache_lookups_total",
			Help:      "Pricing cache lookups by result",
		}, []string{"result"}),
		OutboxRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_messages_total",
			Help:      "Outbox relay attempts by result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PricingTotal,
		m.PayoffTotal,
		m.AlertsTotal,
		m.UploadBytes,
		m.CacheHits,
		m.OutboxRelayed,
	)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回指标暴露 handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordPricing 记录一次定价
func (m *Metrics) RecordPricing(optionType string) {
	if m == nil {
		return
	}
	m.PricingTotal.WithLabelValues(optionType).Inc()
}

// RecordPayoff 记录一次盈亏分析
func (m *Metrics) RecordPayoff() {
	if m == nil {
		return
	}
	m.PayoffTotal.Inc()
}

// RecordAlert 记录一条预警
func (m *Metrics) RecordAlert(severity string) {
	if m == nil {
		return
	}
	m.AlertsTotal.WithLabelValues(severity).Inc()
}

// RecordUpload 记录上传字节数
func (m *Metrics) RecordUpload(size int64) {
	if m == nil {
		return
	}
	m.UploadBytes.Add(float64(size))
}

// RecordCacheLookup 记录缓存命中情况
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheHits.WithLabelValues(result).Inc()
}

// RecordOutbox 记录 outbox 投递结果
func (m *Metrics) RecordOutbox(result string) {
	if m == nil {
		return
	}
	m.OutboxRelayed.WithLabelValues(result).Inc()
}

// StartHTTPServer 在独立端口暴露指标，返回的 server 用于优雅关闭
func (m *Metrics) StartHTTPServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "Prometheus HTTP server stopped", "error", err)
		}
	}()
	return srv
}
