// Package metrics 提供 Prometheus 指标集合：HTTP、状态流转、面试、通知
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/jobportal/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 申请状态流转计数
	StatusTransitionsTotal *prometheus.CounterVec
	// 面试操作计数
	InterviewsTotal *prometheus.CounterVec
	// 通知发送计数
	NotificationsTotal *prometheus.CounterVec
}

// New 创建并注册指标实例，每个实例使用独立的 registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobportal",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobportal",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		StatusTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobportal",
			Subsystem: serviceName,
			Name:      "status_transitions_total",
			Help:      "Application status transitions",
		}, []string{"from", "to"}),
		InterviewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobportal",
			Subsystem: serviceName,
			Name:      "interviews_total",
			Help:      "Interview write operations",
		}, []string{"action"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobportal",
			Subsystem: serviceName,
			Name:      "notifications_total",
			Help:      "Notifications by channel and result",
		}, []string{"channel", "result"}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StatusTransitionsTotal,
		m.InterviewsTotal,
		m.NotificationsTotal,
	)
	return m
}

// Handler 返回指标暴露的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// NewServer 创建独立的 Prometheus HTTP 服务器
func (m *Metrics) NewServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Prometheus HTTP server configured", "addr", addr, "path", path)
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTransition 记录状态流转
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordInterview 记录面试操作：scheduled, updated, deleted, feedback
func (m *Metrics) RecordInterview(action string) {
	if m == nil {
		return
	}
	m.InterviewsTotal.WithLabelValues(action).Inc()
}

// RecordNotification 记录通知结果：sent, queued, failed
func (m *Metrics) RecordNotification(channel, result string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(channel, result).Inc()
}
