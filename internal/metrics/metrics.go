// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package metrics exports cache and HTTP server activity to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hopeline/sitectl/internal/cache"
)

const namespace = "sitectl"

// Metrics owns a private registry. It implements cache.Metrics.
type Metrics struct {
	registry        *prometheus.Registry
	cacheRequests   *prometheus.CounterVec
	cacheExpired    *prometheus.CounterVec
	cacheInvalidate *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

var _ cache.Metrics = (*Metrics)(nil)

// New returns a Metrics with every collector registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	cacheRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Cache lookups by category and result.",
	}, []string{"category", "result"})

	cacheExpired := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_expired_total",
		Help:      "Entries dropped by expiry sweeps.",
	}, []string{"category"})

	cacheInvalidate := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Explicit cache invalidations.",
	}, []string{"category"})

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(cacheRequests, cacheExpired, cacheInvalidate, httpRequests, httpDuration)

	return &Metrics{
		registry:        registry,
		cacheRequests:   cacheRequests,
		cacheExpired:    cacheExpired,
		cacheInvalidate: cacheInvalidate,
		httpRequests:    httpRequests,
		httpDuration:    httpDuration,
	}
}

// storeCollector reports the live entry counts and the memory estimate of a
// store. Each scrape takes a single snapshot.
type storeCollector struct {
	info    func() cache.Info
	entries *prometheus.Desc
	memory  *prometheus.Desc
}

func newStoreCollector(info func() cache.Info) *storeCollector {
	return &storeCollector{
		info: info,
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "cache_entries"),
			"Live cache entries by category.",
			[]string{"category"}, nil,
		),
		memory: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "cache_memory_estimate_bytes"),
			"Estimated size of the live cache values.",
			nil, nil,
		),
	}
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.memory
}

func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	info := c.info()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(info.ArticlesCount), cache.CategoryArticles)
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(info.StatsCount), cache.CategoryStats)
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(info.CommentsCount), cache.CategoryComments)
	ch <- prometheus.MustNewConstMetric(c.memory, prometheus.GaugeValue, float64(info.MemoryUsageEstimate))
}

// RegisterStore reports the live entry counts and the memory estimate of a
// store at scrape time.
func (m *Metrics) RegisterStore(info func() cache.Info) {
	if m == nil || info == nil {
		return
	}
	m.registry.MustRegister(newStoreCollector(info))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Hit(category string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(category, "hit").Inc()
}

func (m *Metrics) Miss(category string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(category, "miss").Inc()
}

func (m *Metrics) Expire(category string, n int) {
	if m == nil {
		return
	}
	m.cacheExpired.WithLabelValues(category).Add(float64(n))
}

func (m *Metrics) Invalidate(category string) {
	if m == nil {
		return
	}
	m.cacheInvalidate.WithLabelValues(category).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
