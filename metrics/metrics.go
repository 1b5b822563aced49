// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package metrics exports context and resource cache state to Prometheus.
//
// Registries and contexts are not safe for concurrent use, so metrics are
// pushed by the owning goroutine through Observe* calls rather than pulled
// at scrape time.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/ggctx/grcontext"
	"github.com/gogpu/ggctx/host"
	"github.com/gogpu/ggctx/surface"
)

const namespace = "ggctx"

// Metrics holds the collectors.
type Metrics struct {
	contexts   prometheus.Gauge
	cacheUsed  *prometheus.GaugeVec
	cacheLimit *prometheus.GaugeVec
	cacheFree  *prometheus.GaugeVec
	purged     *prometheus.GaugeVec
	resolves   *prometheus.CounterVec
	surfaces   *prometheus.CounterVec
	fallbacks  prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		contexts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "contexts",
			Help:      "Number of registered device contexts.",
		}),
		cacheUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resource_cache_used_bytes",
			Help:      "Bytes held by budgeted GPU resources.",
		}, []string{"context"}),
		cacheLimit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resource_cache_limit_bytes",
			Help:      "Advisory resource cache budget.",
		}, []string{"context"}),
		cacheFree: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resource_cache_purgeable_bytes",
			Help:      "Bytes held by purgeable scratch resources.",
		}, []string{"context"}),
		purged: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resource_cache_purged",
			Help:      "Resources purged since the context was created.",
		}, []string{"context"}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolves_total",
			Help:      "Context resolutions by result.",
		}, []string{"result"}),
		surfaces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surfaces_total",
			Help:      "Surfaces created by kind.",
		}, []string{"kind"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surface_fallbacks_total",
			Help:      "Best-available requests served by the CPU raster backend.",
		}),
	}
	reg.MustRegister(m.contexts, m.cacheUsed, m.cacheLimit, m.cacheFree, m.purged,
		m.resolves, m.surfaces, m.fallbacks)

	for _, c := range []grcontext.ErrorCode{
		grcontext.CodeOK,
		grcontext.CodeNoCurrentContext,
		grcontext.CodeInterfaceCreationFailed,
		grcontext.CodeContextCreationFailed,
	} {
		m.resolves.WithLabelValues(c.String())
	}
	return m
}

// ObserveRegistry replaces the per-context series with the state of r.
func (m *Metrics) ObserveRegistry(r *grcontext.Registry) {
	m.contexts.Set(float64(r.Len()))
	for _, v := range []*prometheus.GaugeVec{m.cacheUsed, m.cacheLimit, m.cacheFree, m.purged} {
		v.Reset()
	}
	r.Each(func(h host.Handle, ctx *grcontext.DirectContext) {
		label := strconv.FormatUint(uint64(h), 10)
		s := ctx.CacheStats()
		m.cacheUsed.WithLabelValues(label).Set(float64(s.UsedBytes))
		m.cacheLimit.WithLabelValues(label).Set(float64(s.LimitBytes))
		m.cacheFree.WithLabelValues(label).Set(float64(s.PurgeableBytes))
		m.purged.WithLabelValues(label).Set(float64(s.Purged))
	})
}

// ObserveResolve counts a resolution outcome.
func (m *Metrics) ObserveResolve(code grcontext.ErrorCode) {
	m.resolves.WithLabelValues(code.String()).Inc()
}

// ObserveSurface counts a created surface. best reports whether it came
// from a best-available request, in which case a raster surface is a
// fallback.
func (m *Metrics) ObserveSurface(kind surface.Kind, best bool) {
	m.surfaces.WithLabelValues(kind.String()).Inc()
	if best && kind == surface.KindRaster {
		m.fallbacks.Inc()
	}
}
