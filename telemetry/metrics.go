package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports per-frame surface state to Prometheus.
// Each Metrics owns its registry, so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	energy     prometheus.Gauge
	maxHeight  prometheus.Gauge
	causticMax prometheus.Gauge
	floaters   prometheus.Gauge
	drops      *prometheus.CounterVec
	steps      prometheus.Counter
	frameTime  prometheus.Histogram
	phaseTime  *prometheus.GaugeVec
	stepTime   prometheus.Gauge

	server *http.Server
}

// FrameSample is the per-frame data exported by Metrics.
type FrameSample struct {
	Energy       float64
	MaxHeight    float64
	CausticMax   float64
	Floaters     int
	AmbientDrops int
	PointerDrops int
	Steps        int
	FrameSeconds float64
}

// NewMetrics registers the surface metrics under namespace.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		energy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "surface_energy",
			Help:      "Sum of squared heights of the active grid",
		}),
		maxHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "surface_max_height",
			Help:      "Largest absolute height of the active grid",
		}),
		causticMax: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "caustics_max_intensity",
			Help:      "Brightest caustics texel, 1 is the flat-surface level",
		}),
		floaters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "floaters",
			Help:      "Number of floaters on the surface",
		}),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drops_total",
			Help:      "Disturbances injected, by source",
		}, []string{"source"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integration_steps_total",
			Help:      "Wave integration steps",
		}),
		frameTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_seconds",
			Help:      "Wall time of the simulation part of a frame",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		phaseTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_seconds",
			Help:      "Rolling average wall time per pipeline phase",
		}, []string{"phase"}),
		stepTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "step_seconds",
			Help:      "Rolling average wall time of one integration step",
		}),
	}

	reg.MustRegister(m.energy, m.maxHeight, m.causticMax, m.floaters, m.drops, m.steps, m.frameTime, m.phaseTime, m.stepTime)
	return m
}

// Registry returns the registry backing the metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveFrame records one frame.
func (m *Metrics) ObserveFrame(s FrameSample) {
	if m == nil {
		return
	}
	m.energy.Set(s.Energy)
	m.maxHeight.Set(s.MaxHeight)
	m.causticMax.Set(s.CausticMax)
	m.floaters.Set(float64(s.Floaters))
	m.drops.WithLabelValues("ambient").Add(float64(s.AmbientDrops))
	m.drops.WithLabelValues("pointer").Add(float64(s.PointerDrops))
	m.steps.Add(float64(s.Steps))
	m.frameTime.Observe(s.FrameSeconds)
}

// ObservePerf publishes the perf collector's phase averages and step cost.
func (m *Metrics) ObservePerf(stats PerfStats) {
	if m == nil {
		return
	}
	for _, ph := range Phases {
		m.phaseTime.WithLabelValues(ph.String()).Set(stats.PhaseAvg[ph].Seconds())
	}
	m.stepTime.Set(stats.StepCost.Seconds())
}

// Serve exposes /metrics on addr in the background.
func (m *Metrics) Serve(addr string) {
	if m == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		slog.Info("metrics server listening", "addr", addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("metrics server exited", "error", err)
		}
	}()
}

// Close shuts the metrics server down, if running.
func (m *Metrics) Close() error {
	if m == nil || m.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.server.Shutdown(ctx)
}
