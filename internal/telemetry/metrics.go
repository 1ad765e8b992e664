package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// RunStats is the outcome of one lottery run.
type RunStats struct {
	Period    int
	PoolSize  int
	Existing  int
	Drawn     int
	Shortfall int
	Action    string
	Failed    bool
}

// Metrics holds the gauges describing the last run. The process is a
// short-lived job, so the values are pushed rather than scraped.
type Metrics struct {
	registry *prometheus.Registry

	period    prometheus.Gauge
	poolSize  prometheus.Gauge
	existing  prometheus.Gauge
	drawn     prometheus.Gauge
	shortfall prometheus.Gauge
	lastRun   prometheus.Gauge
	success   prometheus.Gauge
	action    *prometheus.GaugeVec
}

// NewMetrics registers the run gauges on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		period: factory.NewGauge(prometheus.GaugeOpts{
			Name: "putzplan_target_week",
			Help: "calendar week the last run targeted",
		}),
		poolSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "putzplan_pool_size",
			Help: "eligible candidates in the last run",
		}),
		existing: factory.NewGauge(prometheus.GaugeOpts{
			Name: "putzplan_existing_participants",
			Help: "participants already in the target week before the draw",
		}),
		drawn: factory.NewGauge(prometheus.GaugeOpts{
			Name: "putzplan_drawn_participants",
			Help: "participants drawn in the last run",
		}),
		shortfall: factory.NewGauge(prometheus.GaugeOpts{
			Name: "putzplan_shortfall",
			Help: "open slots the pool could not fill",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "putzplan_last_run_timestamp_seconds",
			Help: "unix time of the last run",
		}),
		success: factory.NewGauge(prometheus.GaugeOpts{
			Name: "putzplan_last_run_success",
			Help: "1 if the last run completed, 0 if it aborted",
		}),
		action: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "putzplan_record_action",
			Help: "write performed on the assignment record (create, update, none)",
		}, []string{"action"}),
	}
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records a run.
func (m *Metrics) Observe(s RunStats, at time.Time) {
	m.lastRun.Set(float64(at.Unix()))
	if s.Failed {
		m.success.Set(0)
		return
	}
	m.success.Set(1)
	m.period.Set(float64(s.Period))
	m.poolSize.Set(float64(s.PoolSize))
	m.existing.Set(float64(s.Existing))
	m.drawn.Set(float64(s.Drawn))
	m.shortfall.Set(float64(s.Shortfall))
	m.action.Reset()
	if s.Action != "" {
		m.action.WithLabelValues(s.Action).Set(1)
	}
}

// Push sends the gauges to a Pushgateway. An empty url is a no-op.
func (m *Metrics) Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, ServiceName).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
