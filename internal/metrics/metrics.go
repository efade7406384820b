// Package metrics records run counters on a private Prometheus registry and
// dumps them in the text exposition format for node_exporter's textfile
// collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the run's collectors. A nil *Recorder discards everything.
type Recorder struct {
	reg *prometheus.Registry

	rows         *prometheus.CounterVec // ods14_rows_total
	regionRules  *prometheus.CounterVec // ods14_region_resolution_total
	stepDuration *prometheus.SummaryVec // ods14_step_duration_seconds
}

// New builds a Recorder with its own registry.
func New() (*Recorder, error) {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ods14_rows_total",
				Help: "Rows handled per stage and kind (extracted, merged, loaded, ...).",
			},
			[]string{"stage", "kind"},
		),
		regionRules: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ods14_region_resolution_total",
				Help: "Microplastics rows resolved by each region fallback rule.",
			},
			[]string{"rule"},
		),
		stepDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "ods14_step_duration_seconds",
				Help:       "Duration of pipeline steps in seconds.",
				Objectives: map[float64]float64{0.5: 0.05, 0.99: 0.001},
			},
			[]string{"step", "status"},
		),
	}
	for _, c := range []prometheus.Collector{r.rows, r.regionRules, r.stepDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return r, nil
}

// Rows adds n to the row counter for stage and kind.
func (r *Recorder) Rows(stage, kind string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.rows.WithLabelValues(stage, kind).Add(float64(n))
}

// RegionRule adds n rows resolved by rule.
func (r *Recorder) RegionRule(rule string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.regionRules.WithLabelValues(rule).Add(float64(n))
}

// Step records a step's duration; err decides the status label.
func (r *Recorder) Step(step string, d time.Duration, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.stepDuration.WithLabelValues(step, status).Observe(d.Seconds())
}

// Time runs fn as step and records its duration.
func (r *Recorder) Time(step string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.Step(step, time.Since(start), err)
	return err
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// WriteTextfile writes the registry to path atomically. An empty path or a
// nil Recorder is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
