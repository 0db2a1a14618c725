// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package invoker

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EnvMetricsFile names a file the invocation metrics are written to, in the
// node exporter textfile format, when the invocation ends.
const EnvMetricsFile = "MVNBOOT_METRICS_FILE"

type stageMetrics struct {
	duration *prometheus.HistogramVec
}

func newStageMetrics(reg prometheus.Registerer) (*stageMetrics, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mvnboot_stage_duration_seconds",
		Help:    "Duration of each invocation stage.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"stage", "outcome"})
	if err := reg.Register(duration); err != nil {
		return nil, fmt.Errorf("register stage histogram: %w", err)
	}
	return &stageMetrics{duration: duration}, nil
}

func (m *stageMetrics) observe(stage string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.duration.WithLabelValues(stage, outcome).Observe(time.Since(start).Seconds())
}

// writeMetrics dumps reg to path.
func writeMetrics(path string, reg prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
