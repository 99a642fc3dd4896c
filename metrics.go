// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/v-jkegler/toktrie/internal/metrics"
)

// metricsRecorder is the thin internal wrapper between the Builder/Trie
// hot paths and the package's Prometheus collectors. A nil *metricsRecorder
// (the zero value) records nothing; every Trie made by Builder.Build or Load
// carries a non-nil one, and the nil-safety means a Trie without one
// records nothing instead of panicking.
type metricsRecorder struct{}

func (m *metricsRecorder) observeLoad(start time.Time, sizeBytes int) {
	if m == nil {
		return
	}
	metrics.LoadLatency.Observe(time.Since(start).Seconds())
	metrics.LoadBytes.Observe(float64(sizeBytes))
}

func (m *metricsRecorder) observeBias(op string, start time.Time) {
	if m == nil {
		return
	}
	metrics.BiasCalls.WithLabelValues(op).Inc()
	metrics.BiasLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *metricsRecorder) observeTokensAllowed(n int) {
	if m == nil {
		return
	}
	metrics.TokensAllowed.Observe(float64(n))
}

// RegisterMetrics registers this package's Prometheus collectors with reg,
// in addition to the default global registry they self-register with on
// import. Use this to expose them under a custom registry (e.g. the one
// provided by sigs.k8s.io/controller-runtime/pkg/metrics).
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range metrics.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
