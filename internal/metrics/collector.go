// Copyright 2023 Peter Hebert. Licensed under the MIT license.

// Package metrics exposes Prometheus collectors for the trie's hot paths:
// construction/load time and bias-engine call count/latency. None of this
// is required for correctness; it exists purely for observability, and no
// collector is touched more than once per call (no per-node metrics on the
// bias path).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// LoadLatency observes how long Builder.Build or Load took, in seconds.
	LoadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "toktrie", Subsystem: "trie", Name: "load_latency_seconds",
		Help:    "Latency of building or loading a trie, in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	// LoadBytes observes the serialized size of a loaded trie, in bytes.
	LoadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "toktrie", Subsystem: "trie", Name: "load_bytes",
		Help:    "Size in bytes of a trie's serialized form.",
		Buckets: prometheus.ExponentialBuckets(1<<10, 4, 10),
	})

	// BiasCalls counts calls to AddBias and HasValidExtensions.
	BiasCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "toktrie", Subsystem: "bias", Name: "calls_total",
		Help: "Total number of bias-engine calls, by operation.",
	}, []string{"op"})

	// BiasLatency observes the wall-clock time of a single bias-engine call.
	BiasLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "toktrie", Subsystem: "bias", Name: "latency_seconds",
		Help:    "Latency of a single bias-engine call, in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	// TokensAllowed observes the number of tokens AddBias marked allowed.
	TokensAllowed = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "toktrie", Subsystem: "bias", Name: "tokens_allowed",
		Help:    "Number of vocabulary tokens AddBias marked allowed per call.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})
)

// Collectors returns every collector this package registers, for callers
// that want to register them with a custom prometheus.Registerer instead of
// the default global one.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{LoadLatency, LoadBytes, BiasCalls, BiasLatency, TokensAllowed}
}

func init() {
	prometheus.MustRegister(Collectors()...)
}
