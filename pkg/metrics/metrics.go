// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secretshare.
//
// go-secretshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for secret sharing
// operations. It exposes operation counters, duration histograms, error
// counters and the Asmuth-Bloom modulus search histogram.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all secret sharing metrics
	Namespace = "secretshare"

	// Label names
	LabelOperation = "operation"
	LabelScheme    = "scheme"
	LabelStatus    = "status"
	LabelErrorType = "error_type"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpShare       = "share"
	OpRestore     = "restore"
	OpInterpolate = "interpolate"
	OpSplit       = "split"
	OpCombine     = "combine"

	// Scheme names
	SchemeShamir      = "shamir"
	SchemeAsmuthBloom = "asmuth-bloom"
	SchemeSSSA        = "sssa"
)

var (
	// OperationsTotal tracks the number of operations by type, scheme and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of secret sharing operations by type, scheme, and status",
		},
		[]string{LabelOperation, LabelScheme, LabelStatus},
	)

	// OperationDuration tracks the duration of operations in seconds.
	// Big primes make the upper buckets reachable.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of secret sharing operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{LabelOperation, LabelScheme},
	)

	// ErrorsTotal tracks errors by operation, scheme and error kind.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation, scheme, and error type",
		},
		[]string{LabelOperation, LabelScheme, LabelErrorType},
	)

	// FragmentsTotal counts fragments emitted by successful splits.
	FragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fragments_total",
			Help:      "Total number of fragments produced by scheme",
		},
		[]string{LabelScheme},
	)

	// ModulusSearchAttempts observes how many candidate modulus sets the
	// Asmuth-Bloom search tried before one satisfied the inequality.
	ModulusSearchAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "modulus_search_attempts",
			Help:      "Candidate modulus sets tried per Asmuth-Bloom split",
			Buckets:   []float64{1, 2, 3, 4, 8, 16, 32, 64},
		},
	)

	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordOperation records an operation with its duration and status.
//
// Example:
//
//	start := time.Now()
//	secret, err := engine.Restore(fragments, modulus)
//	status := StatusSuccess
//	if err != nil {
//	    status = StatusError
//	}
//	RecordOperation(OpRestore, SchemeShamir, status, time.Since(start).Seconds())
func RecordOperation(operation, scheme, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, scheme, status).Inc()
	OperationDuration.WithLabelValues(operation, scheme).Observe(duration)
}

// RecordError records an error event. errorType should be a stable kind
// such as "insufficient_fragments".
func RecordError(operation, scheme, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, scheme, errorType).Inc()
}

// RecordFragments adds n produced fragments for a scheme.
func RecordFragments(scheme string, n int) {
	if !enabled.Load() || n <= 0 {
		return
	}
	FragmentsTotal.WithLabelValues(scheme).Add(float64(n))
}

// RecordModulusSearch observes the number of attempts a modulus search took.
func RecordModulusSearch(attempts int) {
	if !enabled.Load() {
		return
	}
	ModulusSearchAttempts.Observe(float64(attempts))
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
