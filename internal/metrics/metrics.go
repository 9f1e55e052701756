// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Split/combine operations
	splitOpsTotal      atomic.Int64
	splitErrorsTotal   atomic.Int64
	combineOpsTotal    atomic.Int64
	combineErrorsTotal atomic.Int64
	opLatencyNanos     atomic.Int64

	// MPC secure-operation metrics
	secureOpsTotal   atomic.Int64
	secureErrorsTotal atomic.Int64
	revealOpsTotal   atomic.Int64

	// Per-operation secure-computation counters
	secureAddOps      atomic.Int64
	secureSubOps      atomic.Int64
	secureMulConstOps atomic.Int64
	secureMulOps      atomic.Int64
	secureSumOps      atomic.Int64
	secureAverageOps  atomic.Int64
	secureMaxOps      atomic.Int64
	secureGreaterOps  atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordSplit records a secret-split operation with its duration and
// success status.
func (m *Metrics) RecordSplit(duration time.Duration, err error) {
	m.splitOpsTotal.Add(1)
	m.opLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.splitErrorsTotal.Add(1)
	}
}

// RecordCombine records a share-combine (reconstruction) operation.
func (m *Metrics) RecordCombine(duration time.Duration, err error) {
	m.combineOpsTotal.Add(1)
	m.opLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.combineErrorsTotal.Add(1)
	}
}

// RecordSecureOp records an MPC secure-computation operation identified by
// name (add, sub, mul_const, mul, sum, average, max, greater).
func (m *Metrics) RecordSecureOp(op string, err error) {
	m.secureOpsTotal.Add(1)
	if err != nil {
		m.secureErrorsTotal.Add(1)
	}

	switch op {
	case "add":
		m.secureAddOps.Add(1)
	case "sub":
		m.secureSubOps.Add(1)
	case "mul_const":
		m.secureMulConstOps.Add(1)
	case "mul":
		m.secureMulOps.Add(1)
	case "sum":
		m.secureSumOps.Add(1)
	case "average":
		m.secureAverageOps.Add(1)
	case "max":
		m.secureMaxOps.Add(1)
	case "greater":
		m.secureGreaterOps.Add(1)
	}
}

// RecordReveal records a reveal (reconstruction of an intermediate or final
// value during a secure computation). The CLI records one for each result
// disclosed by mpc average, max and greater; the reconstruction inside
// mpc mul is not recorded.
func (m *Metrics) RecordReveal() {
	m.revealOpsTotal.Add(1)
}

// Snapshot returns a point-in-time copy of all metrics.
type Snapshot struct {
	SplitOpsTotal      int64
	SplitErrorsTotal   int64
	CombineOpsTotal    int64
	CombineErrorsTotal int64
	OpLatencyNanos     int64
	SecureOpsTotal     int64
	SecureErrorsTotal  int64
	RevealOpsTotal     int64
	SecureAddOps       int64
	SecureSubOps       int64
	SecureMulConstOps  int64
	SecureMulOps       int64
	SecureSumOps       int64
	SecureAverageOps   int64
	SecureMaxOps       int64
	SecureGreaterOps   int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		SplitOpsTotal:      m.splitOpsTotal.Load(),
		SplitErrorsTotal:   m.splitErrorsTotal.Load(),
		CombineOpsTotal:    m.combineOpsTotal.Load(),
		CombineErrorsTotal: m.combineErrorsTotal.Load(),
		OpLatencyNanos:     m.opLatencyNanos.Load(),
		SecureOpsTotal:     m.secureOpsTotal.Load(),
		SecureErrorsTotal:  m.secureErrorsTotal.Load(),
		RevealOpsTotal:     m.revealOpsTotal.Load(),
		SecureAddOps:       m.secureAddOps.Load(),
		SecureSubOps:       m.secureSubOps.Load(),
		SecureMulConstOps:  m.secureMulConstOps.Load(),
		SecureMulOps:       m.secureMulOps.Load(),
		SecureSumOps:       m.secureSumOps.Load(),
		SecureAverageOps:   m.secureAverageOps.Load(),
		SecureMaxOps:       m.secureMaxOps.Load(),
		SecureGreaterOps:   m.secureGreaterOps.Load(),
	}
}

// OpsTotal returns the total number of split and combine operations.
func (m *Metrics) OpsTotal() int64 {
	return m.splitOpsTotal.Load() + m.combineOpsTotal.Load()
}

// ErrorsTotal returns the total number of split and combine errors.
func (m *Metrics) ErrorsTotal() int64 {
	return m.splitErrorsTotal.Load() + m.combineErrorsTotal.Load()
}

// OpLatencyAvgMs returns the average split/combine latency in milliseconds.
// Returns 0 if no operations have been recorded.
func (m *Metrics) OpLatencyAvgMs() float64 {
	ops := m.OpsTotal()
	if ops == 0 {
		return 0
	}
	nanos := m.opLatencyNanos.Load()
	return float64(nanos) / float64(ops) / 1e6
}

// SecureErrorRate returns the secure-operation error rate as a percentage
// (0-100). Returns 0 if no secure operations have occurred.
func (m *Metrics) SecureErrorRate() float64 {
	total := m.secureOpsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.secureErrorsTotal.Load()) / float64(total) * 100
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.splitOpsTotal.Store(0)
	m.splitErrorsTotal.Store(0)
	m.combineOpsTotal.Store(0)
	m.combineErrorsTotal.Store(0)
	m.opLatencyNanos.Store(0)
	m.secureOpsTotal.Store(0)
	m.secureErrorsTotal.Store(0)
	m.revealOpsTotal.Store(0)
	m.secureAddOps.Store(0)
	m.secureSubOps.Store(0)
	m.secureMulConstOps.Store(0)
	m.secureMulOps.Store(0)
	m.secureSumOps.Store(0)
	m.secureAverageOps.Store(0)
	m.secureMaxOps.Store(0)
	m.secureGreaterOps.Store(0)
}
