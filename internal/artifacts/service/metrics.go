package service

import (
	"sync/atomic"
	"time"
)

// Metrics tracks service call metrics
type Metrics struct {
	upstreamCalls     int64
	upstreamErrors    int64
	upstreamLatency   int64 // Total latency in nanoseconds
	generateCalls     int64
	editCalls         int64
	duplicateCalls    int64
	rejectedInFlight  int64
	storeErrors       int64
	duplicatesIgnored int64
	cyclesBroken      int64
}

// MetricsSnapshot is the JSON view served at /metrics
type MetricsSnapshot struct {
	UpstreamCalls        int64   `json:"upstream_calls"`
	UpstreamErrors       int64   `json:"upstream_errors"`
	UpstreamAvgLatencyMs float64 `json:"upstream_avg_latency_ms"`
	UpstreamErrorRate    float64 `json:"upstream_error_rate"`
	GenerateCalls        int64   `json:"generate_calls"`
	EditCalls            int64   `json:"edit_calls"`
	DuplicateCalls       int64   `json:"duplicate_calls"`
	RejectedInFlight     int64   `json:"rejected_in_flight"`
	StoreErrors          int64   `json:"store_errors"`
	DuplicatesIgnored    int64   `json:"lineage_duplicates_ignored"`
	CyclesBroken         int64   `json:"lineage_cycles_broken"`
}

var globalMetrics = &Metrics{}

// GetMetrics returns the current metrics snapshot
func GetMetrics() Metrics {
	return Metrics{
		upstreamCalls:     atomic.LoadInt64(&globalMetrics.upstreamCalls),
		upstreamErrors:    atomic.LoadInt64(&globalMetrics.upstreamErrors),
		upstreamLatency:   atomic.LoadInt64(&globalMetrics.upstreamLatency),
		generateCalls:     atomic.LoadInt64(&globalMetrics.generateCalls),
		editCalls:         atomic.LoadInt64(&globalMetrics.editCalls),
		duplicateCalls:    atomic.LoadInt64(&globalMetrics.duplicateCalls),
		rejectedInFlight:  atomic.LoadInt64(&globalMetrics.rejectedInFlight),
		storeErrors:       atomic.LoadInt64(&globalMetrics.storeErrors),
		duplicatesIgnored: atomic.LoadInt64(&globalMetrics.duplicatesIgnored),
		cyclesBroken:      atomic.LoadInt64(&globalMetrics.cyclesBroken),
	}
}

// ResetMetrics resets all metrics (useful for testing)
func ResetMetrics() {
	for _, c := range []*int64{
		&globalMetrics.upstreamCalls,
		&globalMetrics.upstreamErrors,
		&globalMetrics.upstreamLatency,
		&globalMetrics.generateCalls,
		&globalMetrics.editCalls,
		&globalMetrics.duplicateCalls,
		&globalMetrics.rejectedInFlight,
		&globalMetrics.storeErrors,
		&globalMetrics.duplicatesIgnored,
		&globalMetrics.cyclesBroken,
	} {
		atomic.StoreInt64(c, 0)
	}
}

func recordUpstreamCall(duration time.Duration, err error) {
	atomic.AddInt64(&globalMetrics.upstreamCalls, 1)
	atomic.AddInt64(&globalMetrics.upstreamLatency, duration.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&globalMetrics.upstreamErrors, 1)
	}
}

func recordGenerateCall()  { atomic.AddInt64(&globalMetrics.generateCalls, 1) }
func recordEditCall()      { atomic.AddInt64(&globalMetrics.editCalls, 1) }
func recordDuplicateCall() { atomic.AddInt64(&globalMetrics.duplicateCalls, 1) }
func recordRejected()      { atomic.AddInt64(&globalMetrics.rejectedInFlight, 1) }
func recordStoreError()    { atomic.AddInt64(&globalMetrics.storeErrors, 1) }

func recordLineageAnomalies(duplicates, broken int) {
	atomic.AddInt64(&globalMetrics.duplicatesIgnored, int64(duplicates))
	atomic.AddInt64(&globalMetrics.cyclesBroken, int64(broken))
}

// AverageUpstreamLatency returns the average latency in milliseconds
func (m Metrics) AverageUpstreamLatency() float64 {
	if m.upstreamCalls == 0 {
		return 0
	}
	avgNs := float64(m.upstreamLatency) / float64(m.upstreamCalls)
	return avgNs / 1e6
}

// UpstreamErrorRate returns the error rate as a percentage
func (m Metrics) UpstreamErrorRate() float64 {
	if m.upstreamCalls == 0 {
		return 0
	}
	return float64(m.upstreamErrors) / float64(m.upstreamCalls) * 100
}

// Snapshot converts the counters for serialization
func (m Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		UpstreamCalls:        m.upstreamCalls,
		UpstreamErrors:       m.upstreamErrors,
		UpstreamAvgLatencyMs: m.AverageUpstreamLatency(),
		UpstreamErrorRate:    m.UpstreamErrorRate(),
		GenerateCalls:        m.generateCalls,
		EditCalls:            m.editCalls,
		DuplicateCalls:       m.duplicateCalls,
		RejectedInFlight:     m.rejectedInFlight,
		StoreErrors:          m.storeErrors,
		DuplicatesIgnored:    m.duplicatesIgnored,
		CyclesBroken:         m.cyclesBroken,
	}
}
