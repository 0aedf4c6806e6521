package authservice

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricSignupSuccess counts accounts created.
	MetricSignupSuccess MetricID = iota
	// MetricSignupDuplicate counts signups rejected because the email exists.
	MetricSignupDuplicate
	// MetricSignupFailure counts every other signup failure.
	MetricSignupFailure
	// MetricLoginSuccess counts logins that issued a token directly.
	MetricLoginSuccess
	// MetricLoginFailure counts logins that issued neither a token nor a challenge.
	MetricLoginFailure
	// MetricTwoFARequired counts logins answered with a two-factor challenge.
	MetricTwoFARequired
	// MetricTwoFASuccess counts challenges answered correctly.
	MetricTwoFASuccess
	// MetricTwoFAFailure counts failed challenge answers.
	MetricTwoFAFailure
	// MetricLogoutSuccess counts tokens revoked by logout.
	MetricLogoutSuccess
	// MetricLogoutFailure counts rejected logouts.
	MetricLogoutFailure
	// MetricTokenVerifySuccess counts tokens that passed verification.
	MetricTokenVerifySuccess
	// MetricTokenVerifyFailure counts tokens that failed verification.
	MetricTokenVerifyFailure
	// MetricTokenRevoked counts verifications rejected by the revocation list.
	MetricTokenRevoked
	// MetricVerifyTokenLatency is the token verification latency histogram.
	MetricVerifyTokenLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free engine counters. A nil or disabled Metrics
// ignores every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter. Histograms
// holds per-bucket (non-cumulative) counts.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns counters for every MetricID. Latency histograms are
// recorded only when both Enabled and EnableLatencyHistograms are set.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc is safe for concurrent use and ignores unknown IDs.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram for id. Only
// MetricVerifyTokenLatency carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricVerifyTokenLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies the current values. A disabled Metrics returns empty,
// non-nil maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricVerifyTokenLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyTokenLatency].buckets[i])
		}
		s.Histograms[MetricVerifyTokenLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
