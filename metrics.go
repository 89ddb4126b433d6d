package accounts

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricRegistrationSuccess counts fully completed registrations.
	MetricRegistrationSuccess MetricID = iota
	// MetricRegistrationValidationFailure counts registrations rejected
	// locally, before any remote call.
	MetricRegistrationValidationFailure
	// MetricRegistrationDuplicate counts registrations rejected because the
	// email is already in use.
	MetricRegistrationDuplicate
	// MetricRegistrationFailure counts registrations failed at account
	// creation for any other provider reason.
	MetricRegistrationFailure
	// MetricProfileWriteFailure counts registrations failed at the profile
	// write, after the account was created.
	MetricProfileWriteFailure
	// MetricDisplayLabelSoftFailure counts best-effort label updates that
	// failed without failing the registration.
	MetricDisplayLabelSoftFailure
	// MetricVerificationEmailSent counts dispatched verification emails,
	// initial and resent.
	MetricVerificationEmailSent
	// MetricVerificationEmailSoftFailure counts verification dispatches that
	// failed without failing the registration.
	MetricVerificationEmailSoftFailure
	// MetricForcedSignOut counts mandatory sign-outs of unverified provider
	// sessions.
	MetricForcedSignOut
	// MetricLoginAdmitted counts logins that produced an admitted session.
	MetricLoginAdmitted
	// MetricLoginUnverified counts credential-valid logins rejected on the
	// verification flag.
	MetricLoginUnverified
	// MetricLoginFailure counts logins rejected by the provider.
	MetricLoginFailure
	// MetricLoginRateLimited counts logins rejected by provider throttling.
	MetricLoginRateLimited
	// MetricLoginValidationFailure counts logins rejected locally.
	MetricLoginValidationFailure
	// MetricVerificationResendFailure counts failed resend remediations.
	MetricVerificationResendFailure
	// MetricResetRequest counts accepted password-reset requests.
	MetricResetRequest
	// MetricResetRequestFailure counts rejected password-reset requests.
	MetricResetRequestFailure
	// MetricSignOut counts caller-initiated sign-outs of admitted sessions.
	MetricSignOut
	// MetricLoginLatency is the login round-trip latency histogram.
	MetricLoginLatency

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

// Metrics holds lock-free counters and an optional login latency histogram.
// All operations are safe for concurrent use; when disabled they are no-ops.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether the metrics system records anything at all.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram records observations.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the latency histogram for id. Only
// MetricLoginLatency is histogram-backed.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricLoginLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of the counter for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histogram buckets.
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
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricLoginLatency].buckets[i])
		}
		s.Histograms[MetricLoginLatency] = buckets
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
