package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the capture flow.
type LeadMetrics struct {
	submissionsTotal  *prometheus.CounterVec
	forwardsTotal     *prometheus.CounterVec
	submissionLatency prometheus.Histogram
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead form submissions by outcome",
		}, []string{"outcome"}),
		forwardsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "tracking",
			Name:      "conversion_forwards_total",
			Help:      "Total conversion events forwarded to the ad platform",
		}, []string{"status"}),
		submissionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadcapture",
			Subsystem: "leads",
			Name:      "submission_latency_seconds",
			Help:      "Latency of lead submission handling",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.forwardsTotal, m.submissionLatency)
	return m
}

// ObserveSubmission counts one submission. Outcome is one of
// created, validation_error, duplicate, error.
func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveForward counts one conversion forward attempt.
func (m *LeadMetrics) ObserveForward(status string) {
	if m == nil {
		return
	}
	m.forwardsTotal.WithLabelValues(status).Inc()
}

// ObserveSubmissionLatency records how long one submission took.
func (m *LeadMetrics) ObserveSubmissionLatency(seconds float64) {
	if m == nil {
		return
	}
	m.submissionLatency.Observe(seconds)
}
