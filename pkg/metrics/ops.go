package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OpsMetrics records counters for the background work the dashboard depends
// on: geocode lookups, mail delivery, and outbox publishing.
type OpsMetrics struct {
	geocodeDuration *prometheus.HistogramVec
	geocodeResults  *prometheus.CounterVec
	mailResults     *prometheus.CounterVec
	outboxResults   *prometheus.CounterVec
}

// NewOpsMetrics registers the operational metrics on the provided registerer.
func NewOpsMetrics(reg prometheus.Registerer) *OpsMetrics {
	if reg == nil {
		return &OpsMetrics{}
	}
	geocodeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geocode_duration_seconds",
		Help:    "Duration of geocode lookups in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	geocodeResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_results",
		Help: "Geocode lookups by outcome.",
	}, []string{"outcome"})
	mailResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_delivery_results",
		Help: "Mail relay deliveries by outcome.",
	}, []string{"outcome"})
	outboxResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_results",
		Help: "Outbox publish attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(geocodeDuration, geocodeResults, mailResults, outboxResults)
	return &OpsMetrics{
		geocodeDuration: geocodeDuration,
		geocodeResults:  geocodeResults,
		mailResults:     mailResults,
		outboxResults:   outboxResults,
	}
}

// ObserveGeocodeDuration records how long a lookup took for the named source.
func (o *OpsMetrics) ObserveGeocodeDuration(source string, duration time.Duration) {
	if o == nil || o.geocodeDuration == nil {
		return
	}
	o.geocodeDuration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncGeocode increments the geocode counter for the given outcome.
func (o *OpsMetrics) IncGeocode(outcome string) {
	if o == nil || o.geocodeResults == nil {
		return
	}
	o.geocodeResults.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncMail increments the mail delivery counter for the given outcome.
func (o *OpsMetrics) IncMail(outcome string) {
	if o == nil || o.mailResults == nil {
		return
	}
	o.mailResults.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncOutbox increments the outbox publish counter for the given outcome.
func (o *OpsMetrics) IncOutbox(outcome string) {
	if o == nil || o.outboxResults == nil {
		return
	}
	o.outboxResults.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// Common outcome labels.
const (
	OutcomeHit           = "hit"
	OutcomeResolved      = "resolved"
	OutcomeFailed        = "failed"
	OutcomePersistFailed = "persist_failed"
	OutcomeSent          = "sent"
	OutcomePublished     = "published"
	OutcomeDLQ           = "dlq"
)
