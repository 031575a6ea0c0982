package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for consumed messages.
const (
	outcomeHandled   = "handled"
	outcomeMalformed = "malformed"
	outcomeFailed    = "failed"
)

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_published_total",
		Help: "Events written to Kafka, by topic and result.",
	}, []string{"topic", "result"})

	publishSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_events_publish_seconds",
		Help:    "Time spent writing one event to Kafka.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})

	consumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_consumed_total",
		Help: "Events read from Kafka, by topic, consumer group and outcome.",
	}, []string{"topic", "group", "outcome"})

	handleSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_events_handle_seconds",
		Help:    "Time spent handling one event, retries included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic", "group"})

	duplicatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_duplicates_total",
		Help: "Events skipped because their ID was already processed.",
	}, []string{"event_type"})

	deadLetteredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_dead_lettered_total",
		Help: "Events moved to a dead-letter topic.",
	}, []string{"topic", "group"})
)
