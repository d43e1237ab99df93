package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Distribution metrics
	BatchesCreated     *prometheus.CounterVec
	DistributedAmount  *prometheus.CounterVec
	BatchDuration      prometheus.Histogram
	BatchRecipients    prometheus.Histogram
	DistributionErrors *prometheus.CounterVec

	// Loot metrics
	LootDistributed        prometheus.Counter
	LootDuration           prometheus.Histogram
	CompanionEntryFailures prometheus.Counter

	// Transaction metrics
	TxRetries prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Redis metrics
	CacheHits   *prometheus.CounterVec
	RedisErrors *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Distribution metrics
		BatchesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guildledger_batches_created_total",
				Help: "Total number of distribution batches created",
			},
			[]string{"source", "mode"},
		),
		DistributedAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guildledger_distributed_amount_total",
				Help: "Total amount distributed in batches",
			},
			[]string{"source"},
		),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "guildledger_batch_duration_seconds",
			Help:    "Duration of batch creation including retries",
			Buckets: prometheus.DefBuckets,
		}),
		BatchRecipients: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "guildledger_batch_recipients",
			Help:    "Recipients per distribution batch",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
		DistributionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guildledger_distribution_errors_total",
				Help: "Total number of rejected or failed distributions by kind",
			},
			[]string{"operation", "kind"},
		),

		// Loot metrics
		LootDistributed: factory.NewCounter(prometheus.CounterOpts{
			Name: "guildledger_loot_distributed_total",
			Help: "Total number of loot records distributed",
		}),
		LootDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "guildledger_loot_duration_seconds",
			Help:    "Duration of loot distributions",
			Buckets: prometheus.DefBuckets,
		}),
		CompanionEntryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "guildledger_companion_entry_failures_total",
			Help: "Total number of companion ledger entries that could not be written",
		}),

		TxRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "guildledger_tx_retries_total",
			Help: "Total number of retried serialization or deadlock failures",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guildledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guildledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Redis metrics
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guildledger_cache_lookups_total",
				Help: "Batch cache lookups by result",
			},
			[]string{"result"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guildledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guildledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guildledger_outbox_events_total",
				Help: "Outbox events processed by result",
			},
			[]string{"event_type", "status"},
		),

		// Audit metrics
		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guildledger_audit_logs_total",
				Help: "Total audit logs appended",
			},
			[]string{"action", "status"},
		),
	}
}
