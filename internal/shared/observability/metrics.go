package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profilegen_sync_runs_total",
		Help: "Total number of sync runs by terminal status (complete, partial, failed).",
	}, []string{"status"})

	SyncItemsSyncedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profilegen_sync_items_synced_total",
		Help: "Total number of corpus templates upserted into the cache.",
	})

	SyncItemFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profilegen_sync_item_failures_total",
		Help: "Total number of per-item fetch failures skipped during sync runs.",
	})

	SyncBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "profilegen_sync_backlog",
		Help: "Authoritative corpus paths not yet present in the cache, as of the last run.",
	})

	SyncRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "profilegen_sync_run_seconds",
		Help:    "Wall time of a full sync run.",
		Buckets: prometheus.DefBuckets,
	})

	CacheReadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profilegen_cache_read_failures_total",
		Help: "Total number of template cache reads degraded to absent.",
	})

	CacheTemplates = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "profilegen_cache_templates_total",
		Help: "Current number of templates held in the cache.",
	})

	SelectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "profilegen_selection_seconds",
		Help:    "Time spent selecting a reference template.",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	SelectionFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profilegen_selection_fallbacks_total",
		Help: "Total number of selections that resolved to the fixed fallback path.",
	})

	ProfilesAssembledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profilegen_profiles_assembled_total",
		Help: "Total number of monitoring profiles assembled.",
	})

	ExtractionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profilegen_extraction_failures_total",
		Help: "Total number of symbol tables rejected as unreadable.",
	})

	InboxEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profilegen_inbox_events_total",
		Help: "Total number of file system events received by the inbox watcher.",
	})
)
