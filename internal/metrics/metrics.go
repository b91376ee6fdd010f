package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agadeepaoli"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PoemsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poems_created_total",
		Help:      "Poems created through the API.",
	})

	PoemsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poems_deleted_total",
		Help:      "Poems deleted through the API.",
	})

	PoemCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poem_cache_lookups_total",
			Help:      "Poem list cache lookups by result.",
		},
		[]string{"result"}, // hit | miss
	)

	UploadsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_accepted_total",
		Help:      "Gallery uploads stored.",
	})

	UploadsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_rejected_total",
			Help:      "Gallery uploads rejected, by reason.",
		},
		[]string{"reason"},
	)

	GalleryItemsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gallery_items_deleted_total",
		Help:      "Gallery items deleted through the API.",
	})
)
