package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	siteOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_site_operations_total",
		Help: "Count of site lifecycle operations by operation and result",
	}, []string{"operation", "result"})

	hostResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_host_resolutions_total",
		Help: "Count of host header resolutions by result",
	}, []string{"result"})

	slugProbes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_slug_probes",
		Help:    "Number of candidates probed before a free subdomain was found",
		Buckets: []float64{1, 2, 3, 5, 10, 25, 50, 100},
	})

	hostCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_host_cache_events_total",
		Help: "Host resolution cache hits, misses and bypasses",
	}, []string{"event"})

	publishedSites = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_published_sites",
		Help: "Published sites, adjusted on publish, unpublish and delete and resynced periodically",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveSiteOperation counts a lifecycle operation with its outcome
func ObserveSiteOperation(operation, result string) {
	siteOperations.WithLabelValues(operation, result).Inc()
}

// ObserveHostResolution counts a host lookup: "hit", "none" or "error"
func ObserveHostResolution(result string) {
	hostResolutions.WithLabelValues(result).Inc()
}

// ObserveSlugProbes records how many candidates NextAvailable tried
func ObserveSlugProbes(n int) {
	slugProbes.Observe(float64(n))
}

// ObserveHostCache counts a cache event: "hit", "miss", "bypass",
// "fill_skipped" or "error"
func ObserveHostCache(event string) {
	hostCacheEvents.WithLabelValues(event).Inc()
}

// SitePublished adjusts the publication gauge
func SitePublished() {
	publishedSites.Inc()
}

// SiteUnpublished adjusts the publication gauge
func SiteUnpublished() {
	publishedSites.Dec()
}

// SetPublishedSites overwrites the publication gauge with a stored count
func SetPublishedSites(n int) {
	publishedSites.Set(float64(n))
}
