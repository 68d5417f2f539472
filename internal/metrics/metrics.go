package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Download kinds.
const (
	DownloadLanding = "landing"
	DownloadDirect  = "direct"
)

var (
	once sync.Once

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	uploadsTotal   prometheus.Counter
	uploadBytes    prometheus.Counter
	downloadsTotal *prometheus.CounterVec
	deletionsTotal prometheus.Counter
)

// InitMetrics registers the collectors with the default registry. Safe to call repeatedly.
func InitMetrics() {
	once.Do(func() {
		httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fileshare_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"})
		httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fileshare_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})
		uploadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileshare_uploads_total",
			Help: "Files accepted for sharing.",
		})
		uploadBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileshare_upload_bytes_total",
			Help: "Bytes accepted for sharing.",
		})
		downloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fileshare_downloads_total",
			Help: "Landing page views and direct downloads served.",
		}, []string{"kind"})
		deletionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileshare_deletions_total",
			Help: "Files removed through the admin API.",
		})

		prometheus.MustRegister(httpRequests, httpDuration, uploadsTotal, uploadBytes, downloadsTotal, deletionsTotal)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	InitMetrics()
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	InitMetrics()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordUpload counts an accepted upload of size bytes.
func RecordUpload(size int64) {
	InitMetrics()
	uploadsTotal.Inc()
	if size > 0 {
		uploadBytes.Add(float64(size))
	}
}

// RecordDownload counts a served landing page or direct transfer.
func RecordDownload(kind string) {
	InitMetrics()
	downloadsTotal.WithLabelValues(kind).Inc()
}

// RecordDeletion counts a removed file.
func RecordDeletion() {
	InitMetrics()
	deletionsTotal.Inc()
}
