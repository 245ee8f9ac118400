package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Enrichment fetch outcomes.
const (
	EnrichOK      = "ok"
	EnrichFailed  = "failed"
	EnrichSkipped = "skipped"
)

type Registry struct {
	reg             *prometheus.Registry
	HTTPRequests    *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	EnrichFetches   *prometheus.CounterVec
	UpstreamUp      prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bff_http_requests_total",
		Help: "Requests served by the BFF.",
	}, []string{"method", "route", "status"})
	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bff_upstream_request_duration_seconds",
		Help:    "Latency of calls to the storefront API.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "class"})
	enrichFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bff_cart_enrichment_fetch_total",
		Help: "Catalog lookups made while enriching cart items.",
	}, []string{"result"})
	upstreamUp := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bff_upstream_up",
		Help: "1 when the last storefront API health probe succeeded.",
	})

	r.MustRegister(httpRequests, upstreamLatency, enrichFetches, upstreamUp)
	return &Registry{
		reg:             r,
		HTTPRequests:    httpRequests,
		UpstreamLatency: upstreamLatency,
		EnrichFetches:   enrichFetches,
		UpstreamUp:      upstreamUp,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// ObserveUpstream records one outbound call. status 0 means the request never got a response.
func (r *Registry) ObserveUpstream(method string, status int, d time.Duration) {
	r.UpstreamLatency.WithLabelValues(method, statusClass(status)).Observe(d.Seconds())
}

// ObserveEnrichment counts one enrichment outcome.
func (r *Registry) ObserveEnrichment(result string) {
	r.EnrichFetches.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveRequest(method, route string, status int) {
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (r *Registry) SetUpstreamUp(up bool) {
	if up {
		r.UpstreamUp.Set(1)
		return
	}
	r.UpstreamUp.Set(0)
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
