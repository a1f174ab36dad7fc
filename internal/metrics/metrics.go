package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus counters and gauges of a texttrack server.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	cueChangesTotal   prometheus.Counter
	loadFailuresTotal prometheus.Counter
	tracksLoaded      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "texttrack_http_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "texttrack_http_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		cueChangesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "texttrack_cue_changes_total",
			Help: "Total number of active cue set changes across all tracks",
		}),
		loadFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "texttrack_track_load_failures_total",
			Help: "Total number of tracks that failed to load or parse",
		}),
		tracksLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "texttrack_tracks_loaded",
			Help: "Number of tracks whose cues are loaded",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.cueChangesTotal,
		m.loadFailuresTotal,
		m.tracksLoaded,
	)
	return m
}

func (m *Metrics) IncRequests()     { m.requestsTotal.Inc() }
func (m *Metrics) IncErrors()       { m.errorsTotal.Inc() }
func (m *Metrics) IncCueChanges()   { m.cueChangesTotal.Inc() }
func (m *Metrics) IncLoadFailures() { m.loadFailuresTotal.Inc() }

func (m *Metrics) SetTracksLoaded(n int) {
	m.tracksLoaded.Set(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry. updateGauges runs before each scrape.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
