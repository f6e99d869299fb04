package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchCycles counts schedule fetches by league and result source
	FetchCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_board",
		Name:      "fetch_cycles_total",
		Help:      "Schedule fetches by league and result source (fresh, cache, stale, failed).",
	}, []string{"league", "source"})

	// UpstreamFailures counts failed feed requests
	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_board",
		Name:      "upstream_failures_total",
		Help:      "Feed requests that degraded to an empty result.",
	}, []string{"league", "feed"})

	// CacheEntries tracks the number of league/date keys held in memory.
	// The cache never evicts, so this only grows.
	CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_board",
		Name:      "cache_entries",
		Help:      "League/date entries held by the schedule cache.",
	})

	// OddsQuotaRemaining mirrors the odds API x-requests-remaining header
	OddsQuotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_board",
		Name:      "odds_api_requests_remaining",
		Help:      "Requests left on the odds API key, as reported by the API.",
	})

	// UpstreamLatency observes feed request duration
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "odds_board",
		Name:      "upstream_request_seconds",
		Help:      "Feed request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"feed"})

	// WSClients tracks connected websocket clients
	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_board",
		Name:      "ws_clients",
		Help:      "Connected websocket clients.",
	})

	// WSDropped counts schedule updates not delivered to slow clients
	WSDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_board",
		Name:      "ws_dropped_messages_total",
		Help:      "Schedule updates dropped because a client or the hub buffer was full.",
	})
)
