package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the arcade's Prometheus collectors. A nil *Metrics is valid
// and records nothing, so packages can take one without guarding every call.
type Metrics struct {
	registry *prometheus.Registry

	QueueLength     *prometheus.GaugeVec
	Occupied        *prometheus.GaugeVec
	Paused          prometheus.Gauge
	TurnsStarted    prometheus.Counter
	TurnsAccepted   prometheus.Counter
	TurnsSkipped    *prometheus.CounterVec
	TurnsFinished   prometheus.Counter
	PersistFailures prometheus.Counter
	PlaySeconds     prometheus.Histogram
	Subscribers     prometheus.Gauge
	DroppedPings    prometheus.Counter
}

// New builds the collectors on a private registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		QueueLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Players waiting in each game's line",
		}, []string{"game"}),
		Occupied: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "game_occupied",
			Help:      "1 when a game's turn slot is held",
		}, []string{"game"}),
		Paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paused",
			Help:      "1 while the arcade queue is paused",
		}),
		TurnsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_started_total",
			Help:      "Turns offered to a player",
		}),
		TurnsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_accepted_total",
			Help:      "Turns accepted before the timeout",
		}),
		TurnsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_skipped_total",
			Help:      "Pending turns given up, by reason",
		}, []string{"reason"}),
		TurnsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_finished_total",
			Help:      "Turns ended with done playing",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Snapshot writes that failed",
		}),
		PlaySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "play_seconds",
			Help:      "Length of accepted play sessions",
			Buckets:   prometheus.ExponentialBuckets(30, 2, 8),
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Connected live-update subscribers",
		}),
		DroppedPings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_pings_total",
			Help:      "Refresh pings dropped because a subscriber was full",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.QueueLength,
		m.Occupied,
		m.Paused,
		m.TurnsStarted,
		m.TurnsAccepted,
		m.TurnsSkipped,
		m.TurnsFinished,
		m.PersistFailures,
		m.PlaySeconds,
		m.Subscribers,
		m.DroppedPings,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SetQueue(game string, length int, occupied bool) {
	if m == nil {
		return
	}
	m.QueueLength.WithLabelValues(game).Set(float64(length))
	if occupied {
		m.Occupied.WithLabelValues(game).Set(1)
	} else {
		m.Occupied.WithLabelValues(game).Set(0)
	}
}

func (m *Metrics) SetPaused(paused bool) {
	if m == nil {
		return
	}
	if paused {
		m.Paused.Set(1)
	} else {
		m.Paused.Set(0)
	}
}

func (m *Metrics) TurnStarted() {
	if m == nil {
		return
	}
	m.TurnsStarted.Inc()
}

func (m *Metrics) TurnAccepted() {
	if m == nil {
		return
	}
	m.TurnsAccepted.Inc()
}

func (m *Metrics) TurnSkipped(reason string) {
	if m == nil {
		return
	}
	m.TurnsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) TurnFinished(played time.Duration) {
	if m == nil {
		return
	}
	m.TurnsFinished.Inc()
	if played > 0 {
		m.PlaySeconds.Observe(played.Seconds())
	}
}

func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.Subscribers.Set(float64(n))
}

func (m *Metrics) PingDropped() {
	if m == nil {
		return
	}
	m.DroppedPings.Inc()
}
