// Package metrics exposes the bot's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cafeloyalty"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	Registry *prometheus.Registry

	redemptions     *prometheus.CounterVec
	commitConflicts prometheus.Counter
	pointsAwarded   prometheus.Counter
	awards          prometheus.Counter
	notifications   *prometheus.CounterVec
	feedReconnects  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		redemptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rewards",
				Name:      "redemptions_total",
				Help:      "Redeem attempts by result.",
			},
			[]string{"result"},
		),
		commitConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rewards",
			Name:      "commit_conflicts_total",
			Help:      "Conditioned account commits rejected by a concurrent write.",
		}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rewards",
			Name:      "points_awarded_total",
			Help:      "Sum of points credited by admins.",
		}),
		awards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rewards",
			Name:      "awards_total",
			Help:      "Number of successful point awards.",
		}),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifier",
				Name:      "messages_total",
				Help:      "Balance notifications by delivery status.",
			},
			[]string{"status"},
		),
		feedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "feed_reconnects_total",
			Help:      "Times the account change feed was re-opened after an error.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.redemptions,
		m.commitConflicts,
		m.pointsAwarded,
		m.awards,
		m.notifications,
		m.feedReconnects,
	)
	return m
}

// RedemptionFinished counts one redeem call. result is "redeemed",
// "conflict" or a rejection status.
func (m *Metrics) RedemptionFinished(result string) {
	m.redemptions.WithLabelValues(result).Inc()
}

func (m *Metrics) CommitConflict() {
	m.commitConflicts.Inc()
}

func (m *Metrics) PointsAwarded(delta int64) {
	m.awards.Inc()
	m.pointsAwarded.Add(float64(delta))
}

func (m *Metrics) NotificationSent(ok bool) {
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.notifications.WithLabelValues(status).Inc()
}

func (m *Metrics) FeedReconnected() {
	m.feedReconnects.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
