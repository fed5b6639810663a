package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// All methods are safe to call on a nil receiver so tests can skip metrics.
type Metrics struct {
	UsersRegistered    prometheus.Counter
	VotesCast          *prometheus.CounterVec
	RegistryMutations  *prometheus.CounterVec
	Observers          prometheus.Gauge
	SnapshotsDelivered prometheus.Counter
	SnapshotsDropped   *prometheus.CounterVec
	RequestLatency     *prometheus.HistogramVec
}

// New creates and registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_users_registered_total",
			Help: "Total number of users created in the system",
		}),
		VotesCast: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ballotbox_votes_total",
			Help: "Vote attempts by outcome",
		}, []string{"outcome"}), // outcome: "accepted", "already_voted", "candidate_not_found", "error"
		RegistryMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ballotbox_registry_mutations_total",
			Help: "Committed candidate registry mutations by operation",
		}, []string{"op"}),
		Observers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ballotbox_observers",
			Help: "Currently subscribed snapshot observers",
		}),
		SnapshotsDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_snapshots_delivered_total",
			Help: "Snapshots written to observers",
		}),
		SnapshotsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ballotbox_snapshots_dropped_total",
			Help: "Snapshots not delivered by reason",
		}, []string{"reason"}), // reason: "stale", "superseded", "send_failed"
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ballotbox_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method", "status"}),
	}
}

// IncrementUsersRegistered increments the users registered counter by 1.
func (m *Metrics) IncrementUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

// IncrementVote records a vote attempt outcome.
func (m *Metrics) IncrementVote(outcome string) {
	if m != nil {
		m.VotesCast.WithLabelValues(outcome).Inc()
	}
}

// IncrementRegistryMutation records a committed registry mutation.
func (m *Metrics) IncrementRegistryMutation(op string) {
	if m != nil {
		m.RegistryMutations.WithLabelValues(op).Inc()
	}
}

// ObserverAdded and ObserverRemoved track the live observer gauge.
func (m *Metrics) ObserverAdded() {
	if m != nil {
		m.Observers.Inc()
	}
}

func (m *Metrics) ObserverRemoved() {
	if m != nil {
		m.Observers.Dec()
	}
}

func (m *Metrics) IncrementDelivered() {
	if m != nil {
		m.SnapshotsDelivered.Inc()
	}
}

func (m *Metrics) IncrementDropped(reason string) {
	if m != nil {
		m.SnapshotsDropped.WithLabelValues(reason).Inc()
	}
}

// ObserveRequest records request latency.
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, method, status).Observe(d.Seconds())
	}
}
