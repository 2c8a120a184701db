package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ghostnet"

// Lifecycle - счетчики переходов статусов и удалений
type Lifecycle struct {
	Transitions *prometheus.CounterVec // labels: destination, outcome
	Deletions   *prometheus.CounterVec // labels: entity, outcome

	RequestDuration *prometheus.HistogramVec // labels: method, route, code
}

// New регистрирует метрики в reg. В тестах передается отдельный
// prometheus.NewRegistry(), чтобы повторная регистрация не паниковала.
func New(reg prometheus.Registerer) *Lifecycle {
	factory := promauto.With(reg)
	return &Lifecycle{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Total number of requested report status transitions",
		}, []string{"destination", "outcome"}),
		Deletions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletions_total",
			Help:      "Total number of entity deletions with detach",
		}, []string{"entity", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
}

func (l *Lifecycle) IncTransition(destination, outcome string) {
	l.Transitions.WithLabelValues(destination, outcome).Inc()
}

func (l *Lifecycle) IncDeletion(entity, outcome string) {
	l.Deletions.WithLabelValues(entity, outcome).Inc()
}

func (l *Lifecycle) ObserveRequest(method, route string, code int, duration time.Duration) {
	l.RequestDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(duration.Seconds())
}
