package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
)

// Metrics covers the participation lifecycle and time tracking.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	HoursCredited     prometheus.Counter
	BadgesAwarded     *prometheus.CounterVec
}

// New registers the participation metrics on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteerhub_participation_operations_total",
			Help: "Participation operations by outcome code",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "volunteerhub_participation_operation_duration_seconds",
			Help:    "Duration of participation operations including the transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		}, []string{"operation"}),
		HoursCredited: factory.NewCounter(prometheus.CounterOpts{
			Name: "volunteerhub_hours_credited_total",
			Help: "Volunteer hours credited by completions and check-outs",
		}),
		BadgesAwarded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteerhub_badges_awarded_total",
			Help: "Badges granted, by badge",
		}, []string{"badge"}),
	}
}

// ObserveOperation records one call. The outcome label is "ok" or the
// error's code.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddHoursCredited(hours float64) {
	if hours > 0 {
		m.HoursCredited.Add(hours)
	}
}

func (m *Metrics) IncrementBadgeAwarded(badgeID id.BadgeID) {
	m.BadgesAwarded.WithLabelValues(string(badgeID)).Inc()
}
