package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var hashBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2}

// Auth collects signup/signin outcomes and password hashing latency.
type Auth struct {
	outcomes *prometheus.CounterVec
	hashing  *prometheus.HistogramVec
}

// NewAuth creates the collectors and registers them with reg. Collectors
// already registered (e.g. by a previous instance) are reused.
func NewAuth(reg prometheus.Registerer) (*Auth, error) {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "outcomes_total",
		Help:      "Count of signup and signin attempts by result kind",
	}, []string{"operation", "kind"})

	hashing := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "auth",
		Name:      "password_hash_seconds",
		Help:      "Latency of password hash and verify calls",
		Buckets:   hashBuckets,
	}, []string{"operation"})

	m := &Auth{outcomes: outcomes, hashing: hashing}
	if err := reg.Register(outcomes); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.outcomes = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(hashing); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.hashing = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m, nil
}

// ObserveOutcome counts one signup or signin result.
func (m *Auth) ObserveOutcome(operation, kind string) {
	m.outcomes.WithLabelValues(operation, kind).Inc()
}

// ObserveHash records the duration of a hash or verify call.
func (m *Auth) ObserveHash(operation string, d time.Duration) {
	m.hashing.WithLabelValues(operation).Observe(d.Seconds())
}
