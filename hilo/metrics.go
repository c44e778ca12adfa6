package hilo

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics of a registry. A nil *metrics records nothing.
type metrics struct {
	dispensedTotal *prometheus.CounterVec
	refillsTotal   *prometheus.CounterVec
	failuresTotal  *prometheus.CounterVec
	refillDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		dispensedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tablegen",
				Subsystem: "hilo",
				Name:      "ids_dispensed_total",
				Help:      "Total number of IDs handed out",
			},
			[]string{"entity"},
		),
		refillsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tablegen",
				Subsystem: "hilo",
				Name:      "block_refills_total",
				Help:      "Total number of blocks reserved from the counter store",
			},
			[]string{"entity"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tablegen",
				Subsystem: "hilo",
				Name:      "refill_failures_total",
				Help:      "Total number of failed block reservations",
			},
			[]string{"entity"},
		),
		refillDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tablegen",
				Subsystem: "hilo",
				Name:      "refill_duration_seconds",
				Help:      "Counter store round trip latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity"},
		),
	}
	var err error
	if m.dispensedTotal, err = register(reg, m.dispensedTotal); err != nil {
		return nil, err
	}
	if m.refillsTotal, err = register(reg, m.refillsTotal); err != nil {
		return nil, err
	}
	if m.failuresTotal, err = register(reg, m.failuresTotal); err != nil {
		return nil, err
	}
	if m.refillDuration, err = register(reg, m.refillDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, reusing an identical collector registered by
// another registry of the same process.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) dispensed(entity string) {
	if m != nil {
		m.dispensedTotal.WithLabelValues(entity).Inc()
	}
}

func (m *metrics) refilled(entity string) {
	if m != nil {
		m.refillsTotal.WithLabelValues(entity).Inc()
	}
}

func (m *metrics) failed(entity string) {
	if m != nil {
		m.failuresTotal.WithLabelValues(entity).Inc()
	}
}

func (m *metrics) observe(entity string, d time.Duration) {
	if m != nil {
		m.refillDuration.WithLabelValues(entity).Observe(d.Seconds())
	}
}
