package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type poolMetric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(*pgxpool.Stat) float64
}

// PoolCollector exports pgxpool statistics, read at scrape time.
type PoolCollector struct {
	stat    func() *pgxpool.Stat
	metrics []poolMetric
}

// NewPoolCollector creates a collector for pool labelled with service.
func NewPoolCollector(pool *pgxpool.Pool, service string) *PoolCollector {
	return newPoolCollector(pool.Stat, service)
}

func newPoolCollector(stat func() *pgxpool.Stat, service string) *PoolCollector {
	labels := prometheus.Labels{"service": service}
	metric := func(name, help string, kind prometheus.ValueType, value func(*pgxpool.Stat) float64) poolMetric {
		return poolMetric{
			desc:  prometheus.NewDesc("storefront_db_pool_"+name, help, nil, labels),
			kind:  kind,
			value: value,
		}
	}
	gauge, counter := prometheus.GaugeValue, prometheus.CounterValue

	return &PoolCollector{
		stat: stat,
		metrics: []poolMetric{
			metric("acquired_connections", "Connections checked out of the pool.", gauge,
				func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
			metric("idle_connections", "Idle connections in the pool.", gauge,
				func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
			metric("total_connections", "Open connections.", gauge,
				func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
			metric("max_connections", "Configured pool size.", gauge,
				func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
			metric("acquires_total", "Connections acquired.", counter,
				func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }),
			metric("acquire_wait_seconds_total", "Time spent waiting for a connection.", counter,
				func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }),
			metric("empty_acquires_total", "Acquires that found no idle connection.", counter,
				func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }),
			metric("canceled_acquires_total", "Acquires abandoned by their context.", counter,
				func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }),
		},
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(s))
	}
}

// RegisterPoolMetrics registers a PoolCollector with the default registry.
// Registering the same service twice is not an error.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) error {
	return register(prometheus.DefaultRegisterer, NewPoolCollector(pool, service))
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	err := reg.Register(c)
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
