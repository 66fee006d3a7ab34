package dbpool

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	statsMu   sync.Mutex
	statsPool *Pool
	statsOnce sync.Once
)

// registerStats points the pool gauges at p. Only the most recently created pool is
// reported, which matches the one-pool-per-process deployment.
func registerStats(p *Pool) {
	statsMu.Lock()
	statsPool = p
	statsMu.Unlock()

	statsOnce.Do(func() {
		prometheus.MustRegister(
			poolGauge("total_conns", "Connections currently held by the pool.", func(p *Pool) float64 {
				return float64(p.Stat().TotalConns())
			}),
			poolGauge("acquired_conns", "Connections checked out by requests.", func(p *Pool) float64 {
				return float64(p.Stat().AcquiredConns())
			}),
			poolGauge("idle_conns", "Idle connections.", func(p *Pool) float64 {
				return float64(p.Stat().IdleConns())
			}),
			poolGauge("max_conns", "Configured pool bound.", func(p *Pool) float64 {
				return float64(p.Stat().MaxConns())
			}),
			poolGauge("empty_acquire_total", "Acquires that had to wait for a free connection.", func(p *Pool) float64 {
				return float64(p.Stat().EmptyAcquireCount())
			}),
		)
	})
}

func poolGauge(name, help string, read func(*Pool) float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "fieldops",
		Subsystem: "db_pool",
		Name:      name,
		Help:      help,
	}, func() float64 {
		statsMu.Lock()
		p := statsPool
		statsMu.Unlock()
		if p == nil {
			return 0
		}
		return read(p)
	})
}
