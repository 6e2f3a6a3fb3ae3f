package mmcheck

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry *prometheus.Registry

	// Counters
	nextConnectionID prometheus.CounterFunc

	// Gauges
	openConnections prometheus.GaugeFunc
	openChannels    prometheus.GaugeFunc
	envWatchers     prometheus.GaugeFunc
	storedEnvs      prometheus.GaugeFunc

	// Latency histograms
	checkLatency prometheus.Summary
}

func newMetrics(db *Database) *metrics {
	m := &metrics{
		nextConnectionID: prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "next_connection_id",
				Help: "number of connections to this server over its lifetime",
			},
			func() float64 {
				db.mu.Lock()
				defer db.mu.Unlock()
				return float64(db.nextConnectionID)
			},
		),
		openConnections: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "open_connections",
				Help: "number of connections currently open",
			},
			func() float64 {
				db.mu.Lock()
				defer db.mu.Unlock()
				return float64(len(db.connections))
			},
		),
		openChannels: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "open_channels",
				Help: "number of channels currently open across all connections",
			},
			func() float64 {
				// TODO: make this not O(connections) somehow...
				// but I also don't want two sources of truth
				db.mu.Lock()
				defer db.mu.Unlock()
				count := 0
				for _, conn := range db.connections {
					count += len(conn.channels)
				}
				return float64(count)
			},
		),
		envWatchers: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "env_watchers",
				Help: "number of registered environment watchers",
			},
			func() float64 {
				return float64(db.watchers.getNumWatchers())
			},
		),
		storedEnvs: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "stored_envs",
				Help: "number of environments in the store",
			},
			func() float64 {
				infos, err := db.ListEnvs()
				if err != nil {
					return 0
				}
				return float64(len(infos))
			},
		),
		checkLatency: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name: "check_latency_ns",
				Help: "latency to verify and store a proof file",
			},
		),
	}
	m.registry = prometheus.NewPedanticRegistry()
	reg := m.registry

	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{PidFn: func() (int, error) { return os.Getpid(), nil }}))
	reg.MustRegister(prometheus.NewGoCollector())

	reg.MustRegister(m.nextConnectionID)
	reg.MustRegister(m.openConnections)
	reg.MustRegister(m.openChannels)
	reg.MustRegister(m.envWatchers)
	reg.MustRegister(m.storedEnvs)
	reg.MustRegister(m.checkLatency)
	return m
}
