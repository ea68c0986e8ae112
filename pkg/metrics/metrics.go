package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hyperlane-ops/network-exporter/pkg/store"
)

var (
	checkpointDesc = prometheus.NewDesc(
		"hyperlane_contract_latest_checkpoint",
		"Latest checkpoint acknowledged by the Hyperlane merkle tree hook contract",
		[]string{"network"}, nil,
	)
	refreshedDesc = prometheus.NewDesc(
		"hyperlane_contract_latest_checkpoint_refreshed_timestamp_seconds",
		"Unix time of the last successful checkpoint refresh",
		[]string{"network"}, nil,
	)
)

// Collector exposes the stored checkpoint as gauges labeled with the resolved
// network. It reads the store at scrape time and never touches the network,
// keeping scrape latency independent of RPC latency. While the store is
// unpopulated it emits no samples at all: zero is a valid checkpoint index
// and must not be fabricated.
type Collector struct {
	network string
	store   *store.Store
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector for the given network label. The network
// is fixed for the process lifetime, so each process exposes exactly one time
// series per metric.
func NewCollector(network string, st *store.Store) *Collector {
	return &Collector{network: network, store: st}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- checkpointDesc
	ch <- refreshedDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.store.Read()
	if !snap.Populated {
		return
	}
	ch <- prometheus.MustNewConstMetric(
		checkpointDesc, prometheus.GaugeValue, float64(snap.Value), c.network,
	)
	ch <- prometheus.MustNewConstMetric(
		refreshedDesc, prometheus.GaugeValue, float64(snap.UpdatedAt.Unix()), c.network,
	)
}
