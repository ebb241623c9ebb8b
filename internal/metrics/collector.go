package metrics

import "github.com/prometheus/client_golang/prometheus"

// Counter reports how many records a store holds.
type Counter interface {
	Count() (int, error)
}

// StoreCollector implements prometheus.Collector for the record store.
// It polls the store on each scrape rather than tracking puts and deletes.
type StoreCollector struct {
	store Counter

	records *prometheus.Desc
	up      *prometheus.Desc
}

// NewStoreCollector creates a collector that counts records on demand.
func NewStoreCollector(s Counter) *StoreCollector {
	return &StoreCollector{
		store: s,
		records: prometheus.NewDesc(
			"torrentmap_store_records",
			"Number of stored index records.",
			nil, nil,
		),
		up: prometheus.NewDesc(
			"torrentmap_store_up",
			"Whether the last store scrape succeeded.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
	ch <- c.up
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	n, err := c.store.Count()
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(n))
}
