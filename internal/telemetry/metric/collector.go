package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CountFunc reports the number of outstanding tokens.
type CountFunc func(ctx context.Context) (int, error)

// Collector reports the outstanding-token gauge at scrape time.
// Count errors (for example an unreachable Redis) are reported as an
// invalid metric rather than a stale value.
type Collector struct {
	count   CountFunc
	timeout time.Duration
	desc    *prometheus.Desc
}

// NewCollector creates a collector backed by count.
func NewCollector(count CountFunc) *Collector {
	return &Collector{
		count:   count,
		timeout: 2 * time.Second,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "tokens", "outstanding"),
			"CSRF tokens currently held in the store",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.count(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n))
}
