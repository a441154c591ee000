package event

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "eventmgr"

// Collector exports bus statistics as Prometheus metrics.
type Collector struct {
	bus *Bus

	emits         *prometheus.Desc
	misses        *prometheus.Desc
	invocations   *prometheus.Desc
	panics        *prometheus.Desc
	reaped        *prometheus.Desc
	rejected      *prometheus.Desc
	subscriptions *prometheus.Desc
	targets       *prometheus.Desc
	queueDepth    *prometheus.Desc
	pending       *prometheus.Desc
	overflowed    *prometheus.Desc
}

// NewCollector creates a collector reading from bus.
func NewCollector(bus *Bus) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "bus", name), help, labels, nil)
	}
	return &Collector{
		bus:           bus,
		emits:         desc("emits_total", "Emits that found at least one subscriber.", "mode"),
		misses:        desc("misses_total", "Emits whose bucket was empty."),
		invocations:   desc("invocations_total", "Subscriber callbacks executed."),
		panics:        desc("panics_total", "Subscriber callbacks that panicked."),
		reaped:        desc("reaped_total", "Subscriptions removed after exhausting their count."),
		rejected:      desc("rejected_total", "Calls ignored because of malformed input."),
		subscriptions: desc("subscriptions", "Registered subscriptions."),
		targets:       desc("targets", "Targets with at least one subscription."),
		queueDepth:    desc("async_queue_depth", "Async invocations waiting for a worker."),
		pending:       desc("async_pending", "Async invocations not yet completed."),
		overflowed:    desc("async_overflowed_total", "Async invocations run outside the worker pool."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.emits
	ch <- c.misses
	ch <- c.invocations
	ch <- c.panics
	ch <- c.reaped
	ch <- c.rejected
	ch <- c.subscriptions
	ch <- c.targets
	ch <- c.queueDepth
	ch <- c.pending
	ch <- c.overflowed
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.bus.Stats()

	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}

	counter(c.emits, s.Emits, "sync")
	counter(c.emits, s.AsyncEmits, "async")
	counter(c.misses, s.Misses)
	counter(c.invocations, s.Invocations)
	counter(c.panics, s.Panics)
	counter(c.reaped, s.Reaped)
	counter(c.rejected, s.Rejected)
	gauge(c.subscriptions, float64(s.Subscriptions))
	gauge(c.targets, float64(s.Targets))
	gauge(c.queueDepth, float64(s.Async.QueueDepth))
	gauge(c.pending, float64(s.Async.Pending))
	counter(c.overflowed, s.Async.Overflowed)
}
