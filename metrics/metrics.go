package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	commitCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ccbench",
			Subsystem: "txn",
			Name:      "commits_total",
			Help:      "Counter of committed transactions.",
		})

	abortCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ccbench",
			Subsystem: "txn",
			Name:      "aborts_total",
			Help:      "Counter of aborted transaction attempts.",
		})

	responseTimeHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ccbench",
			Subsystem: "txn",
			Name:      "response_seconds",
			Help:      "Bucketed histogram of transaction response time, creation to commit.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 22),
		})
)

func init() {
	prometheus.MustRegister(commitCounter)
	prometheus.MustRegister(abortCounter)
	prometheus.MustRegister(responseTimeHistogram)
}
