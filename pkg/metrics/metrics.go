package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "arc"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Time-boxed tokens issued, by kind.",
		},
		[]string{"kind"},
	)

	TokensConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_consumed_total",
			Help:      "Token redemption attempts, by kind and result.",
		},
		[]string{"kind", "result"},
	)

	PurchasesCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_completed_total",
			Help:      "Plugin completion callbacks, by result.",
		},
		[]string{"result"},
	)

	MailTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_total",
			Help:      "Outgoing email hand-offs, by purpose and result.",
		},
		[]string{"purpose", "result"},
	)

	JanitorDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "janitor_deleted_total",
			Help:      "Rows removed by the janitor, by table.",
		},
		[]string{"table"},
	)
)

// MustRegister exposes the collectors on the default registry. Call it once at startup.
func MustRegister() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		TokensIssuedTotal,
		TokensConsumedTotal,
		PurchasesCompletedTotal,
		MailTotal,
		JanitorDeletedTotal,
	)
}

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
