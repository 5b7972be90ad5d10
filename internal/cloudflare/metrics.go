package cloudflare

import "github.com/prometheus/client_golang/prometheus"

// requestsTotal counts adapter calls by operation and outcome. The outcome is
// "ok", "api_error" (the upstream answered with an error status) or
// "transport_error" (no usable response).
var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cloudflare_requests_total",
		Help: "Total number of Cloudflare API calls.",
	},
	[]string{"operation", "outcome"},
)

func init() {
	prometheus.MustRegister(requestsTotal)
}

func observe(op string, err *Error) {
	outcome := "ok"
	switch {
	case err == nil:
	case err.Status > 0:
		outcome = "api_error"
	default:
		outcome = "transport_error"
	}
	requestsTotal.WithLabelValues(op, outcome).Inc()
}
