package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TagOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tagstore", Name: "tag_operations_total", Help: "Number of tag store operations by operation and outcome."},
		[]string{"op", "status"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tagstore", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tagstore", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(TagOperations)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

// ObserveTagOp records one tag operation outcome ("ok" or "error").
func ObserveTagOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	TagOperations.WithLabelValues(op, status).Inc()
}
