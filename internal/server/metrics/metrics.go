// Package metrics declares the Prometheus collectors for authentication
// outcomes. The service may tell denied and internal outcomes apart here;
// clients never can.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels.
const (
	OperationLogin  = "login"
	OperationVerify = "verify"
	OperationHash   = "hash"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeDenied   = "denied"
	OutcomeInternal = "internal"
)

// Guard rejection reasons.
const (
	ReasonMissing = "missing"
	ReasonScheme  = "scheme"
	ReasonDenied  = "denied"
)

// AuthAttempts counts login and verify calls by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dinoauth_auth_attempts_total",
		Help: "Total number of authentication attempts by operation and outcome",
	},
	[]string{"operation", "outcome"},
)

// PasswordHashDuration observes time spent in bcrypt, including the wait for
// a hashing slot.
var PasswordHashDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "dinoauth_password_hash_seconds",
		Help:    "Password hash and verify duration in seconds",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"operation"},
)

// GuardRejections counts requests refused by the authentication guard.
var GuardRejections = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dinoauth_guard_rejections_total",
		Help: "Total number of requests rejected by the authentication guard",
	},
	[]string{"transport", "reason"},
)

// RegisterMetrics registers the package collectors with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(PasswordHashDuration)
	reg.MustRegister(GuardRejections)
}

func RecordAuthAttempt(operation, outcome string) {
	AuthAttempts.WithLabelValues(operation, outcome).Inc()
}

func RecordPasswordHash(operation string, d time.Duration) {
	PasswordHashDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func RecordGuardRejection(transport, reason string) {
	GuardRejections.WithLabelValues(transport, reason).Inc()
}
