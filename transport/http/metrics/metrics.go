package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics interface {
	Registry() *prometheus.Registry
}

// Result labels for engine operations.
const (
	ResultOK         = "ok"
	ResultRejected   = "rejected"
	ResultValidation = "validation_error"
	ResultCrypto     = "crypto_error"
	ResultError      = "error"
)
