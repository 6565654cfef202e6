// Package telemetry provides the Gateway's logging and metrics surface:
// a structured Logger interface in the shape of eventloop/logging.go
// (configured per Gateway via ocall.WithLogger, with NoOpLogger as the
// default; there is no package-level logger), and a Metrics
// type tracking OCALL latency (via a streaming P-Square quantile
// estimator), queue depth, and the direct-exit/exitless split, modeled on
// eventloop/metrics.go.
//
// Backpressure — how often the exitless queue was full and the Gateway
// fell back to a direct enclave-exit — is additionally reported through a
// github.com/joeycumines/go-catrate sliding-window limiter, giving
// operators a rate rather than just a cumulative count.
package telemetry
