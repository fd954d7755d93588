package services

import (
	"context"
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"spark-feed/config"
	"spark-feed/logging"
	"spark-feed/metrics"
)

// newSourceBreaker creates the circuit breaker guarding one content source.
// It opens once FailureRatio of at least MinRequests calls in Interval fail;
// an open breaker fails fetches immediately, which callers treat like any
// other source failure.
func newSourceBreaker[T any](name string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker[T] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= cfg.FailureRatio {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_ratio", failureRatio).
					Msg("Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		// a caller giving up is not a sign the source is unhealthy
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// executeWithBreaker runs fn through cb and records the outcome
func executeWithBreaker[T any](cb *gobreaker.CircuitBreaker[T], fn func() (T, error)) (T, error) {
	result, err := cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "rejected").Inc()
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "success").Inc()
	}
	return result, err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
