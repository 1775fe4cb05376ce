package service

import (
	"errors"
	"fmt"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/metrics"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/policy"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// observe records the outcome of a mutation.
func observe(operation string, err error) {
	if err == nil {
		metrics.BookingOperations.WithLabelValues(operation).Inc()
		return
	}
	if reason, ok := policy.ReasonOf(err); ok {
		metrics.PolicyRejections.WithLabelValues(string(reason)).Inc()
	}
}
