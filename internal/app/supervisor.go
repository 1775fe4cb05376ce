package app

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
)

// Supervisor restarts long-running services. Workers (scheduler, relay,
// notifier) and the API sit under separate children so a crash loop in one
// does not back off the other.
type Supervisor struct {
	root    *suture.Supervisor
	workers *suture.Supervisor
	api     *suture.Supervisor
}

func NewSupervisor(logger *zap.Logger, shutdownTimeout time.Duration) *Supervisor {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	spec := suture.Spec{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          shutdownTimeout,
	}
	rootSpec := spec
	rootSpec.EventHook = eventHook(logger.Named("supervisor"))

	root := suture.New("barbearia", rootSpec)
	workers := suture.New("workers", spec)
	api := suture.New("api", spec)
	root.Add(workers)
	root.Add(api)

	return &Supervisor{root: root, workers: workers, api: api}
}

func (s *Supervisor) AddWorker(svc suture.Service) suture.ServiceToken {
	return s.workers.Add(svc)
}

func (s *Supervisor) AddAPI(svc suture.Service) suture.ServiceToken {
	return s.api.Add(svc)
}

// Serve blocks until ctx is cancelled and every service has stopped.
func (s *Supervisor) Serve(ctx context.Context) error {
	return s.root.Serve(ctx)
}

func eventHook(logger *zap.Logger) suture.EventHook {
	return func(e suture.Event) {
		fields := make([]zap.Field, 0, len(e.Map()))
		for k, v := range e.Map() {
			fields = append(fields, zap.Any(k, v))
		}

		switch e.Type() {
		case suture.EventTypeServicePanic:
			logger.Error(e.String(), fields...)
		case suture.EventTypeServiceTerminate, suture.EventTypeBackoff, suture.EventTypeStopTimeout:
			logger.Warn(e.String(), fields...)
		default:
			logger.Info(e.String(), fields...)
		}
	}
}
