package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type denyLocker struct{}

func (denyLocker) Lock(context.Context, string, time.Duration) (bool, error) { return false, nil }
func (denyLocker) Unlock(context.Context, string) error                      { return nil }

type countingLocker struct {
	mu      sync.Mutex
	held    map[string]bool
	unlocks int
}

func (l *countingLocker) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *countingLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	l.unlocks++
	return nil
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(time.UTC, nil, zap.NewNop(), Job{Name: "broken", Spec: "every day", Run: func(context.Context) (int, error) { return 0, nil }})
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestRunJobTakesLock(t *testing.T) {
	var runs atomic.Int32
	job := Job{Name: "reset", Spec: "@every 1h", Run: func(context.Context) (int, error) {
		runs.Add(1)
		return 1, nil
	}}

	locker := &countingLocker{held: map[string]bool{}}
	s, err := NewScheduler(time.UTC, locker, zap.NewNop(), job)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.runJob(context.Background(), job)
	if runs.Load() != 1 || locker.unlocks != 1 {
		t.Fatalf("runs = %d, unlocks = %d", runs.Load(), locker.unlocks)
	}

	s.locker = denyLocker{}
	s.runJob(context.Background(), job)
	if runs.Load() != 1 {
		t.Fatal("job ran without the lock")
	}
}

func TestSchedulerServeRunsOnStartAndStops(t *testing.T) {
	started := make(chan struct{}, 1)
	job := Job{Name: "complete", Spec: "@every 1h", RunOnStart: true, Run: func(context.Context) (int, error) {
		started <- struct{}{}
		return 0, nil
	}}
	s, err := NewScheduler(time.UTC, nil, zap.NewNop(), job)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

type fakeServer struct {
	stop      chan struct{}
	listenErr error
	shutdowns atomic.Int32
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stop)
	return nil
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	srv := &fakeServer{stop: make(chan struct{})}
	svc := NewHTTPService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("shutdown called %d times", srv.shutdowns.Load())
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	svc := NewHTTPService(&fakeServer{listenErr: errors.New("address in use")}, time.Second)

	if err := svc.Serve(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}
