package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/ecckit/log"
)

// fakeServer 阻塞运行直到 Shutdown 被调用
type fakeServer struct {
	runErr   error
	stop     chan struct{}
	once     sync.Once
	shutdown bool
	mu       sync.Mutex
}

func newFakeServer(runErr error) *fakeServer {
	return &fakeServer{runErr: runErr, stop: make(chan struct{})}
}

func (s *fakeServer) Run() error {
	if s.runErr != nil {
		return s.runErr
	}
	<-s.stop
	return nil
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *fakeServer) wasShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func startAsync(app *Application) <-chan error {
	done := make(chan error, 1)
	go func() { done <- app.Start() }()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return")
		return nil
	}
}

func TestStartStop(t *testing.T) {
	srv := newFakeServer(nil)
	closed := make(chan string, 2)

	app := New(
		WithLogger(log.Nop()),
		WithServer(srv),
		WithClose("destroy-key", func(context.Context) error { closed <- "destroy-key"; return nil }, 0),
		WithClose("flush-logs", func(context.Context) error { closed <- "flush-logs"; return nil }, time.Second),
	)

	done := startAsync(app)
	time.Sleep(50 * time.Millisecond)
	app.Stop()

	require.NoError(t, wait(t, done))
	assert.True(t, srv.wasShutdown())
	assert.Equal(t, "flush-logs", <-closed, "close functions run in reverse order")
	assert.Equal(t, "destroy-key", <-closed)
	assert.True(t, app.Info().Started)
}

func TestServerFailureStopsOthers(t *testing.T) {
	boom := errors.New("listen tcp :8080: address already in use")
	healthy := newFakeServer(nil)
	closed := false

	app := New(
		WithLogger(log.Nop()),
		WithServer(healthy, newFakeServer(boom)),
		WithClose("cleanup", func(context.Context) error { closed = true; return nil }, 0),
	)

	err := wait(t, startAsync(app))
	assert.ErrorIs(t, err, boom)
	assert.True(t, healthy.wasShutdown())
	assert.True(t, closed, "close functions run even when a server fails")
}

func TestStartupFailure(t *testing.T) {
	bad := errors.New("curve self-check failed")
	srv := newFakeServer(nil)
	var order []string

	app := New(
		WithLogger(log.Nop()),
		WithServer(srv),
		WithStartup("load-key", func(context.Context) error { order = append(order, "load-key"); return nil }),
		WithStartup("self-check", func(context.Context) error { order = append(order, "self-check"); return bad }),
		WithStartup("never", func(context.Context) error { order = append(order, "never"); return nil }),
	)

	err := app.Start()
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, []string{"load-key", "self-check"}, order)
	assert.False(t, srv.wasShutdown(), "servers never started")
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app := New(WithContext(ctx), WithLogger(log.Nop()), WithServer(newFakeServer(nil)))
	assert.NoError(t, wait(t, startAsync(app)))
}

func TestStartTwice(t *testing.T) {
	app := New(WithLogger(log.Nop()))
	app.Stop()
	require.NoError(t, app.Start())
	assert.ErrorIs(t, app.Start(), ErrAlreadyStarted)
}

func TestAddServer(t *testing.T) {
	app := New(WithLogger(log.Nop()))

	require.NoError(t, app.AddServer(newFakeServer(nil)))
	assert.Error(t, app.AddServer(nil))
	assert.Equal(t, 1, app.Info().ServerCount)

	app.started = true
	assert.ErrorIs(t, app.AddServer(newFakeServer(nil)), ErrAlreadyStarted)
}

func TestRegisterClose(t *testing.T) {
	app := New(WithLogger(log.Nop()))

	called := false
	require.NoError(t, app.RegisterClose("test", func(context.Context) error {
		called = true
		return nil
	}, time.Second))
	assert.Error(t, app.RegisterClose("nil", nil, time.Second))
	assert.Equal(t, 1, app.Info().CloseCount)

	app.runCloseTasks()
	assert.True(t, called)
}

func TestCloseFuncPanic(t *testing.T) {
	app := New(
		WithLogger(log.Nop()),
		WithClose("panic-close", func(context.Context) error { panic("test panic") }, time.Second),
	)
	assert.NotPanics(t, app.runCloseTasks)
	assert.ErrorIs(t, app.runCloseTask(app.closeFuncs[0]), ErrClosePanic)
}

func TestCloseFuncTimeout(t *testing.T) {
	app := New(
		WithLogger(log.Nop()),
		WithClose("slow-close", func(ctx context.Context) error {
			time.Sleep(2 * time.Second)
			return nil
		}, 100*time.Millisecond),
	)

	start := time.Now()
	app.runCloseTasks()
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNilOptions(t *testing.T) {
	app := New(
		nil,
		WithServer(nil),
		WithStartup("nil", nil),
		WithClose("nil", nil, 0),
		WithShutdownTimeout(0),
		WithCloseTimeout(0),
		WithLogger(nil),
	)

	info := app.Info()
	assert.Zero(t, info.ServerCount)
	assert.Zero(t, info.StartupCount)
	assert.Zero(t, info.CloseCount)
	assert.Equal(t, 30*time.Second, app.shutdownTimeout)
	assert.Equal(t, 10*time.Second, app.closeTimeout)
}
