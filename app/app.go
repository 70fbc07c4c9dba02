package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/transport"
)

var (
	ErrAlreadyStarted = errors.New("application already started")
	ErrClosePanic     = errors.New("close function panicked")
)

// Application 管理服务器、启动检查与关闭函数的生命周期
type Application struct {
	ctx             context.Context
	cancel          context.CancelFunc
	shutdownTimeout time.Duration
	closeTimeout    time.Duration
	signals         []os.Signal
	servers         []transport.Server
	startups        []Hook
	closeFuncs      []Hook
	logger          *log.Logger
	mu              sync.RWMutex
	started         bool
}

// Hook 具名的生命周期函数
type Hook struct {
	Name    string
	Fn      func(context.Context) error
	Timeout time.Duration
}

type Option func(*Application)

// WithContext 设置应用的根上下文
func WithContext(ctx context.Context) Option {
	return func(app *Application) {
		if ctx != nil {
			app.ctx, app.cancel = context.WithCancel(ctx)
		}
	}
}

// WithShutdownTimeout 设置服务器关闭的超时时间
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.shutdownTimeout = timeout
		}
	}
}

// WithCloseTimeout 设置关闭函数的默认超时时间
func WithCloseTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.closeTimeout = timeout
		}
	}
}

// WithSignals 设置触发优雅关闭的信号
func WithSignals(signals ...os.Signal) Option {
	return func(app *Application) {
		if len(signals) > 0 {
			app.signals = slices.Clone(signals)
		}
	}
}

// WithServer 向应用添加服务器
func WithServer(servers ...transport.Server) Option {
	return func(app *Application) {
		for _, server := range servers {
			if server != nil {
				app.servers = append(app.servers, server)
			}
		}
	}
}

// WithStartup 添加在服务器启动前按顺序执行的检查，任一失败则不启动
func WithStartup(name string, fn func(context.Context) error) Option {
	return func(app *Application) {
		if fn != nil {
			app.startups = append(app.startups, Hook{Name: name, Fn: fn})
		}
	}
}

// WithClose 添加关闭函数，timeout 为 0 时使用默认超时
func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(app *Application) {
		if fn == nil {
			app.logger.Warn().Str("name", name).Msg("nil close function ignored")
			return
		}
		app.closeFuncs = append(app.closeFuncs, Hook{Name: name, Fn: fn, Timeout: timeout})
	}
}

func WithLogger(l *log.Logger) Option {
	return func(app *Application) {
		if l != nil {
			app.logger = l
		}
	}
}

// New 使用给定选项创建应用
func New(options ...Option) *Application {
	app := &Application{
		shutdownTimeout: 30 * time.Second,
		closeTimeout:    10 * time.Second,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT},
		logger:          log.G(),
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	for _, opt := range options {
		if opt != nil {
			opt(app)
		}
	}

	return app
}

// AddServer 在启动前添加服务器
func (app *Application) AddServer(server transport.Server) error {
	if server == nil {
		return errors.New("server cannot be nil")
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	if app.started {
		return ErrAlreadyStarted
	}
	app.servers = append(app.servers, server)
	return nil
}

// RegisterClose 添加关闭函数，启动后仍可调用
func (app *Application) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return errors.New("close function cannot be nil")
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	app.closeFuncs = append(app.closeFuncs, Hook{Name: name, Fn: fn, Timeout: timeout})
	return nil
}

// Start 执行启动检查，运行所有服务器并阻塞直到收到信号、Stop 被调用
// 或任一服务器异常退出。关闭函数总会执行。
func (app *Application) Start() error {
	app.mu.Lock()
	if app.started {
		app.mu.Unlock()
		return ErrAlreadyStarted
	}
	app.started = true
	servers := slices.Clone(app.servers)
	startups := slices.Clone(app.startups)
	app.mu.Unlock()

	defer app.runCloseTasks()

	for _, h := range startups {
		if err := h.Fn(app.ctx); err != nil {
			app.logger.Error().Err(err).Str("startup", h.Name).Msg("startup check failed")
			return err
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, app.signals...)
	defer signal.Stop(sigCh)

	eg, egCtx := errgroup.WithContext(app.ctx)

	for _, server := range servers {
		eg.Go(server.Run)

		eg.Go(func() error {
			<-egCtx.Done()

			ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		})
	}

	eg.Go(func() error {
		select {
		case sig := <-sigCh:
			app.logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			app.cancel()
		case <-egCtx.Done():
		}
		return nil
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop 优雅地停止应用
func (app *Application) Stop() {
	app.cancel()
}

// runCloseTasks 按注册的逆序依次执行关闭函数
func (app *Application) runCloseTasks() {
	app.mu.RLock()
	hooks := slices.Clone(app.closeFuncs)
	app.mu.RUnlock()

	var errs []error
	for _, h := range slices.Backward(hooks) {
		if err := app.runCloseTask(h); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		app.logger.Error().Err(errors.Join(errs...)).Msg("some close functions failed")
	}
}

// runCloseTask 执行单个带超时的关闭函数
func (app *Application) runCloseTask(h Hook) error {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = app.closeTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				app.logger.Error().Interface("panic", r).Str("close", h.Name).Msg("close function panicked")
				done <- ErrClosePanic
			}
		}()
		done <- h.Fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			app.logger.Error().Err(err).Str("close", h.Name).Msg("close function failed")
		}
		return err
	case <-ctx.Done():
		app.logger.Warn().Str("close", h.Name).Msg("close function timed out")
		return ctx.Err()
	}
}

// Info 返回应用状态信息
func (app *Application) Info() ApplicationInfo {
	app.mu.RLock()
	defer app.mu.RUnlock()

	return ApplicationInfo{
		Started:      app.started,
		ServerCount:  len(app.servers),
		StartupCount: len(app.startups),
		CloseCount:   len(app.closeFuncs),
	}
}

// ApplicationInfo 提供应用状态信息
type ApplicationInfo struct {
	Started      bool `json:"started"`
	ServerCount  int  `json:"server_count"`
	StartupCount int  `json:"startup_count"`
	CloseCount   int  `json:"close_count"`
}
