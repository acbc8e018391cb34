// Package server runs the process's long-lived services. One service is the
// foreground (the console or an autoplay run); when it returns, everything
// else is stopped and the process exits.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a component whose Start blocks until Stop is called or its work
// is done.
type Service interface {
	Start() error
	Stop()
}

// ErrNoForeground is returned by Run when no foreground service was set.
var ErrNoForeground = errors.New("server: no foreground service")

type namedService struct {
	name    string
	service Service
}

type exit struct {
	name       string
	err        error
	foreground bool
}

// Lifecycle starts background services in order, then the foreground service,
// and stops them all in reverse order once the foreground returns.
type Lifecycle struct {
	logger     *zap.Logger
	background []namedService
	foreground *namedService
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	if logger == nil {
		panic("server.NewLifecycle: logger must not be nil")
	}
	return &Lifecycle{logger: logger}
}

// Add registers a background service. A background service returning nil is
// logged and otherwise ignored; returning an error ends the run.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	if name == "" || svc == nil {
		panic("server.Lifecycle.Add: name and svc are required")
	}
	l.background = append(l.background, namedService{name: name, service: svc})
}

// SetForeground registers the service whose return ends the run, replacing
// any previous one.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) SetForeground(name string, svc Service) {
	if name == "" || svc == nil {
		panic("server.Lifecycle.SetForeground: name and svc are required")
	}
	l.foreground = &namedService{name: name, service: svc}
}

// Run starts every service and blocks until the foreground returns, a
// background service fails, SIGINT or SIGTERM arrives, or ctx is cancelled.
//
// Postcondition: every service has been stopped; the returned error is the
// first service failure, if any.
func (l *Lifecycle) Run(ctx context.Context) error {
	if l.foreground == nil {
		return ErrNoForeground
	}
	start := time.Now()
	all := append(append([]namedService(nil), l.background...), *l.foreground)

	exits := make(chan exit, len(all))
	for i, ns := range all {
		isForeground := i == len(all)-1
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name), zap.Bool("foreground", isForeground))
			err := ns.service.Start()
			if err != nil {
				err = fmt.Errorf("service %s: %w", ns.name, err)
			}
			exits <- exit{name: ns.name, err: err, foreground: isForeground}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
wait:
	for {
		select {
		case sig := <-sigCh:
			l.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
			break wait
		case <-ctx.Done():
			l.logger.Info("context cancelled, shutting down")
			break wait
		case ex := <-exits:
			if ex.err != nil {
				l.logger.Error("service failed, shutting down", zap.String("service", ex.name), zap.Error(ex.err))
				runErr = ex.err
				break wait
			}
			if ex.foreground {
				l.logger.Info("foreground service finished", zap.String("service", ex.name))
				break wait
			}
			l.logger.Info("background service finished", zap.String("service", ex.name))
		}
	}

	for i := len(all) - 1; i >= 0; i-- {
		l.logger.Debug("stopping service", zap.String("service", all[i].name))
		all[i].service.Stop()
	}
	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return runErr
}
