// Package supervisor runs the long-lived services of the artwork table
// server (HTTP listener, idle view sweeper) under a suture supervisor, which
// restarts failed services with backoff and stops them all on shutdown.
package supervisor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/Sternrassler/artwork-table/pkg/logging"
)

// Config holds supervisor tuning.
type Config struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay, in seconds.
	FailureDecay float64

	// FailureBackoff is the wait once the threshold is exceeded.
	FailureBackoff time.Duration

	// ShutdownTimeout is how long each service gets to stop.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the supervisor defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the root supervisor.
type Tree struct {
	root   *suture.Supervisor
	logger zerolog.Logger
}

// NewTree creates an empty supervisor tree. Zero config values take the
// defaults.
func NewTree(name string, cfg Config) *Tree {
	def := DefaultConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = def.FailureDecay
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = def.FailureBackoff
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	// MustHook has a pointer receiver.
	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger("supervisor")}).MustHook()

	root := suture.New(name, suture.Spec{
		EventHook:        hook,
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	})

	return &Tree{
		root:   root,
		logger: logging.NewLogger("supervisor"),
	}
}

// Add starts supervising svc.
func (t *Tree) Add(svc suture.Service) suture.ServiceToken {
	return t.root.Add(svc)
}

// Serve runs every service until ctx is done or the tree is terminated,
// then waits for them to stop. Cancellation is not reported as an error.
func (t *Tree) Serve(ctx context.Context) error {
	var firstErr error
	for err := range t.root.ServeBackground(ctx) {
		if err != nil && !errors.Is(err, context.Canceled) && firstErr == nil {
			firstErr = err
		}
	}

	if unstopped, err := t.root.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		t.logger.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			t.logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	return firstErr
}
