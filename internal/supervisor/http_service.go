package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService runs an HTTP server as a supervised service. A server that
// cannot listen terminates the whole tree instead of being restarted.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration

	mu     sync.Mutex
	err    error
	failed chan struct{}
	once   sync.Once
}

// NewHTTPService wraps server. Shutdown waits at most shutdownTimeout for
// open requests.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		failed:          make(chan struct{}),
	}
}

// Serve implements suture.Service.
func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err == nil {
			return nil
		}
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
		h.once.Do(func() { close(h.failed) })
		return fmt.Errorf("http server failed: %w: %w", suture.ErrTerminateSupervisorTree, err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// Failed is closed when the server stops with an error.
func (h *HTTPService) Failed() <-chan struct{} {
	return h.failed
}

// Err returns the error that stopped the server, if any.
func (h *HTTPService) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *HTTPService) String() string {
	return "http-server"
}
