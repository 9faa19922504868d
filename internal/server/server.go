package server

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// WithSignals returns a context cancelled on SIGINT or SIGTERM.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Serve runs app on addr until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			return err
		}
		// Listen returns nil after Shutdown.
		if gctx.Err() == nil {
			return errors.New("listener stopped")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("http shutting down", "addr", addr)
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
