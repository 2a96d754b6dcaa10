// Package recovery assembles the session-start context: the rolling
// checkpoint, recent handoffs and collaborator status rendered as a
// markdown prompt.
package recovery

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/sessionctx/internal/integrations"
)

// Result is the outcome of one provider.
type Result struct {
	Name      string
	Info      *integrations.Info
	Available bool
	Err       error
}

// Gather runs every provider in parallel, each bounded by its own timeout.
// A failing or slow provider is reported as unavailable and never affects
// the others. Results keep the order of providers.
func Gather(ctx context.Context, root string, providers []integrations.Provider, logger *slog.Logger) []Result {
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]Result, len(providers))
	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			timeout := p.Timeout()
			if timeout <= 0 {
				timeout = 3 * time.Second
			}
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			info, err := p.Info(pctx, root)
			if err != nil {
				logger.Debug("integration unavailable",
					slog.String("integration", p.Name()),
					slog.Duration("elapsed", time.Since(start)),
					slog.String("error", err.Error()))
				results[i] = Result{Name: p.Name(), Err: err}
				return nil
			}
			results[i] = Result{Name: p.Name(), Info: info, Available: true}
			return nil
		})
	}
	// goroutines never return errors
	_ = g.Wait()
	return results
}
