package app

import (
	"context"
	"fmt"

	"github.com/vk/gridflow/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Run serves the HTTP API until ctx is cancelled, then unloads every graph
// and releases the App's connections.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Listen(gctx, a.config.ListenAddr); err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		for _, h := range a.worker.Handles() {
			a.worker.UnloadGraph(h)
		}
		return nil
	})

	err := g.Wait()
	a.logger.Info("🏁 Application stopped.")
	return err
}
