package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vk/gridflow/internal/compiler"
	"github.com/vk/gridflow/internal/config"
	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/dispatch"
	"github.com/vk/gridflow/internal/executor"
	"github.com/vk/gridflow/internal/pghooks"
	"github.com/vk/gridflow/internal/registry"
	"github.com/vk/gridflow/internal/server"
	"github.com/vk/gridflow/internal/worker"
	"github.com/vk/gridflow/modules"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	tasks *registry.TaskRegistry
	hooks *registry.HookRegistry

	local     *dispatch.Local
	runtime   *dispatch.SocketIO
	router    *dispatch.Router
	pool      *pgxpool.Pool
	hookStore *pghooks.Store

	worker *worker.GraphWorker
	server *server.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own isolated logger. When no modules are given
// the built-in ones are registered.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, loader config.Loader, mods ...dispatch.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	a := &App{outW: outW, logger: logger, config: cfg}

	model, err := loadManifests(ctx, loader, cfg.ManifestPaths)
	if err != nil {
		return nil, err
	}
	a.tasks, a.hooks = registry.PopulateFromModel(model)
	logger.Debug("Registries populated from manifests.", "tasks", a.tasks.Len(), "hooks", a.hooks.Len())

	if cfg.DatabaseURL != "" {
		if err := a.loadStoredHooks(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	if err := registry.Validate(ctx, a.tasks, a.hooks); err != nil {
		a.Close()
		return nil, fmt.Errorf("registry validation failed: %w", err)
	}
	logger.Debug("Registry validation passed.")

	if len(mods) == 0 {
		mods = modules.All()
	}
	router, err := a.buildDispatch(ctx, mods)
	if err != nil {
		a.Close()
		return nil, err
	}

	comp := compiler.New(
		compiler.WithShortCircuit(cfg.ShortCircuit),
		compiler.WithLenientHooks(cfg.LenientHooks),
	)
	exec := newExecutor(cfg, router)
	a.worker = worker.New(comp, exec, a.tasks, a.hooks)

	var serverOpts []server.Option
	if a.hookStore != nil {
		serverOpts = append(serverOpts, server.WithHookStore(a.hookStore))
	}
	a.server = server.New(ctx, a.worker, serverOpts...)

	logger.Info("✅ Application initialized.",
		"tasks", a.tasks.Len(),
		"hooks", a.hooks.Len(),
		"concurrency", exec.Options().LimitConcurrency,
	)
	return a, nil
}

// newExecutor builds the executor over d. An explicit worker count caps
// concurrency; otherwise the executor sizes itself from d's capacity.
func newExecutor(cfg *Config, d dispatch.Dispatcher) *executor.Default {
	return executor.New(d,
		executor.WithLimitConcurrency(cfg.Workers),
		executor.WithStrictPriority(cfg.StrictPriority),
		executor.WithShortCircuit(cfg.ShortCircuit),
		executor.WithDispatchTimeout(cfg.DispatchTimeout),
	)
}

// localPoolSize is the number of in-process dispatch workers.
func localPoolSize(cfg *Config) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return executor.DefaultConcurrency
}

// loadManifests reads the embedded built-in manifests and merges the user's
// manifests over them.
func loadManifests(ctx context.Context, loader config.Loader, paths []string) (*config.Model, error) {
	model, err := loader.LoadSource(ctx, modules.ManifestsFile, modules.Manifests)
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in manifests: %w", err)
	}
	if len(paths) == 0 {
		return model, nil
	}

	user, err := loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	model.Merge(user)
	return model, nil
}

func (a *App) loadStoredHooks(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, a.config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.pool = pool

	store := pghooks.New(pool)
	if err := store.CreateSchema(ctx); err != nil {
		return err
	}
	stored, err := store.Load(ctx)
	if err != nil {
		return err
	}
	a.hooks.Merge(stored)
	a.hookStore = store
	a.logger.Debug("Stored webhook bindings merged.", "count", stored.Len())
	return nil
}

// buildDispatch registers the local modules and, when configured, connects
// to the runtime and routes RuntimeService tasks to it.
func (a *App) buildDispatch(ctx context.Context, mods []dispatch.Module) (*dispatch.Router, error) {
	a.local = dispatch.NewLocal(localPoolSize(a.config), mods...)
	router := dispatch.NewRouter(a.local)
	a.router = router

	for _, name := range a.tasks.Names() {
		def, _ := a.tasks.Find(name)
		if def.Service != RuntimeService && !a.local.Has(name) {
			a.logger.Warn("Task has no local handler; dispatching it will fail.", "task", name, "service", def.Service)
		}
	}

	if a.config.RuntimeURL == "" {
		return router, nil
	}

	rt, err := dispatch.DialSocketIO(ctx, dispatch.SocketIOConfig{
		URL:       a.config.RuntimeURL,
		Namespace: a.config.RuntimeNamespace,
		Workers:   a.config.RuntimeWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to runtime: %w", err)
	}
	a.runtime = rt
	router.Route(RuntimeService, rt)
	a.logger.Info("🔌 Connected to runtime.", "url", a.config.RuntimeURL)
	return router, nil
}

// Worker returns the application's graph worker.
func (a *App) Worker() *worker.GraphWorker { return a.worker }

// Server returns the HTTP API. This is primarily for testing.
func (a *App) Server() *server.Server { return a.server }

// Concurrency returns the executor's effective concurrency limit.
func (a *App) Concurrency() int {
	if d, ok := a.worker.Executor().(*executor.Default); ok {
		return d.Options().LimitConcurrency
	}
	return 0
}

// Close releases the runtime connection and the database pool.
func (a *App) Close() {
	if a.runtime != nil {
		if err := a.runtime.Close(); err != nil {
			a.logger.Warn("Closing runtime connection failed.", "error", err)
		}
		a.runtime = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
