package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/vk/gridflow/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Environment variables consulted when the matching flag is not set.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvRuntimeURL  = "GRIDFLOW_RUNTIME_URL"
)

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	return parse(args, output, os.Getenv)
}

func parse(args []string, output io.Writer, getenv func(string) string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gridflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Gridflow - compiles workflow graphs and executes them on local and remote workers.

Usage:
  gridflow [options] [MANIFEST_PATH...]

Arguments:
  MANIFEST_PATH
    Path to a single .hcl file or a directory containing .hcl task and hook
    manifests. Built-in tasks are always available.

Options:
`)
		flagSet.PrintDefaults()
	}

	var manifests []string
	manifestFlag := func(v string) error {
		manifests = append(manifests, v)
		return nil
	}
	flagSet.Func("manifests", "Path to a manifest file or directory. May be repeated.", manifestFlag)
	flagSet.Func("m", "Path to a manifest file or directory (shorthand).", manifestFlag)

	listenFlag := flagSet.String("listen", ":8080", "Address the HTTP API listens on.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 0, "Local worker pool size and maximum number of nodes dispatched at once. 0 uses the local default and sizes the limit from all dispatchers.")
	strictFlag := flagSet.Bool("strict-priority", false, "Run the nodes of a batch one at a time in priority order.")
	shortCircuitFlag := flagSet.Bool("short-circuit", false, "Stop compiling at the first error and stop executing after a failed batch.")
	lenientFlag := flagSet.Bool("lenient-hooks", false, "Report unknown webhook ids as warnings instead of errors.")
	dispatchTimeoutFlag := flagSet.Duration("dispatch-timeout", 30*time.Second, "Default time limit for a single task dispatch.")
	runtimeURLFlag := flagSet.String("runtime-url", "", "socket.io URL of the external runtime. Env: "+EnvRuntimeURL+".")
	runtimeNSFlag := flagSet.String("runtime-namespace", "/", "socket.io namespace of the external runtime.")
	runtimeWorkersFlag := flagSet.Int("runtime-workers", 0, "Worker pool size of the external runtime.")
	databaseURLFlag := flagSet.String("database-url", "", "Postgres URL holding stored webhook bindings. Env: "+EnvDatabaseURL+".")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	manifests = append(manifests, flagSet.Args()...)
	slog.Debug("Manifest paths determined.", "paths", manifests)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel, err := app.ParseLogLevel(*logLevelFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	runtimeURL := *runtimeURLFlag
	if runtimeURL == "" {
		runtimeURL = getenv(EnvRuntimeURL)
	}
	databaseURL := *databaseURLFlag
	if databaseURL == "" {
		databaseURL = getenv(EnvDatabaseURL)
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ManifestPaths:    manifests,
		ListenAddr:       *listenFlag,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
		Workers:          *workersFlag,
		StrictPriority:   *strictFlag,
		ShortCircuit:     *shortCircuitFlag,
		LenientHooks:     *lenientFlag,
		DispatchTimeout:  *dispatchTimeoutFlag,
		RuntimeURL:       runtimeURL,
		RuntimeNamespace: *runtimeNSFlag,
		RuntimeWorkers:   *runtimeWorkersFlag,
		DatabaseURL:      databaseURL,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
