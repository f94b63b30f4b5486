package cli

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridflow/internal/app"
)

func TestParse(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		args     []string
		env      map[string]string
		want     *app.Config
		wantExit bool
		wantCode int
		wantMsg  string
	}{
		{
			name: "defaults",
			args: nil,
			want: &app.Config{
				ListenAddr:       ":8080",
				LogFormat:        "json",
				LogLevel:         slog.LevelInfo,
				DispatchTimeout:  30 * time.Second,
				RuntimeNamespace: "/",
			},
		},
		{
			name: "manifests from flags and arguments",
			args: []string{"-m", "a.hcl", "--manifests", "dir", "--log-format", "TEXT", "extra"},
			want: &app.Config{
				ManifestPaths:    []string{"a.hcl", "dir", "extra"},
				ListenAddr:       ":8080",
				LogFormat:        "text",
				LogLevel:         slog.LevelInfo,
				DispatchTimeout:  30 * time.Second,
				RuntimeNamespace: "/",
			},
		},
		{
			name: "executor and compiler switches",
			args: []string{
				"--workers", "3", "--strict-priority", "--short-circuit", "--lenient-hooks",
				"--dispatch-timeout", "2s", "--listen", "127.0.0.1:9000", "--log-level", "debug",
			},
			want: &app.Config{
				ListenAddr:       "127.0.0.1:9000",
				LogFormat:        "json",
				LogLevel:         slog.LevelDebug,
				Workers:          3,
				StrictPriority:   true,
				ShortCircuit:     true,
				LenientHooks:     true,
				DispatchTimeout:  2 * time.Second,
				RuntimeNamespace: "/",
			},
		},
		{
			name: "environment fallbacks",
			env: map[string]string{
				EnvRuntimeURL:  "ws://runtime:3000/socket.io/",
				EnvDatabaseURL: "postgres://env",
			},
			args: []string{"--runtime-workers", "8"},
			want: &app.Config{
				ListenAddr:       ":8080",
				LogFormat:        "json",
				LogLevel:         slog.LevelInfo,
				DispatchTimeout:  30 * time.Second,
				RuntimeURL:       "ws://runtime:3000/socket.io/",
				RuntimeNamespace: "/",
				RuntimeWorkers:   8,
				DatabaseURL:      "postgres://env",
			},
		},
		{
			name: "flags win over environment",
			env:  map[string]string{EnvDatabaseURL: "postgres://env"},
			args: []string{"--database-url", "postgres://flag"},
			want: &app.Config{
				ListenAddr:       ":8080",
				LogFormat:        "json",
				LogLevel:         slog.LevelInfo,
				DispatchTimeout:  30 * time.Second,
				RuntimeNamespace: "/",
				DatabaseURL:      "postgres://flag",
			},
		},
		{
			name: "log level in any case",
			args: []string{"--log-level", "WARN"},
			want: &app.Config{
				ListenAddr:       ":8080",
				LogFormat:        "json",
				LogLevel:         slog.LevelWarn,
				DispatchTimeout:  30 * time.Second,
				RuntimeNamespace: "/",
			},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "unknown flag", args: []string{"--nope"}, wantCode: 2, wantMsg: "flag provided but not defined"},
		{name: "bad log format", args: []string{"--log-format", "xml"}, wantCode: 2, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"--log-level", "trace"}, wantCode: 2, wantMsg: "invalid log-level"},
		{name: "negative workers", args: []string{"--workers", "-1"}, wantCode: 2, wantMsg: "workers must not be negative"},
		{name: "runtime workers without url", args: []string{"--runtime-workers", "2"}, wantCode: 2, wantMsg: "runtime URL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := &bytes.Buffer{}
			getenv := func(k string) string { return tc.env[k] }

			cfg, shouldExit, err := parse(tc.args, out, getenv)

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, shouldExit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.want, cfg)
		})
	}
}
