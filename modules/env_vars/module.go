package env_vars

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/gridflow/internal/dispatch"
	"github.com/vk/gridflow/internal/fields"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Module implements the dispatch.Module interface for this package.
type Module struct {
	// LookupEnv overrides os.LookupEnv, mainly for tests.
	LookupEnv func(string) (string, bool)
}

// OnRunEnvVars returns the variables listed in the required "names" input as
// the "values" map. Unset variables map to the empty string. Only named
// variables are ever read, so the worker's own settings stay private.
func (m *Module) OnRunEnvVars(ctx context.Context, in fields.Fields) (fields.Fields, error) {
	lookup := os.LookupEnv
	if m.LookupEnv != nil {
		lookup = m.LookupEnv
	}

	names, ok := in["names"]
	if !ok || names.IsNull() {
		return nil, errors.New("input 'names' is required")
	}
	var wanted []string
	if err := gocty.FromCtyValue(names, &wanted); err != nil {
		return nil, fmt.Errorf("input 'names': %w", err)
	}

	values := make(map[string]cty.Value, len(wanted))
	for _, name := range wanted {
		v, _ := lookup(name)
		values[name] = cty.StringVal(v)
	}
	out := cty.MapValEmpty(cty.String)
	if len(values) > 0 {
		out = cty.MapVal(values)
	}
	return fields.Fields{"values": out}, nil
}

// Register registers the handler with the local dispatcher.
func (m *Module) Register(l *dispatch.Local) {
	l.Register("env_vars", m.OnRunEnvVars)
}
