package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/dispatch"
	"github.com/vk/gridflow/internal/fields"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Module implements the dispatch.Module interface for this package. Out
// defaults to os.Stdout.
type Module struct {
	Out io.Writer
}

// OnRunPrint writes every input field, sorted by name, and echoes the inputs
// as outputs.
func (m *Module) OnRunPrint(ctx context.Context, in fields.Fields) (fields.Fields, error) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	ctxlog.FromContext(ctx).Info("Printing input", "fields", len(in))

	if len(in) == 0 {
		fmt.Fprintln(out, "      (null)")
		return fields.Fields{}, nil
	}

	for _, k := range in.Keys() {
		raw, err := ctyjson.SimpleJSONValue{Value: in[k]}.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to render input %q: %w", k, err)
		}
		fmt.Fprintf(out, "      %s = %s\n", k, raw)
	}
	return in, nil
}

// Register registers the handler with the local dispatcher.
func (m *Module) Register(l *dispatch.Local) {
	l.Register("print", m.OnRunPrint)
}
