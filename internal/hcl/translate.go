package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/vk/gridflow/internal/config"
	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateTask converts the HCL-specific task schema into the agnostic model.
func translateTask(ctx context.Context, t *taskBlock) (*config.TaskDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("task", t.Name)
	logger.Debug("Translating HCL task to internal config model.")

	def := &config.TaskDefinition{
		Name:        t.Name,
		Description: t.Description,
		Service:     t.Service,
		Tags:        t.Tags,
		Inputs:      make(map[string]*config.InputDefinition, len(t.Inputs)),
		Outputs:     make(map[string]*config.OutputDefinition, len(t.Outputs)),
	}

	if t.Timeout != "" {
		d, err := time.ParseDuration(t.Timeout)
		if err != nil {
			return nil, fmt.Errorf("task '%s': invalid timeout %q: %w", t.Name, t.Timeout, err)
		}
		def.Timeout = d
	}

	for _, in := range t.Inputs {
		if _, dup := def.Inputs[in.Name]; dup {
			return nil, fmt.Errorf("task '%s': input '%s' is declared more than once", t.Name, in.Name)
		}
		translated, err := translateInput(in)
		if err != nil {
			return nil, fmt.Errorf("task '%s', input '%s': %w", t.Name, in.Name, err)
		}
		def.Inputs[in.Name] = translated
	}

	for _, out := range t.Outputs {
		ty, diags := typeexpr.TypeConstraint(out.Type)
		if diags.HasErrors() {
			return nil, fmt.Errorf("task '%s', output '%s': %w", t.Name, out.Name, diags)
		}
		def.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        ty,
			Description: out.Description,
		}
	}

	logger.Debug("Task translated.", "inputs", len(def.Inputs), "outputs", len(def.Outputs))
	return def, nil
}

// translateInput resolves the declared type and evaluates the optional
// default, converting it to the declared type.
func translateInput(in *inputBlock) (*config.InputDefinition, error) {
	ty, diags := typeexpr.TypeConstraint(in.Type)
	if diags.HasErrors() {
		return nil, diags
	}

	def := &config.InputDefinition{
		Name:        in.Name,
		Type:        ty,
		Description: in.Description,
		Optional:    in.Optional,
	}

	if in.Default == nil {
		return def, nil
	}
	val, diags := in.Default.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating default: %w", diags)
	}
	if val.IsNull() {
		return def, nil
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return nil, fmt.Errorf("default does not match type %s: %w", typeexpr.TypeString(ty), err)
	}
	def.Default = &converted
	return def, nil
}

func translateHook(h *hookBlock) *config.HookDefinition {
	return &config.HookDefinition{
		ID:          h.ID,
		Description: h.Description,
		Task:        h.Task,
		Secret:      h.Secret,
	}
}
