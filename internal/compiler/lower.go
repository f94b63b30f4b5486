package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/robfig/cron/v3"
	"github.com/vk/gridflow/internal/config"
	"github.com/vk/gridflow/internal/dag"
	"github.com/vk/gridflow/internal/fields"
	"github.com/vk/gridflow/internal/inputs"
	"github.com/vk/gridflow/internal/nodeid"
	"github.com/vk/gridflow/internal/report"
	"github.com/zclconf/go-cty/cty/convert"
)

// lowerNode resolves one input node. The node is usable only if none of the
// returned diagnostics is error-class.
func (s *session) lowerNode(id nodeid.NodeID, n inputs.Node) (dag.Node, []report.Error) {
	out := dag.Node{Priority: n.EffectivePriority(), InputID: id}

	switch n.Kind {
	case inputs.KindManual:
		out.Kind = dag.KindManual
		return out, nil

	case inputs.KindSchedule:
		out.Kind = dag.KindSchedule
		sched, err := parseCron(n.Cron)
		if err != nil {
			return out, []report.Error{report.IncorrectCronFormat(id, n.Cron, err)}
		}
		out.Schedule = &dag.ScheduleRef{Expr: n.Cron, Schedule: sched}
		return out, nil

	case inputs.KindWebhook:
		out.Kind = dag.KindWebhook
		out.Hook = &dag.HookRef{ID: n.Hook}
		if def, ok := s.hooks.Find(n.Hook); ok {
			out.Hook.Definition = def
			return out, nil
		}
		class := report.ErrorClass(report.CodeMissingHook)
		if s.opts.LenientHooks {
			class = report.Warning(report.CodeMissingHook)
		}
		return out, []report.Error{report.OnNode(id, class, "webhook %q is not registered", n.Hook)}

	case inputs.KindAction:
		out.Kind = dag.KindAction
		def, ok := s.tasks.Find(n.Task)
		if !ok {
			return out, []report.Error{report.OnNode(id, report.ErrorClass(report.CodeMissingTask), "task %q is not registered", n.Task)}
		}
		resolved, diags := resolveInputs(id, def, n.Inputs)
		out.Task = &dag.TaskRef{Name: def.Name, Inputs: resolved}
		return out, diags

	default:
		return out, []report.Error{report.OnNode(id, report.ErrorClass(report.CodeUnknownNodeKind), "unknown node kind %q", n.Kind)}
	}
}

// parseCron parses a standard five-field schedule or descriptor. The cron
// parser panics on a timezone prefix that is not followed by a space, so
// those are rejected up front and any other panic becomes an error.
func parseCron(expr string) (sched cron.Schedule, err error) {
	for _, prefix := range []string{"TZ=", "CRON_TZ="} {
		if strings.HasPrefix(expr, prefix) && !strings.Contains(expr, " ") {
			return nil, errors.New("timezone must be followed by a schedule")
		}
	}
	defer func() {
		if r := recover(); r != nil {
			sched, err = nil, fmt.Errorf("unparsable schedule: %v", r)
		}
	}()
	return cron.ParseStandard(expr)
}

// resolveInputs checks an action's static inputs against the task's
// declarations, applies defaults and converts values to the declared types.
// A task that declares no inputs accepts any.
func resolveInputs(id nodeid.NodeID, def *config.TaskDefinition, given fields.Fields) (fields.Fields, []report.Error) {
	if len(def.Inputs) == 0 {
		return given.Clone(), nil
	}

	var diags []report.Error
	resolved := make(fields.Fields, len(def.Inputs))

	names := make([]string, 0, len(def.Inputs))
	for name := range def.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		decl := def.Inputs[name]
		v, present := given[name]
		if !present || v.IsNull() {
			switch {
			case decl.Default != nil:
				resolved[name] = *decl.Default
			case decl.Required():
				diags = append(diags, report.OnNode(id, report.ErrorClass(report.CodeMissingTaskInput),
					"task %q requires input %q", def.Name, name))
			}
			continue
		}
		converted, err := convert.Convert(v, decl.Type)
		if err != nil {
			diags = append(diags, report.OnNode(id, report.ErrorClass(report.CodeMismatchedInputType),
				"input %q of task %q must be %s: %v", name, def.Name, typeexpr.TypeString(decl.Type), err))
			continue
		}
		resolved[name] = converted
	}

	for _, name := range given.Keys() {
		if _, declared := def.Inputs[name]; declared {
			continue
		}
		diags = append(diags, report.OnNode(id, report.Warning(report.CodeUnknownTaskInput),
			"task %q does not declare input %q", def.Name, name))
		resolved[name] = given[name]
	}
	return resolved, diags
}
