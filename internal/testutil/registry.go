package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gridflow/internal/hcl"
	"github.com/vk/gridflow/internal/registry"
)

// Manifests is a small task and hook catalogue shared by the tests.
const Manifests = `
task "noop" {
  description = "Does nothing."
}

task "sleep" {
  description = "Records when it ran."
}

task "fail" {
  description = "Fails under the mock dispatcher."
}

task "greet" {
  service = "local"

  input "name" {
    type = string
  }
  input "greeting" {
    type    = string
    default = "hello"
  }
  input "loud" {
    type     = bool
    optional = true
  }
}

task "sum" {
  input "values" {
    type = list(number)
  }
}

hook "deploy" {
  description = "Deployment notifications."
  task        = "noop"
}
`

// Registries loads manifest HCL into task and hook registries and fails the
// test if the manifests do not load or validate.
func Registries(t *testing.T, src string) (*registry.TaskRegistry, *registry.HookRegistry) {
	t.Helper()
	model, err := hcl.NewLoader().LoadSource(context.Background(), "manifests.hcl", []byte(src))
	require.NoError(t, err)
	tasks, hooks := registry.PopulateFromModel(model)
	require.NoError(t, registry.Validate(context.Background(), tasks, hooks))
	return tasks, hooks
}
