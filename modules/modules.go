// Package modules bundles the built-in local tasks: their HCL manifests and
// their Go handlers.
package modules

import (
	_ "embed"

	"github.com/vk/gridflow/internal/dispatch"
	"github.com/vk/gridflow/modules/env_vars"
	"github.com/vk/gridflow/modules/http_request"
	"github.com/vk/gridflow/modules/noop"
	"github.com/vk/gridflow/modules/print"
)

// Manifests holds the task declarations of every built-in module.
//
//go:embed manifests.hcl
var Manifests []byte

// ManifestsFile is the name the embedded manifests are reported under.
const ManifestsFile = "builtin/manifests.hcl"

// All returns one instance of every built-in module.
func All() []dispatch.Module {
	return []dispatch.Module{
		&noop.Module{},
		&print.Module{},
		&env_vars.Module{},
		&http_request.Module{},
	}
}
