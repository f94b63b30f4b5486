package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all top-level blocks a manifest file may contain.
type fileRoot struct {
	Tasks  []*taskBlock `hcl:"task,block"`
	Hooks  []*hookBlock `hcl:"hook,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type taskBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Service     string         `hcl:"service,optional"`
	Tags        []string       `hcl:"tags,optional"`
	Timeout     string         `hcl:"timeout,optional"`
	Inputs      []*inputBlock  `hcl:"input,block"`
	Outputs     []*outputBlock `hcl:"output,block"`
}

type inputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Optional    bool           `hcl:"optional,optional"`
}

type outputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
}

type hookBlock struct {
	ID          string `hcl:"id,label"`
	Description string `hcl:"description,optional"`
	Task        string `hcl:"task,optional"`
	Secret      bool   `hcl:"secret,optional"`
}
