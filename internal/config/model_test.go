package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zclconf/go-cty/cty"
)

func TestModel_Merge(t *testing.T) {
	m := NewModel()
	m.Tasks["a"] = &TaskDefinition{Name: "a", Description: "old"}

	other := NewModel()
	other.Tasks["a"] = &TaskDefinition{Name: "a", Description: "new"}
	other.Hooks["push"] = &HookDefinition{ID: "push"}

	m.Merge(other)
	m.Merge(nil)

	assert.Equal(t, "new", m.Tasks["a"].Description)
	assert.Contains(t, m.Hooks, "push")
}

func TestTaskDefinition_HasTags(t *testing.T) {
	def := &TaskDefinition{Tags: []string{"net", "http"}}
	assert.True(t, def.HasTags())
	assert.True(t, def.HasTags("http"))
	assert.True(t, def.HasTags("http", "net"))
	assert.False(t, def.HasTags("http", "db"))
}

func TestInputDefinition_Required(t *testing.T) {
	def := cty.StringVal("x")
	assert.True(t, (&InputDefinition{Type: cty.String}).Required())
	assert.False(t, (&InputDefinition{Type: cty.String, Optional: true}).Required())
	assert.False(t, (&InputDefinition{Type: cty.String, Default: &def}).Required())
}
