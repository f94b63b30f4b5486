package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const httpManifest = `
task "http_request" {
  description = "Performs an HTTP request."
  service     = "local"
  tags        = ["net", "http"]
  timeout     = "15s"

  input "url" {
    type = string
  }
  input "method" {
    type    = string
    default = "GET"
  }
  input "headers" {
    type     = map(string)
    optional = true
  }
  input "retries" {
    type    = number
    default = "3"
  }
  output "status_code" {
    type = number
  }
}

hook "github_push" {
  description = "Push events from GitHub."
  task        = "print"
  secret      = true
}
`

func TestLoader_LoadSource(t *testing.T) {
	model, err := NewLoader().LoadSource(context.Background(), "manifest.hcl", []byte(httpManifest))
	require.NoError(t, err)

	require.Contains(t, model.Tasks, "http_request")
	task := model.Tasks["http_request"]
	assert.Equal(t, "Performs an HTTP request.", task.Description)
	assert.Equal(t, "local", task.Service)
	assert.Equal(t, []string{"net", "http"}, task.Tags)
	assert.Equal(t, 15*time.Second, task.Timeout)

	require.Len(t, task.Inputs, 4)
	assert.True(t, task.Inputs["url"].Type.Equals(cty.String))
	assert.True(t, task.Inputs["url"].Required())
	assert.True(t, task.Inputs["headers"].Type.Equals(cty.Map(cty.String)))
	assert.False(t, task.Inputs["headers"].Required())

	require.NotNil(t, task.Inputs["method"].Default)
	assert.Equal(t, "GET", task.Inputs["method"].Default.AsString())

	require.NotNil(t, task.Inputs["retries"].Default)
	assert.True(t, task.Inputs["retries"].Default.RawEquals(cty.NumberIntVal(3)), "default is converted to the declared type")

	require.Contains(t, task.Outputs, "status_code")
	assert.True(t, task.Outputs["status_code"].Type.Equals(cty.Number))

	require.Contains(t, model.Hooks, "github_push")
	hook := model.Hooks["github_push"]
	assert.Equal(t, "print", hook.Task)
	assert.True(t, hook.Secret)
}

func TestLoader_LoadSourceErrors(t *testing.T) {
	testCases := []struct {
		name          string
		src           string
		expectedError string
	}{
		{
			name:          "syntax error",
			src:           `task "x" {`,
			expectedError: "failed to parse HCL source",
		},
		{
			name: "unknown type keyword",
			src: `
task "x" {
  input "a" {
    type = strang
  }
}
`,
			expectedError: "task 'x', input 'a'",
		},
		{
			name: "default does not convert",
			src: `
task "x" {
  input "a" {
    type    = number
    default = "abc"
  }
}
`,
			expectedError: "default does not match type number",
		},
		{
			name:          "bad timeout",
			src:           `task "x" { timeout = "soon" }`,
			expectedError: "invalid timeout",
		},
		{
			name: "duplicate task",
			src: `
task "x" {}
task "x" {}
`,
			expectedError: `task "x" is defined more than once`,
		},
		{
			name: "duplicate input",
			src: `
task "x" {
  input "a" {
    type = string
  }
  input "a" {
    type = number
  }
}
`,
			expectedError: "input 'a' is declared more than once",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().LoadSource(context.Background(), "bad.hcl", []byte(tc.src))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.expectedError)
		})
	}
}

func TestLoader_LoadWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`task "a" {}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "b.hcl"), []byte(`hook "b" {}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "ignored.txt"), []byte(`not hcl`), 0o644))

	model, err := NewLoader().Load(context.Background(), dir, filepath.Join(dir, "a.hcl"), filepath.Join(dir, "missing"))
	require.NoError(t, err)

	assert.Len(t, model.Tasks, 1)
	assert.Contains(t, model.Tasks, "a")
	assert.Len(t, model.Hooks, 1)
	assert.Contains(t, model.Hooks, "b")
}
