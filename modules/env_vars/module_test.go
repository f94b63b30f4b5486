package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridflow/internal/fields"
	"github.com/zclconf/go-cty/cty"
)

func fakeEnv(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func names(ns ...string) cty.Value {
	if len(ns) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(ns))
	for i, n := range ns {
		vals[i] = cty.StringVal(n)
	}
	return cty.ListVal(vals)
}

func TestOnRunEnvVars(t *testing.T) {
	t.Parallel()
	m := &Module{LookupEnv: fakeEnv(map[string]string{
		"HOME":         "/root",
		"EMPTY":        "",
		"DATABASE_URL": "postgres://user:secret@db/gridflow",
	})}

	testCases := []struct {
		name   string
		in     fields.Fields
		expect map[string]string
	}{
		{
			name:   "selected variables",
			in:     fields.Fields{"names": names("HOME", "MISSING")},
			expect: map[string]string{"HOME": "/root", "MISSING": ""},
		},
		{
			name:   "empty value",
			in:     fields.Fields{"names": names("EMPTY")},
			expect: map[string]string{"EMPTY": ""},
		},
		{
			name:   "empty list",
			in:     fields.Fields{"names": names()},
			expect: map[string]string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, err := m.OnRunEnvVars(context.Background(), tc.in)

			require.NoError(t, err)
			values := out["values"]
			require.True(t, values.Type().IsMapType())
			got := make(map[string]string)
			for k, v := range values.AsValueMap() {
				got[k] = v.AsString()
			}
			assert.Equal(t, tc.expect, got)
			assert.NotContains(t, got, "DATABASE_URL")
		})
	}
}

func TestOnRunEnvVars_Errors(t *testing.T) {
	t.Parallel()
	m := &Module{LookupEnv: fakeEnv(map[string]string{"DATABASE_URL": "postgres://secret"})}

	testCases := []struct {
		name      string
		in        fields.Fields
		expectErr string
	}{
		{name: "names missing", in: fields.Fields{}, expectErr: "input 'names' is required"},
		{name: "names null", in: fields.Fields{"names": cty.NullVal(cty.List(cty.String))}, expectErr: "input 'names' is required"},
		{name: "names not a list", in: fields.Fields{"names": cty.NumberIntVal(3)}, expectErr: "input 'names'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, err := m.OnRunEnvVars(context.Background(), tc.in)

			require.ErrorContains(t, err, tc.expectErr)
			assert.Nil(t, out)
		})
	}
}
