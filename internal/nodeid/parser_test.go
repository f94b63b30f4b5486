// internal/nodeid/parser_test.go
package nodeid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNode(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "canonical form", input: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{name: "empty", input: "", expectError: true},
		{name: "garbage", input: "not-a-uuid", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseNode(tc.input)
			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.input, id.String())
		})
	}
}

func TestIDs_AsJSONMapKeys(t *testing.T) {
	n := MustNode("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	in := map[NodeID]int{n: 7}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"6ba7b810-9dad-11d1-80b4-00c04fd430c8": 7}`, string(data))

	var out map[NodeID]int
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCompare(t *testing.T) {
	a := MustEdge("00000000-0000-0000-0000-000000000001")
	b := MustEdge("00000000-0000-0000-0000-000000000002")
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
}
