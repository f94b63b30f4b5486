package fields

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFields_JSON(t *testing.T) {
	f := Fields{
		"url":   cty.StringVal("http://example.com"),
		"tries": cty.NumberIntVal(3),
		"tags":  cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
		"none":  cty.NullVal(cty.String),
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"http://example.com","tries":3,"tags":["a","b"],"none":null}`, string(data))

	var back Fields
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 4)
	assert.Equal(t, "http://example.com", back["url"].AsString())
	assert.True(t, back["tries"].Equals(cty.NumberIntVal(3)).True())
	assert.True(t, back["tags"].Type().IsTupleType(), "JSON arrays decode as tuples")
	assert.True(t, back["none"].IsNull())
}

func TestFields_UnmarshalRejectsNonObject(t *testing.T) {
	var f Fields
	err := json.Unmarshal([]byte(`[1,2]`), &f)
	require.Error(t, err)
}

func TestFields_Merge(t *testing.T) {
	t.Run("overwrites existing keys", func(t *testing.T) {
		base := Fields{"a": cty.StringVal("1"), "b": cty.StringVal("2")}
		base.Merge(Fields{"b": cty.StringVal("3")})
		assert.Equal(t, "1", base["a"].AsString())
		assert.Equal(t, "3", base["b"].AsString())
	})

	t.Run("allocates a nil receiver", func(t *testing.T) {
		var f Fields
		f = f.Merge(Fields{"a": cty.True})
		require.NotNil(t, f)
		assert.True(t, f["a"].True())
	})
}

func TestFields_ObjectRoundTrip(t *testing.T) {
	f := Fields{"x": cty.NumberIntVal(1)}
	back, err := FromObject(f.Object())
	require.NoError(t, err)
	assert.True(t, back["x"].RawEquals(cty.NumberIntVal(1)))

	empty, err := FromObject(Fields{}.Object())
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = FromObject(cty.StringVal("nope"))
	assert.ErrorContains(t, err, "expected an object")
}

func TestFields_Interface(t *testing.T) {
	f, err := FromInterface(map[string]any{"status": 200, "ok": true})
	require.NoError(t, err)

	out, err := f.ToInterface()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": float64(200), "ok": true}, out)

	_, err = FromInterface("scalar")
	assert.Error(t, err)
}
