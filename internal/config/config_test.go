package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
dictionaries:
  regions:
    name: regions
    layout:
      grid_polygon: {}
    structure:
      key:
        - name: key
          type: Array(Array(Float64))
    lifetime: 300
    flags:
      enabled: true
`

func TestKeysAndScalars(t *testing.T) {
	c, err := ParseString(sample)
	require.NoError(t, err)

	assert.Equal(t, []string{"regions"}, c.Keys("dictionaries"))
	assert.Equal(t, []string{"grid_polygon"}, c.Keys("dictionaries.regions.layout"))
	assert.Equal(t, []string{"0"}, c.Keys("dictionaries.regions.structure.key"))
	assert.True(t, c.IsSequence("dictionaries.regions.structure.key"))
	assert.Equal(t, "Array(Array(Float64))", c.GetString("dictionaries.regions.structure.key.0.type", ""))
	assert.Equal(t, "regions", c.GetString(".dictionaries.regions.name", ""))
	assert.Equal(t, "fallback", c.GetString("dictionaries.regions.database", "fallback"))

	v, err := c.GetInt("dictionaries.regions.lifetime", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 300, v)

	_, err = c.GetInt("dictionaries.regions.name", 0)
	assert.Error(t, err)

	assert.True(t, c.GetBool("dictionaries.regions.flags.enabled", false))
	assert.True(t, c.Has("dictionaries.regions.layout.grid_polygon"))
	assert.False(t, c.Has("dictionaries.regions.source"))
	assert.Nil(t, c.Keys("dictionaries.regions.name"))
}

func TestDecode(t *testing.T) {
	c, err := ParseString(sample)
	require.NoError(t, err)
	var attrs []struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	}
	require.NoError(t, c.Decode("dictionaries.regions.structure.key", &attrs))
	require.Len(t, attrs, 1)
	assert.Equal(t, "key", attrs[0].Name)
}

func TestEmptyDocument(t *testing.T) {
	c, err := ParseString("")
	require.NoError(t, err)
	assert.Empty(t, c.Keys(""))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a.b.c", Join("a", "b", ".c"))
	assert.Equal(t, "layout", Join("", "layout"))
}
