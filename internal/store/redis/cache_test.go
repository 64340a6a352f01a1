package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grouping struct {
	Collection string `json:"collection"`
	Name       string `json:"name"`
}

func TestJSONCache_KeyPrefix(t *testing.T) {
	c := NewJSONCache[grouping](nil, "holdings:grouping")
	assert.Equal(t, "holdings:grouping:Mint111", c.key("Mint111"))
}

func TestDecode(t *testing.T) {
	v, err := decode[grouping]([]byte(`{"collection":"Col","name":"Degen"}`))
	require.NoError(t, err)
	assert.Equal(t, grouping{Collection: "Col", Name: "Degen"}, v)

	_, err = decode[grouping]([]byte(`{broken`))
	require.Error(t, err)
}
