package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLGenerator_Generate(t *testing.T) {
	t.Parallel()

	gen := NewURLGenerator(testTable())

	path, err := gen.Generate("jsonapi.node--article.individual", map[string]string{"entity": "abc-123"})
	require.NoError(t, err)
	assert.Equal(t, "/jsonapi/node--article/abc-123", path)

	path, err = gen.Generate("jsonapi.node--article.individual", map[string]string{"entity": "a b/c"})
	require.NoError(t, err)
	assert.Equal(t, "/jsonapi/node--article/a%20b%2Fc", path)

	path, err = gen.Generate("entity.node.canonical", map[string]string{"node": "7", "page": "2"})
	require.NoError(t, err)
	assert.Equal(t, "/node/7?page=2", path)
}

func TestURLGenerator_Errors(t *testing.T) {
	t.Parallel()

	gen := NewURLGenerator(testTable())

	_, err := gen.Generate("missing", nil)
	assert.True(t, errors.Is(err, ErrRouteNotFound))

	_, err = gen.Generate("entity.node.canonical", nil)
	assert.ErrorContains(t, err, `missing parameter "node"`)

	_, err = gen.Generate("entity.node.canonical", map[string]string{"node": "abc"})
	assert.ErrorContains(t, err, "does not match requirement")
}
