package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
)

func TestCatalogFromConfig(t *testing.T) {
	t.Parallel()

	catalog := CatalogFromConfig([]config.EntityTypeConfig{
		{ID: "node", Label: "Content", Bundles: []string{"article"}, LinkTemplates: map[string]string{"canonical": "/node/{node}"}},
		{ID: "file", Bundles: []string{"file"}},
		{ID: "node", Bundles: []string{"ignored"}},
	})

	defs := catalog.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "node", defs[0].ID)
	assert.Equal(t, "file", defs[1].ID)
	assert.Equal(t, "file", defs[1].Label)

	node, ok := catalog.Definition("node")
	require.True(t, ok)
	assert.True(t, node.HasBundle("article"))
	assert.False(t, node.HasBundle("ignored"))

	tmpl, ok := node.LinkTemplate(LinkCanonical)
	assert.True(t, ok)
	assert.Equal(t, "/node/{node}", tmpl)

	file, _ := catalog.Definition("file")
	_, ok = file.LinkTemplate(LinkCanonical)
	assert.False(t, ok)

	_, ok = catalog.Definition("user")
	assert.False(t, ok)
}
