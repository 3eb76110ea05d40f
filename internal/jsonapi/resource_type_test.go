package jsonapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
)

func testCatalog() *entity.Catalog {
	return entity.NewCatalog(
		entity.EntityType{
			ID:            "node",
			Label:         "Content",
			Bundles:       []string{"article", "page"},
			LinkTemplates: map[string]string{entity.LinkCanonical: "/node/{node}"},
		},
		entity.EntityType{
			ID:      "user",
			Label:   "User",
			Bundles: []string{"user"},
		},
	)
}

func TestRepository(t *testing.T) {
	t.Parallel()

	repo := NewRepository(testCatalog(), []config.ResourceTypeConfig{
		{EntityType: "node", Bundle: "page", Name: "pages"},
		{EntityType: "node", Bundle: "unknown", Name: "ignored"},
	})

	assert.Equal(t, []ResourceType{
		{EntityTypeID: "node", Bundle: "article", TypeName: "node--article"},
		{EntityTypeID: "node", Bundle: "page", TypeName: "pages"},
		{EntityTypeID: "user", Bundle: "user", TypeName: "user--user"},
	}, repo.All())

	rt, err := repo.Get("node", "page")
	require.NoError(t, err)
	assert.Equal(t, "pages", rt.TypeName)
	assert.Equal(t, "jsonapi.pages.individual", rt.IndividualRoute())

	byName, ok := repo.GetByName("user--user")
	require.True(t, ok)
	assert.Equal(t, "user", byName.Bundle)

	_, ok = repo.GetByName("ignored")
	assert.False(t, ok)
}

func TestRepository_UnknownResourceType(t *testing.T) {
	t.Parallel()

	repo := NewRepository(testCatalog(), nil)

	_, err := repo.Get("node", "blog")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownResourceType))

	var unknown *UnknownResourceTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "node", unknown.EntityTypeID)
	assert.Equal(t, "blog", unknown.Bundle)
	assert.Contains(t, err.Error(), `"blog"`)
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	routes := Routes(NewRepository(testCatalog(), nil), "/jsonapi/")

	assert.Equal(t, []string{
		"jsonapi.node--article.individual",
		"jsonapi.node--page.individual",
		"jsonapi.user--user.individual",
	}, routes.Names())

	route := routes.Get("jsonapi.node--article.individual")
	require.NotNil(t, route)
	assert.Equal(t, "/jsonapi/node--article/{entity}", route.Path)
	assert.Equal(t, []string{"GET", "HEAD", "PATCH", "DELETE"}, route.Methods)
	assert.Equal(t, ControllerName, route.Controller())
	assert.Equal(t, true, route.Defaults[DefaultIsJSONAPI])
	assert.Equal(t, "node--article", route.Defaults[DefaultResourceType])
	assert.Equal(t, Format, route.Requirements["_format"])
	assert.Equal(t, "TRUE", route.Requirements["_access"])
	assert.Equal(t, "entity_uuid:node", route.Parameters()[EntityParameter].Type)

	assert.Equal(t, "entity_uuid:user", routes.Get("jsonapi.user--user.individual").Parameters()[EntityParameter].Type)
}

func TestRoutes_EmptyRepository(t *testing.T) {
	t.Parallel()

	routes := Routes(NewRepository(entity.NewCatalog(), nil), "/jsonapi")
	assert.Zero(t, routes.Len())
}
