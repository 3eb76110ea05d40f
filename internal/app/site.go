package app

import (
	"sync/atomic"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/html"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/jsonapi"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/pathsupport"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
)

// Site is the configuration-derived part of the application: the
// entity type catalog, the resource types and the route table built
// from them.
type Site struct {
	Catalog       *entity.Catalog
	ResourceTypes *jsonapi.Repository
	Routes        *routing.Collection
}

// BuildSite builds the site of a configuration. HTML routes come
// first, then the JSON:API resource routes, then the canonical path
// routes.
func BuildSite(cfg *config.Config) *Site {
	catalog := entity.CatalogFromConfig(cfg.EntityTypes)
	repo := jsonapi.NewRepository(catalog, cfg.JSONAPI.ResourceTypes)

	routes := routing.NewCollection()
	routes.AddCollection(html.Routes(catalog))
	routes.AddCollection(jsonapi.Routes(repo, cfg.JSONAPI.BasePath))
	routes.AddCollection(pathsupport.Routes(catalog))

	return &Site{Catalog: catalog, ResourceTypes: repo, Routes: routes}
}

// siteCatalog reads the catalog of the current site.
type siteCatalog struct {
	site *atomic.Pointer[Site]
}

func (c siteCatalog) Definitions() []entity.EntityType {
	return c.site.Load().Catalog.Definitions()
}

func (c siteCatalog) Definition(id string) (entity.EntityType, bool) {
	return c.site.Load().Catalog.Definition(id)
}

// siteResourceTypes reads the resource types of the current site.
type siteResourceTypes struct {
	site *atomic.Pointer[Site]
}

func (r siteResourceTypes) Get(entityTypeID, bundle string) (jsonapi.ResourceType, error) {
	return r.site.Load().ResourceTypes.Get(entityTypeID, bundle)
}

func (r siteResourceTypes) All() []jsonapi.ResourceType {
	return r.site.Load().ResourceTypes.All()
}
