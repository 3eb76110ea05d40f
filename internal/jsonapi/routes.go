package jsonapi

import (
	"strings"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
)

const (
	// Format is the request format of JSON:API routes.
	Format = "api_json"

	// MediaType is the JSON:API media type.
	MediaType = "application/vnd.api+json"

	// ControllerName is the controller of individual resource routes.
	ControllerName = "jsonapi.entity_resource"

	// DefaultIsJSONAPI marks routes served by this package. The kernel
	// copies it into the request attributes.
	DefaultIsJSONAPI = "_is_jsonapi"

	// DefaultResourceType carries the resource type name of a route.
	DefaultResourceType = "resource_type"

	// EntityParameter is the path placeholder holding the entity UUID.
	EntityParameter = "entity"

	// Version is the JSON:API version reported in documents.
	Version = "1.0"
)

// IndividualRouteName returns the route name of a resource type's
// individual resource.
func IndividualRouteName(typeName string) string {
	return "jsonapi." + typeName + ".individual"
}

// Routes builds the individual resource routes of every resource type.
func Routes(repo ResourceTypeRepository, basePath string) *routing.Collection {
	base := strings.TrimSuffix(basePath, "/")
	routes := routing.NewCollection()

	for _, rt := range repo.All() {
		route := routing.NewRoute(base+"/"+rt.TypeName+"/{"+EntityParameter+"}").
			SetDefault(DefaultResourceType, rt.TypeName).
			SetParameter(EntityParameter, routing.ParamDefinition{Type: entity.ParamTypeEntityUUID + rt.EntityTypeID})
		routes.Add(rt.IndividualRoute(), route)
	}

	routes.AddDefaults(map[string]any{
		routing.DefaultController: ControllerName,
		DefaultIsJSONAPI:          true,
	})
	routes.AddRequirements(map[string]string{
		routing.RequirementFormat: Format,
		routing.RequirementAccess: routing.AccessAllowed,
	})
	routes.SetMethods("GET", "HEAD", "PATCH", "DELETE")

	return routes
}
