package html

import (
	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
)

const (
	// ControllerName is the controller of canonical routes.
	ControllerName = "entity.view"

	// DefaultEntityType names the attribute holding the loaded entity.
	DefaultEntityType = "entity_type"
)

// CanonicalRouteName returns the name of an entity type's canonical route.
func CanonicalRouteName(typeID string) string {
	return "entity." + typeID + ".canonical"
}

// Routes builds one canonical route per entity type that declares a
// canonical link template.
func Routes(catalog entity.TypeCatalog) *routing.Collection {
	routes := routing.NewCollection()

	for _, def := range catalog.Definitions() {
		tmpl, ok := def.LinkTemplate(entity.LinkCanonical)
		if !ok {
			continue
		}

		route := routing.NewRoute(tmpl).
			SetDefault(routing.DefaultController, ControllerName).
			SetDefault(DefaultEntityType, def.ID).
			SetRequirement(routing.RequirementAccess, routing.AccessAllowed).
			SetMethods("GET", "HEAD").
			SetParameter(def.ID, routing.ParamDefinition{Type: entity.ParamTypeEntity + def.ID})
		routes.Add(CanonicalRouteName(def.ID), route)
	}

	return routes
}
