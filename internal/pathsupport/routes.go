package pathsupport

import (
	"strings"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
)

// ContentTypeCondition matches requests whose Content-Type contains the
// JSON:API media type, ignoring case.
const ContentTypeCondition = `'content-type' in request.headers && ` +
	`request.headers['content-type'].matches('(?i)application/vnd\\.api\\+json')`

// RouteName returns the name of the synthesized route of an entity type.
func RouteName(typeID string) string {
	return routeNamePrefix + typeID
}

// Routes synthesizes one route per entity type that declares a
// canonical link template. The route matches the canonical path with
// the entity type placeholder renamed to EntityParameter.
//
// POST is not allowed: on canonical paths it has no individual resource
// meaning.
func Routes(catalog entity.TypeCatalog) *routing.Collection {
	routes := routing.NewCollection()

	for _, def := range catalog.Definitions() {
		tmpl, ok := def.LinkTemplate(entity.LinkCanonical)
		if !ok {
			continue
		}

		path := strings.ReplaceAll(tmpl, "{"+def.ID+"}", "{"+EntityParameter+"}")
		route := routing.NewRoute(path).
			SetParameter(EntityParameter, routing.ParamDefinition{Type: entity.ParamTypeEntity + def.ID})
		routes.Add(RouteName(def.ID), route)
	}

	routes.AddDefaults(map[string]any{routing.DefaultController: ControllerName})
	routes.SetMethods("HEAD", "GET", "PATCH", "DELETE")
	routes.AddRequirements(map[string]string{
		routing.RequirementFormat: CompatibilityFormat,
		routing.RequirementAccess: routing.AccessAllowed,
	})
	routes.SetCondition(ContentTypeCondition)

	return routes
}
