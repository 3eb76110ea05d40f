// Package pathsupport serves JSON:API resources on canonical entity
// paths.
//
// A request such as
//
//	GET /node/1?_format=api_json
//	Content-Type: application/vnd.api+json
//
// matches a "pathsupport.node" route synthesized by Routes for every
// entity type with a canonical link template. RouteFilter moves these
// routes ahead of the HTML routes sharing their paths, the
// RequestValidatorDecorator strips the _format query parameter the
// JSON:API validator would reject, and the Forwarder dispatches a GET
// sub-request to the entity's individual resource route, returning its
// response unchanged.
//
// The _format=api_json route requirement is kept for page caches that
// key on the _format query value; JSON:API itself negotiates through
// the media type alone.
package pathsupport

const (
	// ControllerName is the controller of every synthesized route.
	ControllerName = "pathsupport.forward"

	// CompatibilityFormat is the _format requirement of synthesized
	// routes.
	CompatibilityFormat = "api_json"

	// MediaType is the Content-Type that selects synthesized routes.
	MediaType = "application/vnd.api+json"

	// EntityParameter is the placeholder replacing the entity type
	// placeholder of canonical paths.
	EntityParameter = "entity"

	routeNamePrefix = "pathsupport."
)
