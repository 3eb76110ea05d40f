// Package jsonapi serves entities as JSON:API individual resources.
//
// Every bundle of every entity type is exposed as a resource type named
// "<entity type>--<bundle>" unless configuration overrides the name.
// Routes derives one "jsonapi.<resource type>.individual" route per
// resource type at "<base path>/<resource type>/{entity}", where the
// entity placeholder is a UUID.
//
// The package plugs into the kernel through:
//
//   - FormatSetter, which negotiates the "api_json" format for requests
//     under the base path,
//   - Controller, which reads, updates and deletes resources,
//   - RequestValidator, a request listener rejecting query parameters
//     JSON:API does not allow,
//   - ErrorRenderer, which renders failures as JSON:API error documents.
package jsonapi
