package routing

import (
	"maps"
	"slices"
	"strings"
)

// Well-known default, requirement and option keys.
const (
	// DefaultController names the controller that handles a route.
	DefaultController = "_controller"

	// RequirementFormat lists the request formats a route accepts,
	// separated by "|". Routes without it accept FormatHTML only.
	RequirementFormat = "_format"

	// RequirementAccess is the static access check of a route. Only
	// AccessAllowed grants access.
	RequirementAccess = "_access"

	// OptionParameters is the option holding parameter conversion
	// definitions.
	OptionParameters = "parameters"

	AccessAllowed = "TRUE"
	FormatHTML    = "html"
)

// ParamDefinition tells parameter converters how to upcast a raw path
// value, e.g. Type "entity:node".
type ParamDefinition struct {
	Type string `json:"type" yaml:"type"`
}

// Route is a single route definition. Routes are plain values; a Router
// compiles them.
type Route struct {
	Path         string
	Methods      []string
	Defaults     map[string]any
	Requirements map[string]string
	Options      map[string]any
	Condition    string
}

// NewRoute creates a route for the given path template.
func NewRoute(path string) *Route {
	return &Route{
		Path:         path,
		Defaults:     make(map[string]any),
		Requirements: make(map[string]string),
		Options:      make(map[string]any),
	}
}

// Controller returns the "_controller" default.
func (r *Route) Controller() string {
	s, _ := r.Defaults[DefaultController].(string)
	return s
}

// Requirement returns a requirement value.
func (r *Route) Requirement(key string) (string, bool) {
	v, ok := r.Requirements[key]
	return v, ok
}

// SetRequirement sets a requirement value.
func (r *Route) SetRequirement(key, value string) *Route {
	if r.Requirements == nil {
		r.Requirements = make(map[string]string)
	}
	r.Requirements[key] = value
	return r
}

// SetDefault sets a default value.
func (r *Route) SetDefault(key string, value any) *Route {
	if r.Defaults == nil {
		r.Defaults = make(map[string]any)
	}
	r.Defaults[key] = value
	return r
}

// SetOption sets an option value.
func (r *Route) SetOption(key string, value any) *Route {
	if r.Options == nil {
		r.Options = make(map[string]any)
	}
	r.Options[key] = value
	return r
}

// SetMethods replaces the allowed methods. An empty list allows any method.
func (r *Route) SetMethods(methods ...string) *Route {
	r.Methods = make([]string, 0, len(methods))
	for _, m := range methods {
		r.Methods = append(r.Methods, strings.ToUpper(m))
	}
	return r
}

// SetParameter registers a parameter conversion definition under the
// "parameters" option.
func (r *Route) SetParameter(name string, def ParamDefinition) *Route {
	params := r.Parameters()
	if params == nil {
		params = make(map[string]ParamDefinition)
	}
	params[name] = def
	return r.SetOption(OptionParameters, params)
}

// Parameters returns the parameter conversion definitions.
func (r *Route) Parameters() map[string]ParamDefinition {
	params, _ := r.Options[OptionParameters].(map[string]ParamDefinition)
	return params
}

// Formats returns the formats accepted by the route.
func (r *Route) Formats() []string {
	req, ok := r.Requirements[RequirementFormat]
	if !ok || req == "" {
		return []string{FormatHTML}
	}
	return strings.Split(req, "|")
}

// AcceptsMethod reports whether the route allows the method. HEAD is
// allowed wherever GET is.
func (r *Route) AcceptsMethod(method string) bool {
	if len(r.Methods) == 0 {
		return true
	}
	if slices.Contains(r.Methods, method) {
		return true
	}
	return method == "HEAD" && slices.Contains(r.Methods, "GET")
}

// Clone returns a deep copy of the route.
func (r *Route) Clone() *Route {
	c := &Route{
		Path:         r.Path,
		Methods:      slices.Clone(r.Methods),
		Defaults:     maps.Clone(r.Defaults),
		Requirements: maps.Clone(r.Requirements),
		Options:      maps.Clone(r.Options),
		Condition:    r.Condition,
	}
	if params := r.Parameters(); params != nil {
		c.Options[OptionParameters] = maps.Clone(params)
	}
	return c
}
