package routing

import (
	"iter"
	"maps"
	"slices"
)

// Collection is an ordered set of named routes. Order is significant:
// matching is first-match in collection order.
type Collection struct {
	names  []string
	routes map[string]*Route
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{routes: make(map[string]*Route)}
}

// Add adds a route. Adding an existing name replaces the route and moves
// it to the end.
func (c *Collection) Add(name string, route *Route) {
	if _, exists := c.routes[name]; exists {
		c.names = slices.DeleteFunc(c.names, func(n string) bool { return n == name })
	}
	c.names = append(c.names, name)
	c.routes[name] = route
}

// Get returns the route with the given name, or nil.
func (c *Collection) Get(name string) *Route {
	return c.routes[name]
}

// Remove removes a route.
func (c *Collection) Remove(name string) {
	if _, exists := c.routes[name]; !exists {
		return
	}
	delete(c.routes, name)
	c.names = slices.DeleteFunc(c.names, func(n string) bool { return n == name })
}

// Len returns the number of routes.
func (c *Collection) Len() int {
	return len(c.names)
}

// Names returns the route names in order.
func (c *Collection) Names() []string {
	return slices.Clone(c.names)
}

// All iterates over the routes in order.
func (c *Collection) All() iter.Seq2[string, *Route] {
	return func(yield func(string, *Route) bool) {
		for _, name := range c.names {
			if !yield(name, c.routes[name]) {
				return
			}
		}
	}
}

// AddCollection appends all routes of other, in order.
func (c *Collection) AddCollection(other *Collection) {
	for name, route := range other.All() {
		c.Add(name, route)
	}
}

// AddDefaults merges defaults into every route.
func (c *Collection) AddDefaults(defaults map[string]any) {
	for _, route := range c.routes {
		for k, v := range defaults {
			route.SetDefault(k, v)
		}
	}
}

// AddRequirements merges requirements into every route.
func (c *Collection) AddRequirements(requirements map[string]string) {
	for _, route := range c.routes {
		for k, v := range requirements {
			route.SetRequirement(k, v)
		}
	}
}

// SetMethods sets the allowed methods of every route.
func (c *Collection) SetMethods(methods ...string) {
	for _, route := range c.routes {
		route.SetMethods(methods...)
	}
}

// SetCondition sets the condition of every route.
func (c *Collection) SetCondition(condition string) {
	for _, route := range c.routes {
		route.Condition = condition
	}
}

// SetOption sets an option on every route.
func (c *Collection) SetOption(key string, value any) {
	for _, route := range c.routes {
		route.SetOption(key, value)
	}
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	clone := &Collection{
		names:  slices.Clone(c.names),
		routes: make(map[string]*Route, len(c.routes)),
	}
	for name, route := range c.routes {
		clone.routes[name] = route.Clone()
	}
	return clone
}

// Equal reports whether both collections hold the same route instances
// under the same names in the same order.
func (c *Collection) Equal(other *Collection) bool {
	if !slices.Equal(c.names, other.names) {
		return false
	}
	return maps.EqualFunc(c.routes, other.routes, func(a, b *Route) bool { return a == b })
}
