package jsonapi

import (
	"errors"
	"fmt"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
)

// ErrUnknownResourceType is returned when an entity type and bundle
// have no resource type.
var ErrUnknownResourceType = errors.New("unknown resource type")

// UnknownResourceTypeError names the entity type and bundle that have no
// resource type.
type UnknownResourceTypeError struct {
	EntityTypeID string
	Bundle       string
}

// Error implements the error interface.
func (e *UnknownResourceTypeError) Error() string {
	return fmt.Sprintf("no resource type for entity type %q bundle %q", e.EntityTypeID, e.Bundle)
}

// Is reports whether target is ErrUnknownResourceType.
func (e *UnknownResourceTypeError) Is(target error) bool {
	return target == ErrUnknownResourceType
}

// ResourceType maps an entity type and bundle to a JSON:API type name.
type ResourceType struct {
	EntityTypeID string
	Bundle       string
	TypeName     string
}

// IndividualRoute returns the name of the resource type's individual
// route.
func (r ResourceType) IndividualRoute() string {
	return IndividualRouteName(r.TypeName)
}

// ResourceTypeRepository looks up resource types.
type ResourceTypeRepository interface {
	// Get returns the resource type of an entity type and bundle, or an
	// *UnknownResourceTypeError.
	Get(entityTypeID, bundle string) (ResourceType, error)

	// All returns every resource type in catalog order.
	All() []ResourceType
}

type bundleKey struct {
	typeID string
	bundle string
}

// Repository is an immutable ResourceTypeRepository.
type Repository struct {
	types  []ResourceType
	byKey  map[bundleKey]int
	byName map[string]int
}

var _ ResourceTypeRepository = (*Repository)(nil)

// DefaultTypeName returns the resource type name used when no override
// is configured.
func DefaultTypeName(entityTypeID, bundle string) string {
	return entityTypeID + "--" + bundle
}

// NewRepository creates one resource type per bundle of every entity
// type in the catalog. Overrides for unknown bundles are ignored.
func NewRepository(catalog entity.TypeCatalog, overrides []config.ResourceTypeConfig) *Repository {
	names := make(map[bundleKey]string, len(overrides))
	for _, o := range overrides {
		names[bundleKey{o.EntityType, o.Bundle}] = o.Name
	}

	r := &Repository{
		byKey:  make(map[bundleKey]int),
		byName: make(map[string]int),
	}
	for _, def := range catalog.Definitions() {
		for _, bundle := range def.Bundles {
			key := bundleKey{def.ID, bundle}
			if _, exists := r.byKey[key]; exists {
				continue
			}

			name, ok := names[key]
			if !ok {
				name = DefaultTypeName(def.ID, bundle)
			}

			r.byKey[key] = len(r.types)
			r.byName[name] = len(r.types)
			r.types = append(r.types, ResourceType{EntityTypeID: def.ID, Bundle: bundle, TypeName: name})
		}
	}
	return r
}

// Get returns the resource type of an entity type and bundle.
func (r *Repository) Get(entityTypeID, bundle string) (ResourceType, error) {
	i, ok := r.byKey[bundleKey{entityTypeID, bundle}]
	if !ok {
		return ResourceType{}, &UnknownResourceTypeError{EntityTypeID: entityTypeID, Bundle: bundle}
	}
	return r.types[i], nil
}

// GetByName returns the resource type with the given type name.
func (r *Repository) GetByName(name string) (ResourceType, bool) {
	i, ok := r.byName[name]
	if !ok {
		return ResourceType{}, false
	}
	return r.types[i], true
}

// All returns every resource type in catalog order.
func (r *Repository) All() []ResourceType {
	out := make([]ResourceType, len(r.types))
	copy(out, r.types)
	return out
}
