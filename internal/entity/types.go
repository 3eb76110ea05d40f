package entity

import (
	"maps"
	"slices"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
)

// LinkCanonical is the link relation of an entity's canonical path.
const LinkCanonical = config.LinkCanonical

// EntityType describes a kind of entity, e.g. "node".
type EntityType struct {
	ID      string
	Label   string
	Bundles []string

	// LinkTemplates maps link relations to path templates. The
	// placeholder named after the type ID stands for the entity ID.
	LinkTemplates map[string]string
}

// LinkTemplate returns the path template of a link relation.
func (t EntityType) LinkTemplate(rel string) (string, bool) {
	tmpl, ok := t.LinkTemplates[rel]
	return tmpl, ok && tmpl != ""
}

// HasBundle reports whether the type declares the bundle.
func (t EntityType) HasBundle(bundle string) bool {
	return slices.Contains(t.Bundles, bundle)
}

// TypeCatalog is read access to the entity type definitions.
type TypeCatalog interface {
	// Definitions returns all entity types in declaration order.
	Definitions() []EntityType

	// Definition returns one entity type.
	Definition(id string) (EntityType, bool)
}

// Catalog is an immutable TypeCatalog.
type Catalog struct {
	types []EntityType
	index map[string]int
}

// NewCatalog creates a catalog. Later duplicates of an ID are ignored.
func NewCatalog(types ...EntityType) *Catalog {
	c := &Catalog{index: make(map[string]int, len(types))}
	for _, t := range types {
		if _, exists := c.index[t.ID]; exists {
			continue
		}
		c.index[t.ID] = len(c.types)
		c.types = append(c.types, t)
	}
	return c
}

// CatalogFromConfig builds a catalog from the configured entity types.
func CatalogFromConfig(cfgs []config.EntityTypeConfig) *Catalog {
	types := make([]EntityType, 0, len(cfgs))
	for _, cfg := range cfgs {
		label := cfg.Label
		if label == "" {
			label = cfg.ID
		}
		types = append(types, EntityType{
			ID:            cfg.ID,
			Label:         label,
			Bundles:       slices.Clone(cfg.Bundles),
			LinkTemplates: maps.Clone(cfg.LinkTemplates),
		})
	}
	return NewCatalog(types...)
}

// Definitions returns all entity types in declaration order.
func (c *Catalog) Definitions() []EntityType {
	return slices.Clone(c.types)
}

// Definition returns one entity type.
func (c *Catalog) Definition(id string) (EntityType, bool) {
	i, ok := c.index[id]
	if !ok {
		return EntityType{}, false
	}
	return c.types[i], true
}
