package entity

import (
	"context"
	"errors"
	"strings"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
)

// Parameter type prefixes handled by Converter.
const (
	ParamTypeEntity     = "entity:"
	ParamTypeEntityUUID = "entity_uuid:"
)

// Loader loads entities. Storage implements it.
type Loader interface {
	Load(ctx context.Context, typeID, id string) (*Entity, error)
	LoadByUUID(ctx context.Context, typeID, uuid string) (*Entity, error)
}

// Converter upcasts route parameters declared as "entity:<type>" (by ID)
// or "entity_uuid:<type>" (by UUID) into loaded entities.
type Converter struct {
	loader Loader
}

var _ routing.ParamConverter = (*Converter)(nil)

// NewConverter creates a converter.
func NewConverter(loader Loader) *Converter {
	return &Converter{loader: loader}
}

// Applies reports whether the definition names an entity type.
func (c *Converter) Applies(def routing.ParamDefinition) bool {
	return strings.HasPrefix(def.Type, ParamTypeEntity) || strings.HasPrefix(def.Type, ParamTypeEntityUUID)
}

// Convert loads the entity. A missing entity converts to nil.
func (c *Converter) Convert(ctx context.Context, value string, def routing.ParamDefinition, _ string) (any, error) {
	var (
		e   *Entity
		err error
	)

	if typeID, ok := strings.CutPrefix(def.Type, ParamTypeEntityUUID); ok {
		e, err = c.loader.LoadByUUID(ctx, typeID, value)
	} else {
		typeID := strings.TrimPrefix(def.Type, ParamTypeEntity)
		e, err = c.loader.Load(ctx, typeID, value)
	}

	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
