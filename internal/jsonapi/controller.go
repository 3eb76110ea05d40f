package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"mime"
	"net/http"
	"time"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// Attributes derived from entity properties rather than fields.
const (
	attributeLabel   = "label"
	attributeCreated = "created"
	attributeChanged = "changed"
)

var allowedMethods = []string{http.MethodGet, http.MethodHead, http.MethodPatch, http.MethodDelete}

// EntityStore persists entity changes.
type EntityStore interface {
	Save(ctx context.Context, e *entity.Entity) error
	Delete(ctx context.Context, e *entity.Entity) error
}

// URLGenerator generates paths from named routes.
type URLGenerator interface {
	Generate(name string, params map[string]string) (string, error)
}

// Controller serves individual resources.
type Controller struct {
	repo   ResourceTypeRepository
	store  EntityStore
	urls   URLGenerator
	logger observability.Logger
}

var _ kernel.Controller = (*Controller)(nil)

// NewController creates a controller.
func NewController(
	repo ResourceTypeRepository,
	store EntityStore,
	urls URLGenerator,
	logger observability.Logger,
) *Controller {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Controller{repo: repo, store: store, urls: urls, logger: logger}
}

// Handle implements kernel.Controller.
func (c *Controller) Handle(ctx context.Context, req *kernel.Request) (*kernel.Response, error) {
	e, ok := req.Attributes[EntityParameter].(*entity.Entity)
	if !ok {
		return nil, fmt.Errorf("route %s did not resolve an entity", req.Attributes.GetString(kernel.AttrRoute))
	}

	rt, err := c.repo.Get(e.TypeID, e.Bundle)
	if err != nil {
		return nil, err
	}
	// The UUID converter only checks the entity type, so an entity of
	// another bundle may have been loaded.
	if name := req.Attributes.GetString(DefaultResourceType); name != "" && name != rt.TypeName {
		return nil, kernel.NotFound(fmt.Sprintf("%s %q not found", name, e.UUID))
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead:
		return c.respond(req, rt, e, http.StatusOK)
	case http.MethodPatch:
		return c.patch(ctx, req, rt, e)
	case http.MethodDelete:
		if err := c.store.Delete(ctx, e); err != nil {
			return nil, err
		}
		c.logger.WithContext(ctx).Debug("resource deleted",
			observability.String("resource_type", rt.TypeName),
			observability.String("id", e.UUID),
		)
		return kernel.NewResponse(http.StatusNoContent, nil, ""), nil
	default:
		return nil, kernel.MethodNotAllowed(fmt.Sprintf("method %s not allowed", req.Method), allowedMethods)
	}
}

type patchDocument struct {
	Data *patchResource `json:"data"`
}

type patchResource struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

func (c *Controller) patch(
	ctx context.Context,
	req *kernel.Request,
	rt ResourceType,
	e *entity.Entity,
) (*kernel.Response, error) {
	if mediaType, params, err := mime.ParseMediaType(req.ContentType()); err != nil || mediaType != MediaType || len(params) > 0 {
		return nil, kernel.NewHTTPError(http.StatusUnsupportedMediaType,
			fmt.Sprintf("content type must be %s without media type parameters", MediaType))
	}

	var doc patchDocument
	if err := json.Unmarshal(req.Body, &doc); err != nil {
		return nil, kernel.BadRequest("request body is not a valid JSON:API document")
	}
	if doc.Data == nil || doc.Data.Type == "" || doc.Data.ID == "" {
		return nil, kernel.BadRequest("the resource object must have a type and an id")
	}
	if doc.Data.Type != rt.TypeName {
		return nil, kernel.Conflict(fmt.Sprintf("resource type %q does not match %q", doc.Data.Type, rt.TypeName))
	}
	if doc.Data.ID != e.UUID {
		return nil, kernel.Conflict(fmt.Sprintf("resource id %q does not match %q", doc.Data.ID, e.UUID))
	}

	if err := applyAttributes(e, doc.Data.Attributes); err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, e); err != nil {
		return nil, err
	}

	c.logger.WithContext(ctx).Debug("resource updated",
		observability.String("resource_type", rt.TypeName),
		observability.String("id", e.UUID),
		observability.Int("attributes", len(doc.Data.Attributes)),
	)
	return c.respond(req, rt, e, http.StatusOK)
}

// applyAttributes merges attributes into the entity. A null attribute
// removes the field.
func applyAttributes(e *entity.Entity, attributes map[string]any) error {
	for name, value := range attributes {
		switch name {
		case attributeCreated, attributeChanged:
			return kernel.BadRequest(fmt.Sprintf("attribute %q is read-only", name))
		case attributeLabel:
			label, ok := value.(string)
			if !ok {
				return kernel.BadRequest(fmt.Sprintf("attribute %q must be a string", name))
			}
			e.Label = label
		default:
			if value == nil {
				delete(e.Fields, name)
				continue
			}
			if e.Fields == nil {
				e.Fields = make(map[string]any)
			}
			e.Fields[name] = value
		}
	}
	return nil
}

func (c *Controller) respond(req *kernel.Request, rt ResourceType, e *entity.Entity, status int) (*kernel.Response, error) {
	self, err := c.urls.Generate(rt.IndividualRoute(), map[string]string{EntityParameter: e.UUID})
	if err != nil {
		return nil, err
	}

	attributes := maps.Clone(e.Fields)
	if attributes == nil {
		attributes = make(map[string]any, 3)
	}
	attributes[attributeLabel] = e.Label
	attributes[attributeCreated] = e.Created.UTC().Format(time.RFC3339)
	attributes[attributeChanged] = e.Changed.UTC().Format(time.RFC3339)

	doc := newDocument()
	doc.Data = &Resource{
		Type:       rt.TypeName,
		ID:         e.UUID,
		Attributes: attributes,
		Links:      Links{"self": {Href: absoluteURL(req, self)}},
	}
	doc.Links = Links{"self": {Href: absoluteURL(req, req.URL.RequestURI())}}

	return kernel.NewJSONResponse(status, doc, MediaType)
}
