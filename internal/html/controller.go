package html

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"maps"
	"net/http"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
)

const contentType = "text/html; charset=utf-8"

var pageTemplate = template.Must(template.New("entity").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} | {{.TypeLabel}}</title>
</head>
<body>
<article data-entity-type="{{.TypeID}}" data-bundle="{{.Bundle}}" data-uuid="{{.UUID}}">
<h1>{{.Title}}</h1>
{{- if .Fields}}
<dl>
{{- range .Fields}}
<dt>{{.Name}}</dt><dd>{{.Value}}</dd>
{{- end}}
</dl>
{{- end}}
</article>
</body>
</html>
`))

type field struct {
	Name  string
	Value any
}

type page struct {
	Title     string
	TypeLabel string
	TypeID    string
	Bundle    string
	UUID      string
	Fields    []field
}

// Controller renders an entity as an HTML page.
type Controller struct {
	catalog entity.TypeCatalog
	lang    language.Tag
}

var _ kernel.Controller = (*Controller)(nil)

// NewController creates a controller.
func NewController(catalog entity.TypeCatalog) *Controller {
	return &Controller{catalog: catalog, lang: language.English}
}

// Handle implements kernel.Controller.
func (c *Controller) Handle(_ context.Context, req *kernel.Request) (*kernel.Response, error) {
	typeID := req.Attributes.GetString(DefaultEntityType)
	e, ok := req.Attributes[typeID].(*entity.Entity)
	if !ok {
		return nil, fmt.Errorf("route %s did not resolve a %q entity", req.Attributes.GetString(kernel.AttrRoute), typeID)
	}

	// Casers are stateful and cannot be shared between requests.
	p := page{
		Title:     cases.Title(c.lang).String(e.Label),
		TypeLabel: typeID,
		TypeID:    e.TypeID,
		Bundle:    e.Bundle,
		UUID:      e.UUID,
	}
	if def, ok := c.catalog.Definition(typeID); ok {
		p.TypeLabel = def.Label
	}
	for _, name := range slices.Sorted(maps.Keys(e.Fields)) {
		p.Fields = append(p.Fields, field{Name: name, Value: e.Fields[name]})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("failed to render %s %s: %w", e.TypeID, e.UUID, err)
	}
	return kernel.NewResponse(http.StatusOK, buf.Bytes(), contentType), nil
}
