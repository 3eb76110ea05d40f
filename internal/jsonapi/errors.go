package jsonapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
)

// ErrorRenderer renders errors of api_json requests as JSON:API error
// documents.
type ErrorRenderer struct{}

var _ kernel.ErrorRenderer = ErrorRenderer{}

// Applies implements kernel.ErrorRenderer.
func (ErrorRenderer) Applies(req *kernel.Request) bool {
	return req.Format() == Format
}

// Render implements kernel.ErrorRenderer.
func (ErrorRenderer) Render(req *kernel.Request, err *kernel.HTTPError) *kernel.Response {
	obj := ErrorObject{
		Status: strconv.Itoa(err.Status),
		Title:  http.StatusText(err.Status),
		Detail: err.Message,
	}
	if req.URL != nil {
		obj.Links = Links{"via": {Href: absoluteURL(req, req.URL.RequestURI())}}
	}

	doc := newDocument()
	doc.Errors = []ErrorObject{obj}

	body, marshalErr := json.Marshal(doc)
	if marshalErr != nil {
		return kernel.NewResponse(err.Status, nil, MediaType)
	}
	return kernel.NewResponse(err.Status, body, MediaType)
}
