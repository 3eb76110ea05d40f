package jsonapi

import (
	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
)

// Document is a top-level JSON:API document.
type Document struct {
	JSONAPI *Object       `json:"jsonapi,omitempty"`
	Data    *Resource     `json:"data,omitempty"`
	Errors  []ErrorObject `json:"errors,omitempty"`
	Links   Links         `json:"links,omitempty"`
}

// Object is the "jsonapi" member of a document.
type Object struct {
	Version string `json:"version"`
}

// Resource is a resource object.
type Resource struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Links      Links          `json:"links,omitempty"`
}

// Links maps link names to links.
type Links map[string]Link

// Link is a link object.
type Link struct {
	Href string `json:"href"`
}

// ErrorObject is an entry of the "errors" member.
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Links  Links  `json:"links,omitempty"`
}

func newDocument() *Document {
	return &Document{JSONAPI: &Object{Version: Version}}
}

// absoluteURL resolves path against the scheme and host the request was
// made to.
func absoluteURL(req *kernel.Request, path string) string {
	if req.Server == nil {
		return path
	}
	return req.Server.Scheme() + "://" + req.Server.Host() + path
}
