package jsonapi

import (
	"strings"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
)

// FormatSetter negotiates the api_json format for every request under
// the JSON:API base path.
type FormatSetter struct {
	basePath string
}

var _ kernel.FormatNegotiator = (*FormatSetter)(nil)

// NewFormatSetter creates a FormatSetter for basePath.
func NewFormatSetter(basePath string) *FormatSetter {
	return &FormatSetter{basePath: strings.TrimSuffix(basePath, "/")}
}

// Negotiate implements kernel.FormatNegotiator.
func (f *FormatSetter) Negotiate(req *kernel.Request) (string, bool) {
	path := req.URL.Path
	if path == f.basePath || strings.HasPrefix(path, f.basePath+"/") {
		return Format, true
	}
	return "", false
}
