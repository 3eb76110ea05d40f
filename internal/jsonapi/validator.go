package jsonapi

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
)

// reservedQueryFamilies are the query parameter families JSON:API
// defines.
var reservedQueryFamilies = []string{"filter", "sort", "page", "fields", "include"}

// RequestValidator rejects JSON:API requests whose query parameters
// JSON:API does not allow. Other requests pass untouched.
type RequestValidator struct{}

var _ kernel.RequestListener = RequestValidator{}

// OnRequest implements kernel.RequestListener.
func (RequestValidator) OnRequest(_ context.Context, event *kernel.RequestEvent) error {
	req := event.Request
	if isJSONAPI, _ := req.Attributes[DefaultIsJSONAPI].(bool); !isJSONAPI {
		return nil
	}

	if req.HasQuery(kernel.QueryFormat) {
		return kernel.BadRequest("JSON:API does not need the _format query parameter; use the URL provided in the document links")
	}

	var invalid []string
	for name := range req.Query() {
		family, _, _ := strings.Cut(name, "[")
		if slices.Contains(reservedQueryFamilies, family) {
			continue
		}
		if !IsValidCustomQueryParameter(family) {
			invalid = append(invalid, "'"+name+"'")
		}
	}
	if len(invalid) > 0 {
		slices.Sort(invalid)
		return kernel.BadRequest(fmt.Sprintf("the following query parameters violate the JSON:API specification: %s",
			strings.Join(invalid, ", ")))
	}
	return nil
}

// IsValidCustomQueryParameter reports whether name may be used as an
// implementation-specific query parameter: a valid member name with at
// least one character outside a-z.
func IsValidCustomQueryParameter(name string) bool {
	return IsValidMemberName(name) && strings.IndexFunc(name, func(r rune) bool {
		return r < 'a' || r > 'z'
	}) >= 0
}

// IsValidMemberName reports whether name is a valid JSON:API member
// name. Hyphen, underscore and space are allowed except as the first or
// last character.
func IsValidMemberName(name string) bool {
	if name == "" || !utf8.ValidString(name) {
		return false
	}

	first, _ := utf8.DecodeRuneInString(name)
	last, _ := utf8.DecodeLastRuneInString(name)
	if !isGloballyAllowed(first) || !isGloballyAllowed(last) {
		return false
	}

	for _, r := range name {
		if !isGloballyAllowed(r) && r != '-' && r != '_' && r != ' ' {
			return false
		}
	}
	return true
}

func isGloballyAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	default:
		return r >= 0x80 && r <= 0xFFFF
	}
}
