package pathsupport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
)

type recordingListener struct {
	queries []string
	err     error
}

func (l *recordingListener) OnRequest(_ context.Context, event *kernel.RequestEvent) error {
	l.queries = append(l.queries, event.Request.URL.RawQuery)
	return l.err
}

func TestRequestValidatorDecorator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		controller string
		query      string
		expected   string
	}{
		{name: "own route", controller: ControllerName, query: "_format=json&page=2", expected: "page=2"},
		{name: "other route", controller: "jsonapi.entity_resource", query: "_format=json&page=2", expected: "_format=json&page=2"},
		{name: "no controller", query: "_format=json&page=2", expected: "_format=json&page=2"},
		{name: "order kept", controller: ControllerName, query: "sort=-created&_format=api_json&include=uid", expected: "sort=-created&include=uid"},
		{name: "repeated", controller: ControllerName, query: "_format=a&_format=b", expected: ""},
		{name: "without format", controller: ControllerName, query: "page=2", expected: "page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := kernel.NewRequest(httptest.NewRequest(http.MethodGet, "/node/1?"+tt.query, nil))
			require.NoError(t, err)
			if tt.controller != "" {
				req.Attributes.Set(kernel.AttrController, tt.controller)
			}

			inner := &recordingListener{}
			d := NewRequestValidatorDecorator(inner)

			require.NoError(t, d.OnRequest(context.Background(), &kernel.RequestEvent{Request: req, Type: kernel.MainRequest}))

			assert.Equal(t, []string{tt.expected}, inner.queries, "delegate sees the stripped query")
			assert.Equal(t, tt.expected, req.URL.RawQuery)
			assert.Equal(t, tt.expected, req.Server[kernel.ServerQueryString])
		})
	}
}

func TestRequestValidatorDecorator_PropagatesError(t *testing.T) {
	t.Parallel()

	innerErr := kernel.BadRequest("invalid query")
	inner := &recordingListener{err: innerErr}
	d := NewRequestValidatorDecorator(inner)

	req, err := kernel.NewRequest(httptest.NewRequest(http.MethodGet, "/node/1?_format=api_json&foo=1", nil))
	require.NoError(t, err)
	req.Attributes.Set(kernel.AttrController, ControllerName)

	err = d.OnRequest(context.Background(), &kernel.RequestEvent{Request: req, Type: kernel.MainRequest})
	assert.Same(t, innerErr, err)
	assert.True(t, errors.Is(err, innerErr))
	assert.Equal(t, []string{"foo=1"}, inner.queries)
}
