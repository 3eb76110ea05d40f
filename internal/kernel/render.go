package kernel

import (
	"net/http"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// jsonErrorRenderer is the fallback renderer.
type jsonErrorRenderer struct{}

func (jsonErrorRenderer) Applies(*Request) bool { return true }

func (jsonErrorRenderer) Render(_ *Request, err *HTTPError) *Response {
	resp, marshalErr := NewJSONResponse(err.Status, errorBody{
		Error:   http.StatusText(err.Status),
		Message: err.Message,
	}, "application/json")
	if marshalErr != nil {
		return NewResponse(err.Status, []byte(http.StatusText(err.Status)), "text/plain; charset=utf-8")
	}
	return resp
}
