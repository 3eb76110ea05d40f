package kernel

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Response is a fully buffered HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates a response with the given content type.
func NewResponse(status int, body []byte, contentType string) *Response {
	resp := &Response{Status: status, Header: make(http.Header), Body: body}
	if contentType != "" {
		resp.Header.Set("Content-Type", contentType)
	}
	return resp
}

// NewJSONResponse marshals v into a response.
func NewJSONResponse(status int, v any, contentType string) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return NewResponse(status, body, contentType), nil
}

// Write writes the response. HEAD responses carry headers only.
func (r *Response) Write(w http.ResponseWriter, method string) error {
	for key, values := range r.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	if r.Status != http.StatusNoContent && r.Status != http.StatusNotModified {
		w.Header().Set("Content-Length", strconv.Itoa(len(r.Body)))
	}
	w.WriteHeader(r.Status)

	if method == http.MethodHead || len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}
