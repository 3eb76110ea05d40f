package util

import (
	"net/http"
)

// ResponseRecorder passes a response through to the client and remembers
// its status and body size, for the logging, tracing, metrics and page
// cache middleware.
type ResponseRecorder struct {
	http.ResponseWriter

	// Status is the response status; 200 until a header is written.
	Status int

	// Bytes is the number of body bytes written.
	Bytes int

	written bool
}

// NewResponseRecorder wraps w.
func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, Status: http.StatusOK}
}

// Written reports whether the header has been sent.
func (r *ResponseRecorder) Written() bool {
	return r.written
}

// WriteHeader records code. Later calls are ignored.
func (r *ResponseRecorder) WriteHeader(code int) {
	if r.written {
		return
	}
	r.written = true
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *ResponseRecorder) Write(b []byte) (int, error) {
	r.written = true
	n, err := r.ResponseWriter.Write(b)
	r.Bytes += n
	return n, err
}

// Flush flushes the wrapped writer if it supports flushing.
func (r *ResponseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the wrapped writer for http.ResponseController.
func (r *ResponseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

var _ http.Flusher = (*ResponseRecorder)(nil)
