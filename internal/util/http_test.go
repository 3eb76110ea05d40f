package util

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseRecorder(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := NewResponseRecorder(rec)
	assert.Equal(t, http.StatusOK, w.Status)
	assert.False(t, w.Written())

	w.WriteHeader(http.StatusNotAcceptable)
	w.WriteHeader(http.StatusOK)

	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, 5, w.Bytes)
	assert.Equal(t, http.StatusNotAcceptable, w.Status)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)

	w.Flush()
	assert.True(t, rec.Flushed)
	assert.Same(t, rec, w.Unwrap())
}

func TestResponseRecorder_ImplicitStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := NewResponseRecorder(rec)

	_, err := w.Write([]byte("x"))
	require.NoError(t, err)

	assert.True(t, w.Written())
	assert.Equal(t, http.StatusOK, w.Status)
	assert.Equal(t, 1, w.Bytes)
}
