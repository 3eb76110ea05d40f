// Package server runs the HTTP listener. A gin engine serves the
// health and metrics endpoints and hands every other request to the
// site handler.
package server
