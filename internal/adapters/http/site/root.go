// Package site serves the landing page of the service.
package site

import (
	"context"
	"net/http"
)

// Register attaches the landing page to mux. Only the exact root path is
// served; everything else falls through to the other routes.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /{$}", NewRootHandler())
}

// RootHandler serves the landing page.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// ServeHTTP handles GET / requests.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Curriculum Progress</title>
  </head>
  <body>
    <h1>Curriculum Progress</h1>
    <p>Tracks progress through the plan of studies and reports which courses are open.</p>
    <ul>
      <li><a href="/api-docs">API reference</a></li>
      <li><a href="/catalog">Plan of studies</a></li>
      <li><a href="/stats">Service stats</a></li>
      <li><a href="/healthz">Health</a></li>
      <li><a href="/metrics">Metrics</a></li>
    </ul>
  </body>
</html>`
