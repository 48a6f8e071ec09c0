package handler

import (
	"fmt"
	"net/http"
)

// DocsHandler serves the embedded OpenAPI document and a Swagger UI page
// that points at it.
type DocsHandler struct {
	spec    []byte
	specURL string
}

func NewDocsHandler(spec []byte, specURL string) *DocsHandler {
	return &DocsHandler{spec: spec, specURL: specURL}
}

func (h *DocsHandler) Spec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(h.spec)
}

func (h *DocsHandler) UI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, docsPage, h.specURL)
}

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Digital Banking API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: %q, dom_id: "#swagger-ui", deepLinking: true });
  </script>
</body>
</html>`
