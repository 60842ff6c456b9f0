// Package web serves the browser rendition of the chat widget.
package web

import (
	"embed"
	"net/http"
)

//go:embed index.html static
var assets embed.FS

// Handler serves index.html at "/" and the script and stylesheet under /static/.
func Handler() http.Handler {
	return http.FileServer(http.FS(assets))
}
