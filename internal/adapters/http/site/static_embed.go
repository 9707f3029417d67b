package site

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed static/* templates/*.html
var siteFS embed.FS

var pageTemplates = template.Must(template.ParseFS(siteFS, "templates/*.html"))

// FS returns an http.FileSystem for the embedded stylesheets.
func FS() http.FileSystem {
	sub, err := fs.Sub(siteFS, "static")
	if err != nil {
		// Should never happen while the embed pattern includes static/.
		return http.FS(siteFS)
	}
	return http.FS(sub)
}
