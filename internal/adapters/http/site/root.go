// Package site serves the embedded About page.
package site

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static
var staticFS embed.FS

// FS returns the embedded About site.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// Register attaches the About page at /about/ and redirects / to it.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	files := http.StripPrefix("/about", http.FileServer(FS()))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/about/", http.StatusFound)
	})
	r.Get("/about", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/about/", http.StatusMovedPermanently)
	})
	r.Get("/about/*", files.ServeHTTP)
}
