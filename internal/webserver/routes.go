package webserver

import (
	"embed"
	"encoding/json"
	"net/http"

	"github.com/DominicRaj03/Gen-AI---QA/internal/webapi"
)

//go:embed static/index.html
var assets embed.FS

// registerRoutes sets up the API routes and the index page on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config) {
	webapi.RegisterRoutes(mux, cfg.Session, cfg.Sink)
	mux.HandleFunc("/api/", handleAPINotFound)
	mux.HandleFunc("GET /{$}", handleIndex)
}

// handleIndex serves the single-page form.
func handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := assets.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page) //nolint:errcheck
}

// handleAPINotFound returns a JSON 404 for unknown API paths and methods.
func handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(webapi.ErrorResponse{ //nolint:errcheck
		Error: "no such endpoint: " + r.Method + " " + r.URL.Path,
		Code:  http.StatusNotFound,
	})
}
