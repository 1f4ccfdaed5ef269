package handlers

import (
	"net/http"
	"time"
)

type categoriesResponse struct {
	APIVersion string `json:"apiVersion"`
	Data       struct {
		Categories []string `json:"categories"`
	} `json:"data"`
}

// GetCategories handles GET /api/categories.
func GetCategories(w http.ResponseWriter, r *http.Request) {
	resp := categoriesResponse{APIVersion: APIVersion}
	resp.Data.Categories = Categories
	writeJSON(w, http.StatusOK, resp)
}

type endpointInfo struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

type versionResponse struct {
	APIVersion  string         `json:"apiVersion"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

// GetVersion handles GET /api/version.
func GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		APIVersion:  APIVersion,
		Name:        "Micro-Mentor AI API",
		Description: "AI-powered mentorship advice API",
		Endpoints: []endpointInfo{
			{Path: "/api/advice", Method: "POST", Description: "Get structured advice for a challenge"},
			{Path: "/api/categories", Method: "GET", Description: "Get available advice categories"},
			{Path: "/api/version", Method: "GET", Description: "Get API version information"},
			{Path: "/api/admin/cache", Method: "POST", Description: "Admin endpoint to manage response cache"},
			{Path: "/health", Method: "GET", Description: "Health check endpoint"},
		},
	})
}

type healthResponse struct {
	APIVersion string `json:"apiVersion"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
}

// GetHealth handles GET /health.
func GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		APIVersion: APIVersion,
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound is the catch-all for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "The requested endpoint "+r.URL.Path+" does not exist")
}
