package handlers

import (
	"encoding/json"
	"net/http"
)

// APIVersion is stamped on every JSON reply.
const APIVersion = "1.0"

type errorResponse struct {
	APIVersion string `json:"apiVersion"`
	Error      string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		APIVersion: APIVersion,
		Error:      msg,
	})
}
