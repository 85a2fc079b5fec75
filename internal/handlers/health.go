package handlers

import "net/http"

// Home reports that the service is online.
func Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "Online"})
}

// Healthz is the liveness check endpoint.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
