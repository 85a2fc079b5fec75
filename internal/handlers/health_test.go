package handlers_test

import (
	"net/http"
	"testing"
)

func TestHome(t *testing.T) {
	api := newTestAPI(t, "health_home")

	rec := api.do(t, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "Online" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, "health_healthz")

	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}
