package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func (api *testAPI) promote(t *testing.T, username string) {
	t.Helper()
	if _, err := api.userService.SetAdmin(context.Background(), username, true); err != nil {
		t.Fatalf("promote %s: %v", username, err)
	}
}

func TestAdminGate(t *testing.T) {
	api := newTestAPI(t, "user_admin_gate")
	api.register(t, "alice", "pw1")
	api.register(t, "bob", "pw2")
	token := api.login(t, "bob", "pw2")

	adminOnly := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/user", nil},
		{http.MethodGet, "/user/alice", nil},
		{http.MethodPut, "/user/alice", map[string]bool{"admin": true}},
		{http.MethodDelete, "/user/alice", nil},
	}
	for _, op := range adminOnly {
		rec := api.do(t, op.method, op.path, token, op.body)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403, got %d", op.method, op.path, rec.Code)
		}
	}

	// None of the rejected calls mutated anything: alice still exists
	// as a non-admin.
	api.promote(t, "bob")
	adminToken := api.login(t, "bob", "pw2")
	rec := api.do(t, http.MethodGet, "/user/alice", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get alice: status %d body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["admin"] != false {
		t.Fatalf("alice should not be admin: %v", body)
	}
}

func TestListUsers(t *testing.T) {
	api := newTestAPI(t, "user_list")
	api.register(t, "alice", "pw1")
	api.register(t, "bob", "pw2")
	api.promote(t, "alice")
	token := api.login(t, "alice", "pw1")

	rec := api.do(t, http.MethodGet, "/user", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var users []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestUpdateUserRole(t *testing.T) {
	api := newTestAPI(t, "user_update_role")
	api.register(t, "alice", "pw1")
	api.register(t, "bob", "pw2")
	api.promote(t, "alice")
	token := api.login(t, "alice", "pw1")

	rec := api.do(t, http.MethodPut, "/user/bob", token, map[string]bool{"admin": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["admin"] != true {
		t.Fatalf("expected bob promoted, got %v", body)
	}

	// Missing admin field is a validation error, not a silent no-op.
	rec = api.do(t, http.MethodPut, "/user/bob", token, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPut, "/user/ghost", token, map[string]bool{"admin": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	api := newTestAPI(t, "user_delete")
	api.register(t, "alice", "pw1")
	api.register(t, "bob", "pw2")
	api.promote(t, "alice")
	token := api.login(t, "alice", "pw1")

	rec := api.do(t, http.MethodDelete, "/user/bob", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/user/bob", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}

	// Deleting again is a clean not-found, not a fault.
	rec = api.do(t, http.MethodDelete, "/user/bob", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetUserNotFound(t *testing.T) {
	api := newTestAPI(t, "user_get_missing")
	api.register(t, "alice", "pw1")
	api.promote(t, "alice")
	token := api.login(t, "alice", "pw1")

	rec := api.do(t, http.MethodGet, "/user/ghost", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
