package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gotodo/apiserver/internal/handlers"
	"github.com/gotodo/apiserver/internal/server"
	"github.com/gotodo/apiserver/internal/services"
	"github.com/gotodo/apiserver/internal/store"
	"github.com/gotodo/apiserver/internal/testutil"
)

const testSecret = "test-secret"

type testAPI struct {
	router      *chi.Mux
	userService *services.UserService
}

func newTestAPI(t *testing.T, name string) *testAPI {
	t.Helper()

	db := testutil.OpenInMemoryDB(t, name)
	userService := services.NewUserService(store.NewUserRepository(db))
	todoService := services.NewTodoService(store.NewTodoRepository(db))
	authHandler := handlers.NewAuthHandler(userService, testSecret, time.Hour)
	router := server.NewRouter(userService, todoService, authHandler)

	return &testAPI{router: router, userService: userService}
}

func (api *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(handlers.TokenHeader, token)
	}

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func (api *testAPI) register(t *testing.T, username, password string) {
	t.Helper()
	rec := api.do(t, http.MethodPost, "/user", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
}

func (api *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.SetBasicAuth(username, password)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var resp handlers.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected token in login response")
	}
	return resp.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRegister(t *testing.T) {
	api := newTestAPI(t, "auth_register")

	rec := api.do(t, http.MethodPost, "/user", "", map[string]string{
		"username": "Alice",
		"password": "pw1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["username"] != "alice" {
		t.Fatalf("expected lowercased username, got %v", body["username"])
	}
	if body["admin"] != false {
		t.Fatalf("expected admin=false, got %v", body["admin"])
	}
	if body["public_id"] == "" || body["public_id"] == nil {
		t.Fatal("expected public_id to be set")
	}
	if strings.Contains(rec.Body.String(), "pw1") {
		t.Fatal("response leaks the plaintext password")
	}
	if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
		t.Fatalf("response exposes a password field: %s", rec.Body.String())
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	api := newTestAPI(t, "auth_register_dup")
	api.register(t, "alice", "pw1")

	rec := api.do(t, http.MethodPost, "/user", "", map[string]string{
		"username": "ALICE",
		"password": "other",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body %s", rec.Code, rec.Body.String())
	}

	// The original credentials still work: the first record was not replaced.
	api.login(t, "alice", "pw1")
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t, "auth_register_invalid")

	for name, body := range map[string]map[string]string{
		"missing password": {"username": "alice"},
		"missing username": {"password": "pw1"},
		"empty":            {},
	} {
		rec := api.do(t, http.MethodPost, "/user", "", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	api := newTestAPI(t, "auth_login_fail")
	api.register(t, "alice", "pw1")

	cases := map[string]func(req *http.Request){
		"missing credentials": func(req *http.Request) {},
		"unknown user":        func(req *http.Request) { req.SetBasicAuth("ghost", "pw1") },
		"wrong password":      func(req *http.Request) { req.SetBasicAuth("alice", "nope") },
	}
	for name, setup := range cases {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		setup(req)
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, rec.Code)
		}
		if challenge := rec.Header().Get("WWW-Authenticate"); !strings.HasPrefix(challenge, "Basic") {
			t.Errorf("%s: expected basic auth challenge, got %q", name, challenge)
		}
	}
}

func TestTokenResolvesIdentity(t *testing.T) {
	api := newTestAPI(t, "auth_identity")
	api.register(t, "alice", "pw1")
	api.register(t, "bob", "pw2")
	token := api.login(t, "alice", "pw1")

	rec := api.do(t, http.MethodPost, "/todo", token, map[string]string{"todo_name": "Buy milk"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create todo: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["author"] != "alice" {
		t.Fatalf("expected author alice, got %v", body["author"])
	}
}

func TestTokenMissing(t *testing.T) {
	api := newTestAPI(t, "auth_token_missing")

	rec := api.do(t, http.MethodGet, "/todo", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "token is missing" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestTokenTampered(t *testing.T) {
	api := newTestAPI(t, "auth_token_tampered")
	api.register(t, "alice", "pw1")
	token := api.login(t, "alice", "pw1")

	// Swap in a forged payload claiming a different username while
	// keeping the original signature. The signature no longer matches.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"username":"bob"}`))
	tampered := parts[0] + "." + forged + "." + parts[2]

	rec := api.do(t, http.MethodGet, "/todo", tampered, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "token is invalid" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestTokenExpired(t *testing.T) {
	api := newTestAPI(t, "auth_token_expired")
	api.register(t, "alice", "pw1")

	claims := jwt.MapClaims{
		"username": "alice",
		"iat":      time.Now().Add(-2 * time.Hour).Unix(),
		"exp":      time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec := api.do(t, http.MethodGet, "/todo", expired, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "token is invalid" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestTokenWithoutExpiry(t *testing.T) {
	api := newTestAPI(t, "auth_token_no_expiry")
	api.register(t, "alice", "pw1")

	// A correctly-signed token that omits the exp claim would grant
	// indefinite access; the gate must refuse it.
	claims := jwt.MapClaims{
		"username": "alice",
		"iat":      time.Now().Unix(),
	}
	eternal, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec := api.do(t, http.MethodGet, "/todo", eternal, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "token is invalid" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestTokenForDeletedUser(t *testing.T) {
	api := newTestAPI(t, "auth_token_deleted_user")
	api.register(t, "alice", "pw1")
	token := api.login(t, "alice", "pw1")

	if err := api.userService.Delete(context.Background(), "alice"); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	rec := api.do(t, http.MethodGet, "/todo", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "token is invalid" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}
