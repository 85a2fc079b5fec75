package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gotodo/apiserver/internal/services"
	"github.com/gotodo/apiserver/internal/store"
)

// UserHandler provides HTTP handlers for user accounts.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router. Registration is
// open; every other operation is admin-only.
func UserRouter(r chi.Router, userService *services.UserService, auth *AuthHandler) {
	handler := NewUserHandler(userService)

	r.Post("/", handler.CreateUser)
	r.With(auth.RequireToken, auth.RequireAdmin).Get("/", handler.ListUsers)
	r.Route("/{username}", func(r chi.Router) {
		r.Use(auth.RequireToken, auth.RequireAdmin)
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUserRole)
		r.Delete("/", handler.DeleteUser)
	})
}

// CreateUser registers a new non-admin account.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), req.Username, hashed)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, fmt.Sprintf("%s is already registered", strings.ToLower(req.Username)))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ListUsers returns every registered user.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser returns a single user by username.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUserRole promotes or demotes a user's admin flag.
func (h *UserHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Admin == nil {
		writeError(w, http.StatusBadRequest, "admin field is required")
		return
	}

	user, err := h.userService.SetAdmin(r.Context(), username, *req.Admin)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user and, via the schema, the user's todos.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := strings.ToLower(chi.URLParam(r, "username"))

	if err := h.userService.Delete(r.Context(), username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: fmt.Sprintf("%s deleted", username)})
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateRoleRequest uses a pointer so an absent field is distinguishable
// from an explicit false.
type UpdateRoleRequest struct {
	Admin *bool `json:"admin"`
}
