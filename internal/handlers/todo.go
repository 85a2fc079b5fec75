package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gotodo/apiserver/internal/services"
	"github.com/gotodo/apiserver/internal/store"
)

// TodoHandler provides HTTP handlers for todos. Every operation is scoped
// to the authenticated caller as author.
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler constructs a handler with the provided service.
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// TodoRouter registers todo routes on the given router. All routes
// require a token.
func TodoRouter(r chi.Router, todoService *services.TodoService, auth *AuthHandler) {
	handler := NewTodoHandler(todoService)

	r.Use(auth.RequireToken)
	r.Post("/", handler.CreateTodo)
	r.Get("/", handler.ListTodos)
	r.Route("/{todoID}", func(r chi.Router) {
		r.Get("/", handler.GetTodo)
		r.Put("/", handler.UpdateTodoCompletion)
		r.Delete("/", handler.DeleteTodo)
	})
}

// CreateTodo creates a new incomplete todo for the caller.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	user, err := currentUserFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "token is missing")
		return
	}

	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "todo_name is required")
		return
	}

	todo, err := h.todoService.Create(r.Context(), user.Username, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "todo with that name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create todo")
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// ListTodos returns every todo authored by the caller.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	user, err := currentUserFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "token is missing")
		return
	}

	todos, err := h.todoService.ListByAuthor(r.Context(), user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list todos")
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// GetTodo returns one of the caller's todos by id.
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	user, err := currentUserFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "token is missing")
		return
	}

	id, err := parseTodoID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.todoService.GetByID(r.Context(), user.Username, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "todo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch todo")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// UpdateTodoCompletion sets the completion flag of one of the caller's todos.
func (h *TodoHandler) UpdateTodoCompletion(w http.ResponseWriter, r *http.Request) {
	user, err := currentUserFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "token is missing")
		return
	}

	id, err := parseTodoID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.IsComplete == nil {
		writeError(w, http.StatusBadRequest, "is_complete field is required")
		return
	}

	todo, err := h.todoService.SetComplete(r.Context(), user.Username, id, *req.IsComplete)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "todo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update todo")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// DeleteTodo removes one of the caller's todos.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	user, err := currentUserFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "token is missing")
		return
	}

	id, err := parseTodoID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.todoService.Delete(r.Context(), user.Username, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "todo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete todo")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: fmt.Sprintf("todo %d deleted", id)})
}

type CreateTodoRequest struct {
	Name string `json:"todo_name"`
}

// UpdateTodoRequest uses a pointer so an absent field is distinguishable
// from an explicit false.
type UpdateTodoRequest struct {
	IsComplete *bool `json:"is_complete"`
}

func parseTodoID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "todoID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid todo id")
	}
	return id, nil
}
