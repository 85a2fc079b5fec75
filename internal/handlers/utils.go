package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gotodo/apiserver/types"
)

type contextKey string

const contextUserKey contextKey = "current_user"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a simple informational payload.
type StatusResponse struct {
	Status string `json:"status"`
}

func currentUserFromContext(ctx context.Context) (types.User, error) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	if !ok || user.Username == "" {
		return types.User{}, errors.New("no authenticated user in context")
	}
	return user, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
