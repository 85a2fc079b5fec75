package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gotodo/apiserver/internal/services"
	"github.com/gotodo/apiserver/internal/store"
)

// TokenHeader is the request header carrying the access token on
// protected routes.
const TokenHeader = "x-access-token"

const basicAuthChallenge = `Basic realm="login required"`

// tokenClaims is the JWT payload: the username identity claim plus the
// registered issued-at and expiry claims.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthHandler issues tokens and gates protected routes. It resolves the
// token's username claim against the user store on every request, so a
// token for a deleted user stops working immediately.
type AuthHandler struct {
	userService *services.UserService
	secret      []byte
	tokenTTL    time.Duration
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		secret:      []byte(jwtSecret),
		tokenTTL:    tokenTTL,
	}
}

// Login verifies HTTP Basic credentials and returns a signed token.
// Missing credentials, an unknown username, and a wrong password all
// collapse into the same unauthorized outcome.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok || username == "" || password == "" {
		h.unauthorized(w)
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
			return
		}
		h.unauthorized(w)
		return
	}

	if !checkPassword(user.PasswordHash, password) {
		h.unauthorized(w)
		return
	}

	token, err := issueToken(user.Username, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	slog.Info("user logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// RequireToken enforces token authentication and injects the resolved
// user into the request context.
func (h *AuthHandler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := strings.TrimSpace(r.Header.Get(TokenHeader))
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "token is missing")
			return
		}

		username, err := parseTokenUsername(tokenString, h.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "token is invalid")
			return
		}

		user, err := h.userService.GetByUsername(r.Context(), username)
		if err != nil {
			// A valid signature for a user that no longer exists is
			// reported the same way as a bad token.
			writeError(w, http.StatusUnauthorized, "token is invalid")
			return
		}

		ctx := context.WithValue(r.Context(), contextUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects callers whose resolved identity lacks the admin
// flag. It must run after RequireToken.
func (h *AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUserFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "token is missing")
			return
		}
		if !user.Admin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AuthHandler) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", basicAuthChallenge)
	writeError(w, http.StatusUnauthorized, "could not verify credentials")
}

// TokenResponse is the login payload.
type TokenResponse struct {
	Token string `json:"token"`
}

func issueToken(username string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenUsername(tokenString string, secret []byte) (string, error) {
	claims := tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Username) == "" {
		return "", errors.New("missing username claim")
	}
	return claims.Username, nil
}
