package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gotodo/apiserver/config"
	"github.com/gotodo/apiserver/internal/db"
	"github.com/gotodo/apiserver/internal/handlers"
	"github.com/gotodo/apiserver/internal/metrics"
	"github.com/gotodo/apiserver/internal/services"
	"github.com/gotodo/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server: it opens the database, wires repositories,
// services, and handlers, and assembles the router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	userRepo := store.NewUserRepository(dbConn)
	todoRepo := store.NewTodoRepository(dbConn)

	userService := services.NewUserService(userRepo)
	todoService := services.NewTodoService(todoRepo)

	authHandler := handlers.NewAuthHandler(userService, jwtSecret, cfg.Auth.TokenTTL)

	router := NewRouter(userService, todoService, authHandler)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// NewRouter assembles the chi router from already-constructed services.
// It is split from New so tests can mount the full route tree over a
// test database.
func NewRouter(
	userService *services.UserService,
	todoService *services.TodoService,
	authHandler *handlers.AuthHandler,
) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
		requestLogger,
		metrics.Middleware,
	)

	router.Get("/", handlers.Home)
	router.Get("/healthz", handlers.Healthz)
	router.Get("/login", authHandler.Login)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	router.Route("/user", func(r chi.Router) {
		handlers.UserRouter(r, userService, authHandler)
	})
	router.Route("/todo", func(r chi.Router) {
		handlers.TodoRouter(r, todoService, authHandler)
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

// requestLogger logs each request's method, path, status, and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if ww.Status() >= http.StatusInternalServerError {
			slog.Error("request failed", attrs...)
		} else {
			slog.Info("request", attrs...)
		}
	})
}
