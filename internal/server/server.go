package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/taskdeck/apiserver/config"
	"github.com/taskdeck/apiserver/internal/activity"
	"github.com/taskdeck/apiserver/internal/auth"
	"github.com/taskdeck/apiserver/internal/db"
	"github.com/taskdeck/apiserver/internal/handlers"
	"github.com/taskdeck/apiserver/internal/services"
	"github.com/taskdeck/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	activity   *activity.Logger
	log        logrus.FieldLogger
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*Server, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	activityLog, err := newActivityLogger(cfg.Activity, log)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	taskRepo := store.NewTaskRepository(dbConn)

	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo)

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authMiddleware := handlers.RequireAuth(tokens, activityLog)

	userHandler := handlers.NewUserHandler(userService, activityLog)
	miscHandler := handlers.NewMiscHandler(activityLog)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Get("/", miscHandler.Welcome)
	router.With(authMiddleware).Get("/protected", miscHandler.Protected)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, hasher, tokens, activityLog)
	})
	router.Route("/api/tasks", func(r chi.Router) {
		handlers.TaskRouter(r, taskService, userService, activityLog, authMiddleware)
	})
	router.Get("/api/users", userHandler.ListUsers)
	router.With(authMiddleware).Post("/api/palindrome", miscHandler.Palindrome)

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
		activity:   activityLog,
		log:        log,
	}, nil
}

func newActivityLogger(cfg config.ActivityConfig, log logrus.FieldLogger) (*activity.Logger, error) {
	loc := time.Local
	if cfg.Timezone != "" {
		parsed, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid activity log timezone %q: %w", cfg.Timezone, err)
		}
		loc = parsed
	}

	fileSink, err := activity.NewFileSink(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	sinks := []activity.Sink{fileSink}
	if cfg.AMQPURL != "" {
		amqpSink, err := activity.NewAMQPSink(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			_ = fileSink.Close()
			return nil, fmt.Errorf("connect activity amqp sink: %w", err)
		}
		sinks = append(sinks, amqpSink)
		log.WithField("queue", cfg.AMQPQueue).Info("activity events will be published to amqp")
	}

	return activity.NewLogger(loc, log, sinks...), nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.activity != nil {
		_ = s.activity.Close()
	}
	return err
}
