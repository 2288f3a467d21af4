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
	"github.com/hirehub/apiserver/config"
	"github.com/hirehub/apiserver/internal/db"
	"github.com/hirehub/apiserver/internal/handlers"
	"github.com/hirehub/apiserver/internal/mail"
	"github.com/hirehub/apiserver/internal/services"
	"github.com/hirehub/apiserver/internal/storage"
	"github.com/hirehub/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mailQueue  mail.Queue
}

// New constructs a Server with every layer wired: database, media
// store, mail queue, repositories, services and routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWT.Secret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	verifySecret := strings.TrimSpace(cfg.JWT.VerifySecret)
	if verifySecret == "" {
		return nil, errors.New("JWT_VERIFY_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend, err := newMediaBackend(ctx, cfg.Media)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	media := storage.NewStorage(backend, cfg.Media.RootFolder)
	if err := media.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure media bucket: %w", err)
	}

	mailQueue, err := NewMailQueue(ctx, cfg.Mail)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	mailer := mail.NewMailer(mailQueue, cfg.BaseURL)

	userRepo := store.NewUserRepository(dbConn)
	companyRepo := store.NewCompanyRepository(dbConn)
	jobRepo := store.NewJobRepository(dbConn)
	appRepo := store.NewApplicationRepository(dbConn)

	companyService := services.NewCompanyService(companyRepo, jobRepo, appRepo, media)
	userService := services.NewUserService(userRepo, companyService, appRepo, media, mailer, []byte(verifySecret))
	jobService := services.NewJobService(jobRepo, companyRepo, appRepo, media)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, media, jwtSecret)
	})
	router.Route("/companies", func(r chi.Router) {
		handlers.CompanyRouter(r, companyService, userService, media, jwtSecret)
	})
	router.Route("/jobs", func(r chi.Router) {
		handlers.JobRouter(r, jobService, userService, media, jwtSecret)
	})

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
		mailQueue:  mailQueue,
	}, nil
}

func newMediaBackend(ctx context.Context, cfg config.MediaConfig) (storage.ObjectStorage, error) {
	switch cfg.Backend {
	case "minio":
		return storage.NewMinioClient(cfg.Minio)
	case "gcs":
		return storage.NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}

// NewMailQueue connects the configured mail-queue backend. The mailer
// worker uses the same selection.
func NewMailQueue(ctx context.Context, cfg config.MailConfig) (mail.Queue, error) {
	switch cfg.Backend {
	case "rabbitmq":
		return mail.NewRabbitQueue(cfg.RabbitMQ, cfg.Queue)
	case "pubsub":
		return mail.NewPubSubQueue(ctx, cfg.PubSub, cfg.Queue)
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.mailQueue != nil {
		_ = s.mailQueue.Close()
	}
	return s.httpServer.Close()
}
