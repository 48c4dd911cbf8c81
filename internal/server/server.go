package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/foliohub/apiserver/config"
	"github.com/foliohub/apiserver/internal/events"
	"github.com/foliohub/apiserver/internal/handlers"
	"github.com/foliohub/apiserver/internal/logging"
	"github.com/foliohub/apiserver/internal/services"
	"github.com/foliohub/apiserver/internal/storage"
	"github.com/foliohub/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	publisher  events.Publisher
	log        logging.Logger
}

// New constructs a Server with its middleware, storage backend, event
// publisher, and routes wired.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*Server, error) {
	media, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if err := media.EnsureReady(ctx); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init events: %w", err)
	}

	userRepo, err := store.NewUserIndexRepository(cfg.UsersDir())
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	profileRepo := store.NewProfileRepository(cfg.UsersDir())

	accountService := services.NewAccountService(userRepo, profileRepo, publisher, log)
	profileService := services.NewProfileService(profileRepo)
	mediaService := services.NewMediaService(media, log)
	adminService := services.NewAdminService(userRepo, profileRepo, media, publisher, log)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	// The dashboard is served from arbitrary origins; the API has always
	// been open.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		handlers.AccountsRouter(r, accountService)
		handlers.ProfileRouter(r, profileService)
		handlers.MediaRouter(r, mediaService)
		handlers.UploadRouter(r, mediaService)
		handlers.AdminRouter(r, adminService)
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
		publisher:  publisher,
		log:        log,
	}, nil
}

func newStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendLocal, "":
		client, err := storage.NewLocalClient(cfg.UsersDir())
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case config.StorageBackendMinio:
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case config.StorageBackendGCS:
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newPublisher(ctx context.Context, cfg config.Config) (events.Publisher, error) {
	switch cfg.Events.Backend {
	case config.EventsBackendNone, "":
		return events.NopPublisher{}, nil
	case config.EventsBackendRabbitMQ:
		return events.NewRabbitMQPublisher(cfg.Events.RabbitMQ)
	case config.EventsBackendPubSub:
		return events.NewPubSubPublisher(ctx, cfg.Events.PubSub)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
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
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	return s.httpServer.Close()
}
