package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/config"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/handlers"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/middleware"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/storage"
)

func New(log zerolog.Logger, issues repository.IssueRepository, files *storage.Local, cfg config.Config) http.Handler {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 200
	}
	if cfg.UploadBase == "" {
		cfg.UploadBase = "/uploads"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.ActorHeader, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Total-Count", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	r.Use(middleware.WithActor)

	// Health
	r.Get("/healthz", handlers.Health(issues))

	// Stored attachments
	r.Handle(cfg.UploadBase+"/*", http.StripPrefix(cfg.UploadBase+"/", http.FileServer(http.Dir(files.Dir()))))

	ih := handlers.NewIssueHTTP(issues, files, cfg.PageSize, log)
	rh := handlers.NewReportsHTTP(issues, log)

	r.Route("/api/issues", func(r chi.Router) {
		r.Get("/", ih.List())
		r.Post("/", ih.Create())
		r.Get("/stats", rh.Summary())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", ih.Get())
			r.Patch("/status", ih.UpdateStatus())
			r.Patch("/assign", ih.Assign())
			r.Post("/comments", ih.AddComment())
		})
	})

	return r
}
