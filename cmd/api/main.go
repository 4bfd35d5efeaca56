package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/config"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/database"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository/postgres"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository/sqlite"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/router"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/storage"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	// db
	var repo repository.IssueRepository
	if cfg.UsesPostgres() {
		pool, err := database.Open(context.Background(), cfg)
		if err != nil {
			l.Fatal().Err(err).Msg("db connect failed")
		}
		defer pool.Close()
		if err := database.Migrate(context.Background(), pool); err != nil {
			l.Fatal().Err(err).Msg("db migrate failed")
		}
		repo = postgres.NewIssueRepo(pool)
		l.Info().Msg("using postgres")
	} else {
		db, err := sqlite.Open(cfg.DBURL, cfg.Env == "dev")
		if err != nil {
			l.Fatal().Err(err).Str("dsn", cfg.DBURL).Msg("sqlite open failed")
		}
		repo = sqlite.NewIssueRepo(db)
		l.Info().Str("dsn", cfg.DBURL).Msg("using sqlite")
	}

	// attachments
	store, err := storage.NewLocal(cfg.UploadDir, cfg.UploadBase, models.MaxAttachmentSize)
	if err != nil {
		l.Fatal().Err(err).Msg("upload dir")
	}

	// http
	r := router.New(l, repo, store, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       60 * time.Second, // multipart uploads up to 25MB
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Info().Msg("shutdown complete")
}
