package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	httpapp "agadeepaoli/internal/app/http"
	"agadeepaoli/internal/config"
	"agadeepaoli/internal/lib/logger/sl"
	gallery "agadeepaoli/internal/services/gallery_service"
	poems "agadeepaoli/internal/services/poem_service"
	uploads "agadeepaoli/internal/services/upload_service"
	filestorage "agadeepaoli/internal/storage/filestorage"
	"agadeepaoli/internal/storage/sqlite"
	httprouters "agadeepaoli/internal/transport/http"
)

type App struct {
	log        *slog.Logger
	HTTPServer *httpapp.Server
	Storage    *sqlite.Storage
}

// New opens the store, seeds it when empty and wires the HTTP server. The
// server is ready to run but not started.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	storage, err := sqlite.New(ctx, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("%s: uploads dir: %w", op, err)
	}

	uploader := uploads.NewUploader(log, fileStorage, cfg.FileStorage.MaxSize)
	poemService := poems.NewPoemService(log, storage, cfg.Cache.PoemsTTL, cfg.Site.DefaultAuthor)
	galleryService := gallery.NewGalleryService(log, storage, uploader, cfg.Site.DefaultAlt)

	if _, err := poemService.Seed(ctx, DefaultPoems(cfg.Site.DefaultAuthor)); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	routers := httprouters.NewRouter(
		log,
		poemService,
		galleryService,
		storage,
		fileStorage.BaseURL(),
		uploader.MaxSize(),
		cfg.HTTP.UploadTimeout,
	)

	server := httpapp.New(log, cfg.HTTP, fileStorage.GetBaseDir(), fileStorage.BaseURL(), routers)
	dbName := filepath.Base(storage.Path())
	server.HideUploads(dbName, dbName+"-journal", dbName+"-wal", dbName+"-shm")
	server.BuildRouters()

	log.Info("application ready",
		slog.String("database", storage.Path()),
		slog.String("uploads", fileStorage.GetBaseDir()),
		slog.String("addr", cfg.HTTP.Addr()),
	)

	return &App{
		log:        log,
		HTTPServer: server,
		Storage:    storage,
	}, nil
}

// Stop shuts the HTTP server down first so no request is mid-write when the
// store closes.
func (a *App) Stop() error {
	const op = "app.Stop"

	var errs []error
	if err := a.HTTPServer.Stop(); err != nil {
		a.log.Error("http server stop", slog.String("op", op), sl.Err(err))
		errs = append(errs, err)
	}
	if err := a.Storage.Close(); err != nil {
		a.log.Error("storage close", slog.String("op", op), sl.Err(err))
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
