package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"agadeepaoli/internal/domain/models"
	"agadeepaoli/internal/lib/logger/sl"
	"agadeepaoli/internal/metrics"
	"agadeepaoli/internal/repository"
	uploads "agadeepaoli/internal/services/upload_service"
	"agadeepaoli/internal/storage"
	"agadeepaoli/internal/transport/http/dto"
)

// FileAcceptor places uploads in the content directory and removes them.
type FileAcceptor interface {
	Accept(ctx context.Context, file *multipart.FileHeader) (*uploads.Upload, error)
	Discard(ctx context.Context, filename string) error
}

type GalleryService struct {
	log        *slog.Logger
	repo       repository.GalleryRepository
	files      FileAcceptor
	defaultAlt string
	now        func() time.Time
}

func NewGalleryService(log *slog.Logger, repo repository.GalleryRepository, files FileAcceptor, defaultAlt string) *GalleryService {
	return &GalleryService{
		log:        log,
		repo:       repo,
		files:      files,
		defaultAlt: defaultAlt,
		now:        time.Now,
	}
}

// ListItems возвращает все элементы галереи, новые первыми
func (s *GalleryService) ListItems(ctx context.Context) ([]models.GalleryItem, error) {
	const op = "service.GalleryService.ListItems"
	log := s.log.With(slog.String("op", op))

	items, err := s.repo.ListGalleryItems(ctx)
	if err != nil {
		log.Error("failed to list gallery items", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if items == nil {
		items = []models.GalleryItem{}
	}

	return items, nil
}

// Upload stores the file and then records it. If the record cannot be written
// the stored file is removed again.
func (s *GalleryService) Upload(ctx context.Context, input dto.UploadImageInput) (models.GalleryItem, error) {
	const op = "service.GalleryService.Upload"
	log := s.log.With(slog.String("op", op))

	log.Info("uploading gallery item")

	up, err := s.files.Accept(ctx, input.File)
	if err != nil {
		metrics.UploadsRejected.WithLabelValues(rejectReason(err)).Inc()
		log.Warn("upload rejected", sl.Err(err))
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item := models.GalleryItem{
		Filename:   up.Filename,
		MimeType:   up.MimeType,
		Alt:        input.Alt,
		UploadedAt: s.now().UTC().Format(time.RFC3339),
	}
	if item.Alt == "" {
		item.Alt = s.defaultAlt
	}

	id, err := s.repo.SaveGalleryItem(ctx, item)
	if err != nil {
		if derr := s.files.Discard(ctx, up.Filename); derr != nil {
			log.Error("failed to remove orphaned upload", slog.String("filename", up.Filename), sl.Err(derr))
		}
		log.Error("failed to save gallery item", sl.Err(err))
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}
	item.ID = id

	metrics.UploadsAccepted.Inc()
	log.Info("gallery item created",
		slog.Int64("id", id),
		slog.String("filename", item.Filename),
		slog.String("mimetype", item.MimeType),
	)

	return item, nil
}

// DeleteItem removes the file first and the row second. A file that is
// already gone does not block the row delete; any other file error leaves
// the row in place.
func (s *GalleryService) DeleteItem(ctx context.Context, id int64) error {
	const op = "service.GalleryService.DeleteItem"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	item, err := s.repo.GalleryItem(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrGalleryItemNotFound) {
			log.Error("failed to load gallery item", sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.files.Discard(ctx, item.Filename); err != nil {
		if !errors.Is(err, storage.ErrFileNotFound) {
			log.Error("failed to remove file", slog.String("filename", item.Filename), sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Warn("file already missing", slog.String("filename", item.Filename))
	}

	if err := s.repo.DeleteGalleryItem(ctx, id); err != nil {
		log.Error("file removed but row delete failed", slog.String("filename", item.Filename), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.GalleryItemsDeleted.Inc()
	log.Info("gallery item deleted", slog.String("filename", item.Filename))
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, storage.ErrNoFile):
		return "no_file"
	case errors.Is(err, storage.ErrFileTooLarge):
		return "too_large"
	case errors.Is(err, storage.ErrInvalidFileType):
		return "invalid_type"
	default:
		return "error"
	}
}
