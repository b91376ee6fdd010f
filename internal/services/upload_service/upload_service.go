package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"agadeepaoli/internal/lib/logger/sl"
	"agadeepaoli/internal/storage"
	filestorage "agadeepaoli/internal/storage/filestorage"
)

const maxExtLen = 10

// Upload describes a file that has been placed in the content directory.
type Upload struct {
	Filename     string
	MimeType     string
	OriginalName string
	Size         int64
}

type Uploader struct {
	log         *slog.Logger
	fileStorage filestorage.FileStorage
	maxSize     int64
	now         func() time.Time
}

func NewUploader(log *slog.Logger, fileStorage filestorage.FileStorage, maxSize int64) *Uploader {
	return &Uploader{
		log:         log,
		fileStorage: fileStorage,
		maxSize:     maxSize,
		now:         time.Now,
	}
}

// MaxSize is the largest accepted upload in bytes.
func (u *Uploader) MaxSize() int64 {
	return u.maxSize
}

// Accept validates the uploaded part and stores it under a generated name.
// Nothing is written when the type or size check fails.
func (u *Uploader) Accept(ctx context.Context, file *multipart.FileHeader) (*Upload, error) {
	const op = "upload_service.Accept"

	if file == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNoFile)
	}

	log := u.log.With(
		slog.String("op", op),
		slog.String("original_name", file.Filename),
		slog.Int64("size", file.Size),
	)

	if u.maxSize > 0 && file.Size > u.maxSize {
		log.Warn("upload rejected: too large")
		return nil, fmt.Errorf("%s: %w", op, storage.ErrFileTooLarge)
	}

	src, err := file.Open()
	if err != nil {
		log.Error("failed to open uploaded part", sl.Err(err))
		return nil, fmt.Errorf("%s: open: %w", op, err)
	}
	defer src.Close()

	mimeType, err := detectMimeType(file.Header.Get("Content-Type"), src)
	if err != nil {
		log.Error("failed to detect mime type", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !AllowedMimeType(mimeType) {
		log.Warn("upload rejected: mime type not allowed", slog.String("mimetype", mimeType))
		return nil, fmt.Errorf("%s: %s: %w", op, mimeType, storage.ErrInvalidFileType)
	}

	name := u.generateName(file.Filename)

	size, err := u.fileStorage.Save(ctx, name, src, u.maxSize)
	if err != nil {
		log.Error("failed to save file", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("file stored", slog.String("filename", name), slog.String("mimetype", mimeType))

	return &Upload{
		Filename:     name,
		MimeType:     mimeType,
		OriginalName: file.Filename,
		Size:         size,
	}, nil
}

// Discard removes a stored upload, e.g. after the row insert failed.
func (u *Uploader) Discard(ctx context.Context, filename string) error {
	return u.fileStorage.Delete(ctx, filename)
}

func (u *Uploader) generateName(original string) string {
	return fmt.Sprintf("%d-%s%s", u.now().UnixMilli(), uuid.NewString(), sanitizeExt(original))
}

// AllowedMimeType reports whether images, videos and PDFs pass.
func AllowedMimeType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") ||
		strings.HasPrefix(mimeType, "video/") ||
		mimeType == "application/pdf"
}

// detectMimeType trusts the declared type unless it is missing or generic, in
// which case the content is sniffed. src is rewound afterwards.
func detectMimeType(declared string, src multipart.File) (string, error) {
	if mt := baseMediaType(declared); mt != "" && mt != "application/octet-stream" {
		return mt, nil
	}

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("sniff: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}

	return baseMediaType(detected.String()), nil
}

func baseMediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(v)
	}
	return mt
}

func sanitizeExt(original string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(original), "."))

	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	clean := b.String()
	if clean == "" {
		return ""
	}
	if len(clean) > maxExtLen {
		clean = clean[:maxExtLen]
	}
	return "." + clean
}
