package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"agadeepaoli/internal/storage"
)

// FileStorage интерфейс для работы с файловым хранилищем
type FileStorage interface {
	Save(ctx context.Context, name string, src io.Reader, maxSize int64) (int64, error)
	Delete(ctx context.Context, name string) error
	GetFullPath(name string) string
	BaseURL() string
	GetBaseDir() string
}

// LocalFileStorage keeps uploads flat in one directory.
type LocalFileStorage struct {
	baseDir string // e.g. "./uploads"
	baseURL string // e.g. "/uploads"
}

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save streams src into baseDir/name. Content lands in a temp file first and is
// renamed into place only once fully written, so a half-written upload is
// never visible under its final name. maxSize <= 0 disables the limit.
func (s *LocalFileStorage) Save(ctx context.Context, name string, src io.Reader, maxSize int64) (int64, error) {
	const op = "filestorage.Save"

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := validName(name); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("%s: create temp file: %w", op, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	reader := src
	if maxSize > 0 {
		// one extra byte tells "exactly at limit" apart from "over limit"
		reader = io.LimitReader(src, maxSize+1)
	}

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(tmp, reader)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			cleanup()
			return 0, fmt.Errorf("%s: copy: %w", op, copyErr)
		}
	case <-ctx.Done():
		<-done
		cleanup()
		return 0, ctx.Err()
	}

	if maxSize > 0 && size > maxSize {
		cleanup()
		return 0, fmt.Errorf("%s: %w", op, storage.ErrFileTooLarge)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return 0, fmt.Errorf("%s: sync: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("%s: close: %w", op, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("%s: chmod: %w", op, err)
	}

	if err := os.Rename(tmpName, s.GetFullPath(name)); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("%s: rename: %w", op, err)
	}

	return size, nil
}

// Delete удаляет файл из хранилища. A missing file yields storage.ErrFileNotFound.
func (s *LocalFileStorage) Delete(ctx context.Context, name string) error {
	const op = "filestorage.Delete"

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(s.GetFullPath(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %s: %w", op, name, storage.ErrFileNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetFullPath возвращает полный путь к файлу на диске
func (s *LocalFileStorage) GetFullPath(name string) string {
	return filepath.Join(s.baseDir, name)
}

// BaseURL возвращает базовый URL для доступа к файлам
func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}
