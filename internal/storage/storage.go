package storage

import (
	"errors"
	"fmt"
)

var (
	ErrPoemNotFound        = errors.New("poem not found")
	ErrGalleryItemNotFound = errors.New("gallery item not found")
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)

// OpenError is returned when an existing database file cannot be loaded.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open store %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
