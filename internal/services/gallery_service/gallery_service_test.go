package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agadeepaoli/internal/domain/models"
	"agadeepaoli/internal/lib/logger/handlers/slogdiscard"
	uploads "agadeepaoli/internal/services/upload_service"
	"agadeepaoli/internal/storage"
	"agadeepaoli/internal/transport/http/dto"
)

type MockGalleryRepository struct {
	mock.Mock
}

func (m *MockGalleryRepository) ListGalleryItems(ctx context.Context) ([]models.GalleryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GalleryItem), args.Error(1)
}

func (m *MockGalleryRepository) GalleryItem(ctx context.Context, id int64) (models.GalleryItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockGalleryRepository) SaveGalleryItem(ctx context.Context, item models.GalleryItem) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGalleryRepository) DeleteGalleryItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockFileAcceptor struct {
	mock.Mock
}

func (m *MockFileAcceptor) Accept(ctx context.Context, file *multipart.FileHeader) (*uploads.Upload, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploads.Upload), args.Error(1)
}

func (m *MockFileAcceptor) Discard(ctx context.Context, filename string) error {
	args := m.Called(ctx, filename)
	return args.Error(0)
}

const testAlt = "அறக்கட்டளை பதிவு (Media)"

var fixedNow = time.Date(2026, 2, 20, 8, 30, 0, 0, time.UTC)

func newTestGalleryService() (*GalleryService, *MockGalleryRepository, *MockFileAcceptor) {
	repo := new(MockGalleryRepository)
	files := new(MockFileAcceptor)
	s := NewGalleryService(slogdiscard.NewDiscardLogger(), repo, files, testAlt)
	s.now = func() time.Time { return fixedNow }
	return s, repo, files
}

func TestGalleryService_Upload(t *testing.T) {
	ctx := context.Background()
	header := &multipart.FileHeader{Filename: "photo.jpg", Size: 10}
	stored := &uploads.Upload{Filename: "1771576200000-x.jpg", MimeType: "image/jpeg", OriginalName: "photo.jpg", Size: 10}

	t.Run("default alt", func(t *testing.T) {
		s, repo, files := newTestGalleryService()

		files.On("Accept", ctx, header).Return(stored, nil).Once()
		repo.On("SaveGalleryItem", ctx, models.GalleryItem{
			Filename:   stored.Filename,
			MimeType:   "image/jpeg",
			Alt:        testAlt,
			UploadedAt: "2026-02-20T08:30:00Z",
		}).Return(int64(7), nil).Once()

		item, err := s.Upload(ctx, dto.UploadImageInput{File: header})
		require.NoError(t, err)
		assert.Equal(t, int64(7), item.ID)
		assert.Equal(t, testAlt, item.Alt)

		repo.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("custom alt", func(t *testing.T) {
		s, repo, files := newTestGalleryService()

		files.On("Accept", ctx, header).Return(stored, nil).Once()
		repo.On("SaveGalleryItem", ctx, mock.MatchedBy(func(i models.GalleryItem) bool {
			return i.Alt == "பொங்கல் விழா"
		})).Return(int64(8), nil).Once()

		item, err := s.Upload(ctx, dto.UploadImageInput{File: header, Alt: "பொங்கல் விழா"})
		require.NoError(t, err)
		assert.Equal(t, "பொங்கல் விழா", item.Alt)
	})

	t.Run("rejected upload writes no row", func(t *testing.T) {
		s, repo, files := newTestGalleryService()

		files.On("Accept", ctx, header).Return(nil, storage.ErrInvalidFileType).Once()

		_, err := s.Upload(ctx, dto.UploadImageInput{File: header})
		assert.ErrorIs(t, err, storage.ErrInvalidFileType)
		repo.AssertNotCalled(t, "SaveGalleryItem", mock.Anything, mock.Anything)
	})

	t.Run("row failure removes file", func(t *testing.T) {
		s, repo, files := newTestGalleryService()

		files.On("Accept", ctx, header).Return(stored, nil).Once()
		repo.On("SaveGalleryItem", ctx, mock.Anything).Return(int64(0), errors.New("disk I/O error")).Once()
		files.On("Discard", ctx, stored.Filename).Return(nil).Once()

		_, err := s.Upload(ctx, dto.UploadImageInput{File: header})
		assert.Error(t, err)
		files.AssertExpectations(t)
	})
}

func TestGalleryService_DeleteItem(t *testing.T) {
	ctx := context.Background()
	item := models.GalleryItem{ID: 3, Filename: "f.png", MimeType: "image/png"}

	t.Run("success", func(t *testing.T) {
		s, repo, files := newTestGalleryService()

		repo.On("GalleryItem", ctx, int64(3)).Return(item, nil).Once()
		files.On("Discard", ctx, "f.png").Return(nil).Once()
		repo.On("DeleteGalleryItem", ctx, int64(3)).Return(nil).Once()

		require.NoError(t, s.DeleteItem(ctx, 3))
		repo.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		s, repo, files := newTestGalleryService()

		repo.On("GalleryItem", ctx, int64(9)).Return(models.GalleryItem{}, storage.ErrGalleryItemNotFound).Once()

		err := s.DeleteItem(ctx, 9)
		assert.ErrorIs(t, err, storage.ErrGalleryItemNotFound)
		files.AssertNotCalled(t, "Discard", mock.Anything, mock.Anything)
	})

	t.Run("missing file still deletes row", func(t *testing.T) {
		s, repo, files := newTestGalleryService()

		repo.On("GalleryItem", ctx, int64(3)).Return(item, nil).Once()
		files.On("Discard", ctx, "f.png").Return(fmt.Errorf("filestorage.Delete: f.png: %w", storage.ErrFileNotFound)).Once()
		repo.On("DeleteGalleryItem", ctx, int64(3)).Return(nil).Once()

		require.NoError(t, s.DeleteItem(ctx, 3))
		repo.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("file error keeps row", func(t *testing.T) {
		s, repo, files := newTestGalleryService()

		repo.On("GalleryItem", ctx, int64(3)).Return(item, nil).Once()
		files.On("Discard", ctx, "f.png").Return(errors.New("permission denied")).Once()

		err := s.DeleteItem(ctx, 3)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "DeleteGalleryItem", mock.Anything, mock.Anything)
	})
}

func TestGalleryService_ListItems(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newTestGalleryService()

	repo.On("ListGalleryItems", ctx).Return(nil, nil).Once()

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRejectReason(t *testing.T) {
	assert.Equal(t, "no_file", rejectReason(storage.ErrNoFile))
	assert.Equal(t, "too_large", rejectReason(storage.ErrFileTooLarge))
	assert.Equal(t, "invalid_type", rejectReason(storage.ErrInvalidFileType))
	assert.Equal(t, "error", rejectReason(errors.New("x")))
}
