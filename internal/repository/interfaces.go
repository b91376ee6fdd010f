package repository

import (
	"context"

	"agadeepaoli/internal/domain/models"
)

type PoemRepository interface {
	ListPoems(ctx context.Context, poemType models.PoemType) ([]models.Poem, error)
	SavePoem(ctx context.Context, poem models.Poem) (int64, error)
	DeletePoem(ctx context.Context, id int64) error
	SeedPoemsIfEmpty(ctx context.Context, poems []models.Poem) (int, error)
}

type GalleryRepository interface {
	ListGalleryItems(ctx context.Context) ([]models.GalleryItem, error)
	GalleryItem(ctx context.Context, id int64) (models.GalleryItem, error)
	SaveGalleryItem(ctx context.Context, item models.GalleryItem) (int64, error)
	DeleteGalleryItem(ctx context.Context, id int64) error
}
