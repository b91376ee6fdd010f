package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agadeepaoli/internal/domain/models"
	"agadeepaoli/internal/storage"
)

func setupTestStore(t *testing.T) (*Storage, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "uploads", "site.db")
	s, err := New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func fakePoem(poemType models.PoemType) models.Poem {
	return models.Poem{
		Title:  gofakeit.Sentence(3),
		Body:   gofakeit.Paragraph(2, 3, 8, "\n"),
		Author: gofakeit.Name(),
		Date:   gofakeit.Date().Format(models.DateLayout),
		Type:   poemType,
	}
}

func TestNew_CreatesFileAndDirectory(t *testing.T) {
	_, path := setupTestStore(t)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestNew_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.db")
	junk := bytes.Repeat([]byte("this is not a database file\n"), 200)
	require.NoError(t, os.WriteFile(path, junk, 0o644))

	s, err := New(context.Background(), path)
	require.Error(t, err)
	assert.Nil(t, s)

	var openErr *storage.OpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, path, openErr.Path)
}

func TestNew_ReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "site.db")

	for i := 0; i < 3; i++ {
		s, err := New(ctx, path)
		require.NoError(t, err, "open #%d", i)
		require.NoError(t, s.Close())
	}
}

func TestMigrate_AddsMimeTypeColumn(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE gallery_images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		alt TEXT,
		uploaded_at TEXT NOT NULL DEFAULT ''
	)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO gallery_images (filename, alt, uploaded_at) VALUES ('old.jpg', NULL, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := New(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	items, err := s.ListGalleryItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "old.jpg", items[0].Filename)
	assert.Equal(t, models.DefaultMimeType, items[0].MimeType)
	assert.Equal(t, "", items[0].Alt)
}

func TestPoems_SaveListDelete(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	first := fakePoem(models.PoemTypeKavithai)
	second := fakePoem(models.PoemTypeKaturai)
	third := fakePoem(models.PoemTypeKavithai)

	var ids []int64
	for _, p := range []models.Poem{first, second, third} {
		id, err := s.SavePoem(ctx, p)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	t.Run("newest first", func(t *testing.T) {
		poems, err := s.ListPoems(ctx, "")
		require.NoError(t, err)
		require.Len(t, poems, 3)
		assert.Equal(t, ids[2], poems[0].ID)
		assert.Equal(t, ids[1], poems[1].ID)
		assert.Equal(t, ids[0], poems[2].ID)
		assert.Equal(t, third.Title, poems[0].Title)
		assert.Equal(t, third.Body, poems[0].Body)
	})

	t.Run("type filter", func(t *testing.T) {
		poems, err := s.ListPoems(ctx, models.PoemTypeKavithai)
		require.NoError(t, err)
		require.Len(t, poems, 2)
		for _, p := range poems {
			assert.Equal(t, models.PoemTypeKavithai, p.Type)
		}

		poems, err = s.ListPoems(ctx, models.PoemTypeKaturai)
		require.NoError(t, err)
		require.Len(t, poems, 1)
		assert.Equal(t, second.Title, poems[0].Title)
	})

	t.Run("unknown type yields empty list", func(t *testing.T) {
		poems, err := s.ListPoems(ctx, "haiku")
		require.NoError(t, err)
		assert.NotNil(t, poems)
		assert.Empty(t, poems)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeletePoem(ctx, ids[1]))

		poems, err := s.ListPoems(ctx, "")
		require.NoError(t, err)
		assert.Len(t, poems, 2)

		err = s.DeletePoem(ctx, ids[1])
		assert.ErrorIs(t, err, storage.ErrPoemNotFound)
	})

	t.Run("ids are not reused", func(t *testing.T) {
		require.NoError(t, s.DeletePoem(ctx, ids[2]))

		id, err := s.SavePoem(ctx, fakePoem(models.PoemTypeKaturai))
		require.NoError(t, err)
		assert.Greater(t, id, ids[2])
	})
}

func TestPoems_DeleteUnknown(t *testing.T) {
	s, _ := setupTestStore(t)

	err := s.DeletePoem(context.Background(), 999999)
	assert.ErrorIs(t, err, storage.ErrPoemNotFound)
}

func TestPoems_Unicode(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := models.Poem{
		Title:  "அகத்தின் அழகு",
		Body:   "முகத்தில் தெரியும்\nமனதின் ஒளி",
		Author: "சந்திரசேகர் P",
		Date:   "2026-02-20",
		Type:   models.PoemTypeKavithai,
	}
	_, err := s.SavePoem(ctx, p)
	require.NoError(t, err)

	poems, err := s.ListPoems(ctx, "")
	require.NoError(t, err)
	require.Len(t, poems, 1)
	assert.Equal(t, p.Title, poems[0].Title)
	assert.Equal(t, p.Body, poems[0].Body)
	assert.Equal(t, p.Author, poems[0].Author)
}

func TestSeedPoemsIfEmpty(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	seed := []models.Poem{fakePoem(models.PoemTypeKavithai), fakePoem(models.PoemTypeKaturai)}

	n, err := s.SeedPoemsIfEmpty(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.SeedPoemsIfEmpty(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	poems, err := s.ListPoems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, poems, 2)
}

func TestSeedPoemsIfEmpty_SkipsWhenUserDeletedAllButOne(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.SavePoem(ctx, fakePoem(models.PoemTypeKaturai))
	require.NoError(t, err)

	n, err := s.SeedPoemsIfEmpty(ctx, []models.Poem{fakePoem(models.PoemTypeKavithai)})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGallery_SaveGetListDelete(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	first := models.GalleryItem{Filename: "1700000000000-a.jpg", MimeType: "image/jpeg", Alt: "விழா", UploadedAt: "2026-02-20T10:00:00Z"}
	second := models.GalleryItem{Filename: "1700000000001-b.pdf", MimeType: "application/pdf", Alt: "report", UploadedAt: "2026-02-21T10:00:00Z"}

	id1, err := s.SaveGalleryItem(ctx, first)
	require.NoError(t, err)
	id2, err := s.SaveGalleryItem(ctx, second)
	require.NoError(t, err)

	got, err := s.GalleryItem(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, first.Filename, got.Filename)
	assert.Equal(t, first.MimeType, got.MimeType)
	assert.Equal(t, first.Alt, got.Alt)
	assert.Equal(t, first.UploadedAt, got.UploadedAt)

	items, err := s.ListGalleryItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, id2, items[0].ID)
	assert.Equal(t, id1, items[1].ID)

	require.NoError(t, s.DeleteGalleryItem(ctx, id1))

	_, err = s.GalleryItem(ctx, id1)
	assert.ErrorIs(t, err, storage.ErrGalleryItemNotFound)

	err = s.DeleteGalleryItem(ctx, id1)
	assert.ErrorIs(t, err, storage.ErrGalleryItemNotFound)
}

func TestGallery_EmptyList(t *testing.T) {
	s, _ := setupTestStore(t)

	items, err := s.ListGalleryItems(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDurability_AcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "site.db")

	s, err := New(ctx, path)
	require.NoError(t, err)

	poem := fakePoem(models.PoemTypeKavithai)
	poemID, err := s.SavePoem(ctx, poem)
	require.NoError(t, err)

	itemID, err := s.SaveGalleryItem(ctx, models.GalleryItem{Filename: "x.png", MimeType: "image/png", Alt: "x", UploadedAt: "2026-01-01T00:00:00Z"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := New(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	poems, err := reopened.ListPoems(ctx, "")
	require.NoError(t, err)
	require.Len(t, poems, 1)
	assert.Equal(t, poemID, poems[0].ID)
	assert.Equal(t, poem.Title, poems[0].Title)

	item, err := reopened.GalleryItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, "x.png", item.Filename)
	assert.Equal(t, "image/png", item.MimeType)
}

func TestPing(t *testing.T) {
	s, _ := setupTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
