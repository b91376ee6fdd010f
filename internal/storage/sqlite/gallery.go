package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"agadeepaoli/internal/domain/models"
	"agadeepaoli/internal/storage"
)

var galleryColumns = []string{"id", "filename", "mimetype", "alt", "uploaded_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGalleryItem(row rowScanner) (models.GalleryItem, error) {
	var (
		item models.GalleryItem
		alt  sql.NullString
	)
	if err := row.Scan(&item.ID, &item.Filename, &item.MimeType, &alt, &item.UploadedAt); err != nil {
		return models.GalleryItem{}, err
	}
	item.Alt = alt.String
	return item, nil
}

// ListGalleryItems returns every gallery item newest first.
func (s *Storage) ListGalleryItems(ctx context.Context) ([]models.GalleryItem, error) {
	const op = "storage.sqlite.ListGalleryItems"

	query, args, err := s.sb.Select(galleryColumns...).
		From(galleryTable).
		OrderBy("id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.GalleryItem, 0)
	for rows.Next() {
		item, err := scanGalleryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (s *Storage) GalleryItem(ctx context.Context, id int64) (models.GalleryItem, error) {
	const op = "storage.sqlite.GalleryItem"

	query, args, err := s.sb.Select(galleryColumns...).
		From(galleryTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	item, err := scanGalleryItem(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryItemNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func (s *Storage) SaveGalleryItem(ctx context.Context, item models.GalleryItem) (int64, error) {
	const op = "storage.sqlite.SaveGalleryItem"

	query, args, err := s.sb.Insert(galleryTable).
		Columns("filename", "mimetype", "alt", "uploaded_at").
		Values(item.Filename, item.MimeType, item.Alt, item.UploadedAt).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return id, nil
}

func (s *Storage) DeleteGalleryItem(ctx context.Context, id int64) error {
	const op = "storage.sqlite.DeleteGalleryItem"

	query, args, err := s.sb.Delete(galleryTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryItemNotFound)
	}

	return nil
}
