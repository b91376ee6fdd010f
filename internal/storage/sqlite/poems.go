package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"agadeepaoli/internal/domain/models"
	"agadeepaoli/internal/storage"
)

// ListPoems returns poems newest first. An empty poemType returns every poem.
func (s *Storage) ListPoems(ctx context.Context, poemType models.PoemType) ([]models.Poem, error) {
	const op = "storage.sqlite.ListPoems"

	builder := s.sb.Select("id", "title", "body", "author", "date", "type").
		From(poemsTable).
		OrderBy("id DESC")

	if poemType != "" {
		builder = builder.Where(sq.Eq{"type": string(poemType)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	poems := make([]models.Poem, 0)
	for rows.Next() {
		var p models.Poem
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Author, &p.Date, &p.Type); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		poems = append(poems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return poems, nil
}

// SavePoem inserts a poem and returns its id. Defaults must already be applied.
func (s *Storage) SavePoem(ctx context.Context, poem models.Poem) (int64, error) {
	const op = "storage.sqlite.SavePoem"

	query, args, err := s.sb.Insert(poemsTable).
		Columns("title", "body", "author", "date", "type").
		Values(poem.Title, poem.Body, poem.Author, poem.Date, string(poem.Type)).
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

func (s *Storage) DeletePoem(ctx context.Context, id int64) error {
	const op = "storage.sqlite.DeletePoem"

	query, args, err := s.sb.Delete(poemsTable).
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
		return fmt.Errorf("%s: %w", op, storage.ErrPoemNotFound)
	}

	return nil
}

// SeedPoemsIfEmpty inserts poems only when the table has no rows and reports
// how many were written. The inserts share one transaction.
func (s *Storage) SeedPoemsIfEmpty(ctx context.Context, poems []models.Poem) (int, error) {
	const op = "storage.sqlite.SeedPoemsIfEmpty"

	query, args, err := s.sb.Select("COUNT(*)").From(poemsTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: count: %w", op, err)
	}
	if count > 0 || len(poems) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range poems {
		query, args, err := s.sb.Insert(poemsTable).
			Columns("title", "body", "author", "date", "type").
			Values(p.Title, p.Body, p.Author, p.Date, string(p.Type)).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("%s: insert %q: %w", op, p.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return len(poems), nil
}
