package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"agadeepaoli/internal/domain/models"
	"agadeepaoli/internal/lib/logger/sl"
	"agadeepaoli/internal/metrics"
	"agadeepaoli/internal/repository"
	"agadeepaoli/internal/transport/http/dto"
)

const listCacheKeyPrefix = "poems:"

type PoemService struct {
	log           *slog.Logger
	repo          repository.PoemRepository
	cache         *cache.Cache
	defaultAuthor string
	now           func() time.Time

	// gen is bumped on every write; a list read only fills the cache if no
	// write completed while it was reading the store.
	mu  sync.Mutex
	gen uint64
}

// NewPoemService builds the service. A non-positive cacheTTL disables the
// list cache.
func NewPoemService(log *slog.Logger, repo repository.PoemRepository, cacheTTL time.Duration, defaultAuthor string) *PoemService {
	s := &PoemService{
		log:           log,
		repo:          repo,
		defaultAuthor: defaultAuthor,
		now:           time.Now,
	}
	if cacheTTL > 0 {
		s.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

// ListPoems возвращает записи, новые первыми. Empty poemType means no filter.
func (s *PoemService) ListPoems(ctx context.Context, poemType string) ([]models.Poem, error) {
	const op = "service.PoemService.ListPoems"
	log := s.log.With(
		slog.String("op", op),
		slog.String("type", poemType),
	)

	key := listCacheKeyPrefix + poemType
	gen := s.generation()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			metrics.PoemCacheLookups.WithLabelValues("hit").Inc()
			return clonePoems(cached.([]models.Poem)), nil
		}
		metrics.PoemCacheLookups.WithLabelValues("miss").Inc()
	}

	poems, err := s.repo.ListPoems(ctx, models.PoemType(poemType))
	if err != nil {
		log.Error("failed to list poems", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if poems == nil {
		poems = []models.Poem{}
	}

	s.fill(key, gen, poems)

	log.Debug("poems listed", slog.Int("count", len(poems)))
	return poems, nil
}

// CreatePoem applies defaults for author and date, then persists the poem.
func (s *PoemService) CreatePoem(ctx context.Context, req dto.CreatePoemRequest) (models.Poem, error) {
	const op = "service.PoemService.CreatePoem"
	log := s.log.With(
		slog.String("op", op),
		slog.String("title", req.Title),
		slog.String("type", req.Type),
	)

	log.Info("creating poem")

	poem := models.Poem{
		Title:  req.Title,
		Body:   req.Body,
		Author: req.Author,
		Date:   req.Date,
		Type:   models.PoemType(req.Type),
	}
	if poem.Author == "" {
		poem.Author = s.defaultAuthor
	}
	if poem.Date == "" {
		poem.Date = s.now().Format(models.DateLayout)
	}

	if err := poem.Validate(); err != nil {
		log.Warn("poem validation failed", sl.Err(err))
		return models.Poem{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.SavePoem(ctx, poem)
	if err != nil {
		log.Error("failed to save poem", sl.Err(err))
		return models.Poem{}, fmt.Errorf("%s: %w", op, err)
	}
	poem.ID = id

	s.invalidate()
	metrics.PoemsCreated.Inc()

	log.Info("poem created", slog.Int64("id", id))
	return poem, nil
}

func (s *PoemService) DeletePoem(ctx context.Context, id int64) error {
	const op = "service.PoemService.DeletePoem"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	if err := s.repo.DeletePoem(ctx, id); err != nil {
		log.Warn("failed to delete poem", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate()
	metrics.PoemsDeleted.Inc()

	log.Info("poem deleted")
	return nil
}

// Seed inserts the default collection when the store holds no poems.
func (s *PoemService) Seed(ctx context.Context, poems []models.Poem) (int, error) {
	const op = "service.PoemService.Seed"
	log := s.log.With(slog.String("op", op))

	n, err := s.repo.SeedPoemsIfEmpty(ctx, poems)
	if err != nil {
		log.Error("failed to seed poems", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		s.invalidate()
		log.Info("default poems inserted", slog.Int("count", n))
	}

	return n, nil
}

func (s *PoemService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// fill stores poems under key unless a write invalidated the cache after gen
// was taken.
func (s *PoemService) fill(key string, gen uint64, poems []models.Poem) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.cache.SetDefault(key, clonePoems(poems))
}

func (s *PoemService) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cache != nil {
		s.cache.Flush()
	}
}

func clonePoems(in []models.Poem) []models.Poem {
	out := make([]models.Poem, len(in))
	copy(out, in)
	return out
}
