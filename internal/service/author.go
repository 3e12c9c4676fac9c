package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookhaven/bookhaven-server/internal/cache"
	"github.com/bookhaven/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven-server/internal/errors"
	"github.com/bookhaven/bookhaven-server/internal/id"
	"github.com/bookhaven/bookhaven-server/internal/metrics"
	"github.com/bookhaven/bookhaven-server/internal/store"
	"github.com/bookhaven/bookhaven-server/internal/store/sqlite"
)

// AuthorService handles the author catalog with cache-aside reads.
type AuthorService struct {
	store   *sqlite.Store
	cache   *cache.Cache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAuthorService creates a new author service.
func NewAuthorService(st *sqlite.Store, c *cache.Cache, recorder metrics.Recorder, logger *slog.Logger) *AuthorService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &AuthorService{
		store:   st,
		cache:   c,
		metrics: recorder,
		logger:  logger,
	}
}

// CreateAuthorRequest contains new author data.
type CreateAuthorRequest struct {
	Name string `json:"name" validate:"required"`
	Bio  string `json:"bio"`
}

// UpdateAuthorRequest contains updated author data.
type UpdateAuthorRequest struct {
	Name string `json:"name" validate:"required"`
	Bio  string `json:"bio"`
}

// CreateAuthor adds an author to the catalog.
func (s *AuthorService) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*domain.Author, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, fmt.Errorf("generate author ID: %w", err)
	}

	author := &domain.Author{
		Entity: domain.Entity{ID: authorID},
		Name:   req.Name,
		Bio:    req.Bio,
	}
	author.InitTimestamps()

	if err := s.store.CreateAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}

	s.cache.Delete(cache.AuthorListKey)

	return author, nil
}

// GetAuthor returns an author by ID, serving from cache when possible.
func (s *AuthorService) GetAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	key := cache.AuthorDetailKey(authorID)

	var cached domain.Author
	if s.cache.Get(key, &cached) {
		s.metrics.RecordCacheHit("authors")
		return &cached, nil
	}
	s.metrics.RecordCacheMiss("authors")

	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("author not found")
		}
		return nil, fmt.Errorf("get author: %w", err)
	}

	s.cache.Set(key, author)
	return author, nil
}

// ListAuthors returns all authors, serving from cache when possible.
func (s *AuthorService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	var cached []*domain.Author
	if s.cache.Get(cache.AuthorListKey, &cached) {
		s.metrics.RecordCacheHit("authors")
		return cached, nil
	}
	s.metrics.RecordCacheMiss("authors")

	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	s.cache.Set(cache.AuthorListKey, authors)
	return authors, nil
}

// UpdateAuthor changes an author's name or bio.
func (s *AuthorService) UpdateAuthor(ctx context.Context, authorID string, req UpdateAuthorRequest) (*domain.Author, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("author not found")
		}
		return nil, fmt.Errorf("get author: %w", err)
	}

	author.Name = req.Name
	author.Bio = req.Bio
	author.Touch()

	if err := s.store.UpdateAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("update author: %w", err)
	}

	s.invalidateAuthor(authorID)
	// Books embed their author, so listings and details are stale too.
	s.cache.DeletePrefix(cache.BookDetailPrefix)
	s.cache.DeletePrefix(cache.BookListPrefix)

	return author, nil
}

// DeleteAuthor removes an author and, via cascade, their books.
func (s *AuthorService) DeleteAuthor(ctx context.Context, authorID string) error {
	if err := s.store.DeleteAuthor(ctx, authorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("author not found")
		}
		return fmt.Errorf("delete author: %w", err)
	}

	s.invalidateAuthor(authorID)
	// The cascade may have removed books anywhere in the cache.
	s.cache.DeletePrefix(cache.BookDetailPrefix)
	s.cache.DeletePrefix(cache.BookListPrefix)
	s.cache.DeletePrefix(cache.UserBorrowedPrefix)

	return nil
}

func (s *AuthorService) invalidateAuthor(authorID string) {
	s.cache.Delete(cache.AuthorDetailKey(authorID))
	s.cache.Delete(cache.AuthorListKey)
}
