package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookhaven/bookhaven-server/internal/cache"
	"github.com/bookhaven/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven-server/internal/errors"
	"github.com/bookhaven/bookhaven-server/internal/metrics"
	"github.com/bookhaven/bookhaven-server/internal/store"
	"github.com/bookhaven/bookhaven-server/internal/store/sqlite"
)

// UserService handles user profile and borrow history reads.
type UserService struct {
	store   *sqlite.Store
	cache   *cache.Cache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st *sqlite.Store, c *cache.Cache, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &UserService{
		store:   st,
		cache:   c,
		metrics: recorder,
		logger:  logger,
	}
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns a page of registered users. Admin only; the handler gates it.
func (s *UserService) ListUsers(ctx context.Context, p store.Pagination) (store.Paginated[*domain.User], error) {
	page, err := s.store.ListUsers(ctx, p)
	if err != nil {
		return store.Paginated[*domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}

// BorrowedBooks returns the user's currently open borrows with their books,
// serving from cache when possible.
func (s *UserService) BorrowedBooks(ctx context.Context, userID string) ([]*domain.BorrowRecord, error) {
	key := cache.UserBorrowedKey(userID)

	var cached []*domain.BorrowRecord
	if s.cache.Get(key, &cached) {
		s.metrics.RecordCacheHit("borrows")
		return cached, nil
	}
	s.metrics.RecordCacheMiss("borrows")

	records, err := s.store.ListBorrowsByUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list borrowed books: %w", err)
	}

	s.cache.Set(key, records)
	return records, nil
}

// BorrowHistory returns all of the user's borrow records, open and closed.
func (s *UserService) BorrowHistory(ctx context.Context, userID string) ([]*domain.BorrowRecord, error) {
	records, err := s.store.ListBorrowsByUser(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("list borrow history: %w", err)
	}
	return records, nil
}
