package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookhaven/bookhaven-server/internal/cache"
	"github.com/bookhaven/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven-server/internal/errors"
	"github.com/bookhaven/bookhaven-server/internal/id"
	"github.com/bookhaven/bookhaven-server/internal/lock"
	"github.com/bookhaven/bookhaven-server/internal/metrics"
	"github.com/bookhaven/bookhaven-server/internal/store"
	"github.com/bookhaven/bookhaven-server/internal/store/sqlite"
)

// BookService handles the book catalog and the borrow/return transitions.
//
// Reads go cache-first with the catalog database as the source of truth.
// Borrow and return serialize through a per-book TTL lock so concurrent
// requests against the same book resolve to exactly one winner.
type BookService struct {
	store   *sqlite.Store
	cache   *cache.Cache
	locker  *lock.Locker
	metrics metrics.Recorder
	lockTTL time.Duration
	logger  *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(
	st *sqlite.Store,
	c *cache.Cache,
	locker *lock.Locker,
	recorder metrics.Recorder,
	lockTTL time.Duration,
	logger *slog.Logger,
) *BookService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &BookService{
		store:   st,
		cache:   c,
		locker:  locker,
		metrics: recorder,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

// CreateBookRequest contains new book data.
type CreateBookRequest struct {
	Title    string `json:"title" validate:"required"`
	AuthorID string `json:"authorId" validate:"required"`
}

// UpdateBookRequest contains updated book data.
type UpdateBookRequest struct {
	Title    string `json:"title" validate:"required"`
	AuthorID string `json:"authorId" validate:"required"`
}

// ListBooksRequest narrows and pages a book listing.
type ListBooksRequest struct {
	Page       int
	Limit      int
	AuthorID   string
	IsBorrowed *bool
	Search     string
}

// CreateBook adds a book to the catalog.
func (s *BookService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Entity:   domain.Entity{ID: bookID},
		Title:    req.Title,
		AuthorID: req.AuthorID,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("author not found")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.cache.DeletePrefix(cache.BookListPrefix)

	// Re-read so the response carries the author.
	return s.store.GetBook(ctx, bookID)
}

// GetBook returns a book by ID, serving from cache when possible.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	key := cache.BookDetailKey(bookID)

	var cached domain.Book
	if s.cache.Get(key, &cached) {
		s.metrics.RecordCacheHit("books")
		return &cached, nil
	}
	s.metrics.RecordCacheMiss("books")

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	s.cache.Set(key, book)
	return book, nil
}

// ListBooks returns a filtered page of books, serving from cache when possible.
func (s *BookService) ListBooks(ctx context.Context, req ListBooksRequest) (store.Paginated[*domain.Book], error) {
	p := store.Pagination{Page: req.Page, Limit: req.Limit}
	p.Validate()

	filter := store.BookFilter{
		AuthorID:   req.AuthorID,
		IsBorrowed: req.IsBorrowed,
		Search:     req.Search,
	}

	key := bookListKey(filter, p)

	var cached store.Paginated[*domain.Book]
	if s.cache.Get(key, &cached) {
		s.metrics.RecordCacheHit("books")
		return cached, nil
	}
	s.metrics.RecordCacheMiss("books")

	result, err := s.store.ListBooks(ctx, filter, p)
	if err != nil {
		return result, fmt.Errorf("list books: %w", err)
	}

	s.cache.Set(key, result)
	return result, nil
}

// bookListKey renders a listing query as a cache key. Every parameter that
// changes the result set must appear here.
func bookListKey(filter store.BookFilter, p store.Pagination) string {
	borrowed := ""
	if filter.IsBorrowed != nil {
		borrowed = fmt.Sprintf("%t", *filter.IsBorrowed)
	}
	return fmt.Sprintf("%s%d:%d:%s:%s:%s",
		cache.BookListPrefix, p.Page, p.Limit, filter.AuthorID, borrowed, filter.Search)
}

// UpdateBook changes a book's title or author.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	book.Title = req.Title
	book.AuthorID = req.AuthorID
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("author not found")
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.invalidateBook(bookID)

	return s.store.GetBook(ctx, bookID)
}

// DeleteBook removes a book and its borrow history.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}

	s.invalidateBook(bookID)
	// A deleted book may still sit in cached borrow lists.
	s.cache.DeletePrefix(cache.UserBorrowedPrefix)

	return nil
}

// Borrow checks the book out to the user.
//
// The transition runs under the book's borrow lock: acquire, verify, flip,
// release. Lock contention surfaces as RESOURCE_BUSY so clients know to
// retry, as opposed to CONFLICT which means the book is genuinely out.
func (s *BookService) Borrow(ctx context.Context, bookID, userID string) (*domain.BorrowRecord, error) {
	start := time.Now()

	lockKey := lock.BookBorrowKey(bookID)
	acquired, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire borrow lock: %w", err)
	}
	if !acquired {
		s.metrics.RecordLockContended()
		return nil, domainerrors.ResourceBusy("book is being processed, try again")
	}
	s.metrics.RecordLockAcquired()
	defer func() {
		if err := s.locker.Release(ctx, lockKey); err != nil && s.logger != nil {
			s.logger.Warn("failed to release borrow lock", "key", lockKey, "error", err)
		}
	}()

	recordID, err := id.Generate("borrow")
	if err != nil {
		return nil, fmt.Errorf("generate borrow ID: %w", err)
	}

	now := time.Now()
	record := &domain.BorrowRecord{
		Entity:     domain.Entity{ID: recordID},
		BookID:     bookID,
		UserID:     userID,
		BorrowedAt: now,
	}
	record.InitTimestamps()

	if err := s.store.BorrowBook(ctx, record); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, domainerrors.NotFound("book not found")
		case errors.Is(err, store.ErrAlreadyBorrowed):
			return nil, domainerrors.Conflict("book is already borrowed")
		default:
			return nil, fmt.Errorf("borrow book: %w", err)
		}
	}

	s.invalidateBook(bookID)
	s.cache.Delete(cache.UserBorrowedKey(userID))

	s.metrics.RecordBorrow()
	s.metrics.RecordBorrowLatency(time.Since(start))

	if s.logger != nil {
		s.logger.Info("Book borrowed", "book_id", bookID, "user_id", userID)
	}

	return record, nil
}

// Return hands the book back.
//
// Runs under the same lock key as Borrow so the two transitions serialize
// against each other. Only the borrower may return; anyone else gets
// FORBIDDEN.
func (s *BookService) Return(ctx context.Context, bookID, userID string) (*domain.BorrowRecord, error) {
	start := time.Now()

	lockKey := lock.BookBorrowKey(bookID)
	acquired, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire borrow lock: %w", err)
	}
	if !acquired {
		s.metrics.RecordLockContended()
		return nil, domainerrors.ResourceBusy("book is being processed, try again")
	}
	s.metrics.RecordLockAcquired()
	defer func() {
		if err := s.locker.Release(ctx, lockKey); err != nil && s.logger != nil {
			s.logger.Warn("failed to release borrow lock", "key", lockKey, "error", err)
		}
	}()

	record, err := s.store.ReturnBook(ctx, bookID, userID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, domainerrors.NotFound("book not found")
		case errors.Is(err, store.ErrNotBorrowed):
			return nil, domainerrors.Conflict("book is not currently borrowed")
		case errors.Is(err, store.ErrNotOwner):
			return nil, domainerrors.Forbidden("book was borrowed by another user")
		default:
			return nil, fmt.Errorf("return book: %w", err)
		}
	}

	s.invalidateBook(bookID)
	s.cache.Delete(cache.UserBorrowedKey(userID))

	s.metrics.RecordReturn()
	s.metrics.RecordBorrowLatency(time.Since(start))

	if s.logger != nil {
		s.logger.Info("Book returned", "book_id", bookID, "user_id", userID)
	}

	return record, nil
}

// invalidateBook drops every cache entry that may show the book.
func (s *BookService) invalidateBook(bookID string) {
	s.cache.Delete(cache.BookDetailKey(bookID))
	s.cache.DeletePrefix(cache.BookListPrefix)
}
