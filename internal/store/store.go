// Package store defines the persistence contract shared by storage backends.
package store

import "errors"

// Sentinel errors returned by storage backends. Services translate these
// into user-facing domain errors.
var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrAlreadyBorrowed is returned when a borrow targets a book whose
	// availability flag is already set.
	ErrAlreadyBorrowed = errors.New("store: book already borrowed")
	// ErrNotBorrowed is returned when a return targets a book with no
	// open borrow record.
	ErrNotBorrowed = errors.New("store: book not borrowed")
	// ErrNotOwner is returned when a return targets a book whose open
	// borrow record belongs to a different user.
	ErrNotOwner = errors.New("store: borrow record owned by another user")
)

// Pagination carries page-numbered pagination parameters.
type Pagination struct {
	Page  int
	Limit int
}

// Validate clamps pagination parameters to sane bounds.
func (p *Pagination) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginated wraps a page of items with count metadata.
type Paginated[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPaginated assembles a Paginated result, deriving TotalPages.
func NewPaginated[T any](items []T, total int, p Pagination) Paginated[T] {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}

// BookFilter narrows book listings. Zero values mean "no constraint".
type BookFilter struct {
	AuthorID   string
	IsBorrowed *bool
	// Search matches case-insensitively against title substrings.
	Search string
}
