package domain

import "time"

// BorrowRecord tracks a single loan of a book to a user.
// A record with a nil ReturnedAt is "open": the book is currently out.
// At most one open record may exist per book at any time. Borrow and return
// run under a per-book lock, and the schema backs that up with a partial
// unique index on open records.
// Closed records are kept forever as loan history.
type BorrowRecord struct {
	Entity
	BookID     string     `json:"book_id"`
	UserID     string     `json:"user_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Book       *Book      `json:"book,omitempty"` // Denormalized for borrowed-books views
}

// IsOpen returns true while the book has not been returned.
func (r *BorrowRecord) IsOpen() bool {
	return r.ReturnedAt == nil
}
