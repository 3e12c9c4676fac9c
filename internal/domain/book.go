package domain

// Book represents a catalog entry that can be borrowed by one user at a time.
//
// IsBorrowed is a denormalized projection of whether an open BorrowRecord
// exists for the book. The availability engine in the service layer is
// responsible for keeping the two in agreement; nothing else may flip it.
type Book struct {
	Entity
	Title      string  `json:"title"`
	AuthorID   string  `json:"author_id"`
	IsBorrowed bool    `json:"is_borrowed"`
	Author     *Author `json:"author,omitempty"` // Denormalized for responses, not stored on the book row
}
