package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookhaven/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven-server/internal/errors"
	"github.com/bookhaven/bookhaven-server/internal/service"
	"github.com/bookhaven/bookhaven-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a paginated book listing with optional filters",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a book to the catalog (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates a book's title and author (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book from the catalog (admin only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "borrowBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/borrow",
		Summary:     "Borrow book",
		Description: "Borrows an available book for the authenticated user",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleBorrowBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "returnBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/return",
		Summary:     "Return book",
		Description: "Returns a book previously borrowed by the authenticated user",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReturnBook)
}

// === DTOs ===

// BookResponse contains book information in API responses.
type BookResponse struct {
	ID         string          `json:"id" doc:"Book ID"`
	Title      string          `json:"title" doc:"Book title"`
	AuthorID   string          `json:"authorId" doc:"Author ID"`
	Author     *AuthorResponse `json:"author,omitempty" doc:"Author details"`
	IsBorrowed bool            `json:"isBorrowed" doc:"Whether the book is currently out"`
	CreatedAt  time.Time       `json:"createdAt" doc:"Creation timestamp"`
	UpdatedAt  time.Time       `json:"updatedAt" doc:"Last update timestamp"`
}

// BorrowRecordResponse contains loan information in API responses.
type BorrowRecordResponse struct {
	ID         string        `json:"id" doc:"Borrow record ID"`
	BookID     string        `json:"bookId" doc:"Borrowed book ID"`
	UserID     string        `json:"userId" doc:"Borrowing user ID"`
	BorrowedAt time.Time     `json:"borrowedAt" doc:"When the loan opened"`
	ReturnedAt *time.Time    `json:"returnedAt,omitempty" doc:"When the loan closed, absent while open"`
	Book       *BookResponse `json:"book,omitempty" doc:"Book details"`
}

// BookInput identifies a single book.
type BookInput struct {
	AuthParams
	ID string `path:"id" doc:"Book ID"`
}

// ListBooksInput carries the listing filters and pagination.
type ListBooksInput struct {
	Page       int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
	Limit      int    `query:"limit" default:"10" minimum:"1" maximum:"100" doc:"Page size"`
	AuthorID   string `query:"authorId" doc:"Filter by author ID"`
	IsBorrowed string `query:"isBorrowed" doc:"Filter by availability (true or false)"`
	Search     string `query:"search" doc:"Case-insensitive title substring"`
}

// GetBookInput identifies a book without requiring credentials.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Title    string `json:"title" doc:"Book title"`
	AuthorID string `json:"authorId" doc:"Author ID"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	AuthParams
	Body BookRequest
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	AuthParams
	ID   string `path:"id" doc:"Book ID"`
	Body BookRequest
}

// BookOutput wraps a single book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookListOutput wraps a paginated book listing for Huma.
type BookListOutput struct {
	Body store.Paginated[BookResponse]
}

// BorrowRecordOutput wraps a borrow record response for Huma.
type BorrowRecordOutput struct {
	Body BorrowRecordResponse
}

func toBookResponse(book *domain.Book) BookResponse {
	resp := BookResponse{
		ID:         book.ID,
		Title:      book.Title,
		AuthorID:   book.AuthorID,
		IsBorrowed: book.IsBorrowed,
		CreatedAt:  book.CreatedAt,
		UpdatedAt:  book.UpdatedAt,
	}
	if book.Author != nil {
		author := toAuthorResponse(book.Author)
		resp.Author = &author
	}
	return resp
}

func toBorrowRecordResponse(record *domain.BorrowRecord) BorrowRecordResponse {
	resp := BorrowRecordResponse{
		ID:         record.ID,
		BookID:     record.BookID,
		UserID:     record.UserID,
		BorrowedAt: record.BorrowedAt,
		ReturnedAt: record.ReturnedAt,
	}
	if record.Book != nil {
		book := toBookResponse(record.Book)
		resp.Book = &book
	}
	return resp
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	req := service.ListBooksRequest{
		Page:     input.Page,
		Limit:    input.Limit,
		AuthorID: input.AuthorID,
		Search:   input.Search,
	}
	if input.IsBorrowed != "" {
		borrowed, err := strconv.ParseBool(input.IsBorrowed)
		if err != nil {
			return nil, domainerrors.Validation("isBorrowed must be true or false")
		}
		req.IsBorrowed = &borrowed
	}

	page, err := s.services.Book.ListBooks(ctx, req)
	if err != nil {
		return nil, err
	}

	items := make([]BookResponse, 0, len(page.Items))
	for _, book := range page.Items {
		items = append(items, toBookResponse(book))
	}

	return &BookListOutput{
		Body: store.Paginated[BookResponse]{
			Items:      items,
			Total:      page.Total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: page.TotalPages,
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.AuthParams); err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, service.CreateBookRequest{
		Title:    input.Body.Title,
		AuthorID: input.Body.AuthorID,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.AuthParams); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, service.UpdateBookRequest{
		Title:    input.Body.Title,
		AuthorID: input.Body.AuthorID,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.AuthParams); err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleBorrowBook(ctx context.Context, input *BookInput) (*BorrowRecordOutput, error) {
	claims, err := s.authenticateRequest(input.AuthParams)
	if err != nil {
		return nil, err
	}

	record, err := s.services.Book.Borrow(ctx, input.ID, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &BorrowRecordOutput{Body: toBorrowRecordResponse(record)}, nil
}

func (s *Server) handleReturnBook(ctx context.Context, input *BookInput) (*BorrowRecordOutput, error) {
	claims, err := s.authenticateRequest(input.AuthParams)
	if err != nil {
		return nil, err
	}

	record, err := s.services.Book.Return(ctx, input.ID, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &BorrowRecordOutput{Body: toBorrowRecordResponse(record)}, nil
}
