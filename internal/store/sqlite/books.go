package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Books are always read joined with their author so handlers never need a
// second round trip. Must match the scan order in scanBook.
const bookColumns = `b.id, b.created_at, b.updated_at, b.title, b.author_id, b.is_borrowed,
	a.id, a.created_at, a.updated_at, a.name, a.bio`

const bookFrom = ` FROM books b JOIN authors a ON a.id = b.author_id`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book
// with its author populated.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book
	var a domain.Author

	var (
		createdAt       string
		updatedAt       string
		isBorrowed      int
		authorCreatedAt string
		authorUpdatedAt string
		authorBio       sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&b.AuthorID,
		&isBorrowed,
		&a.ID,
		&authorCreatedAt,
		&authorUpdatedAt,
		&a.Name,
		&authorBio,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	b.IsBorrowed = isBorrowed != 0

	a.CreatedAt, err = parseTime(authorCreatedAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(authorUpdatedAt)
	if err != nil {
		return nil, err
	}
	if authorBio.Valid {
		a.Bio = authorBio.String
	}

	b.Author = &a
	return &b, nil
}

// CreateBook inserts a new book.
// Returns store.ErrNotFound if the referenced author does not exist and
// store.ErrAlreadyExists if the book ID is taken.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, created_at, updated_at, title, author_id, is_borrowed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		book.AuthorID,
		boolToInt(book.IsBorrowed),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ID with its author populated.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+bookFrom+` WHERE b.id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns a page of books matching the filter, newest first.
func (s *Store) ListBooks(ctx context.Context, filter store.BookFilter, p store.Pagination) (store.Paginated[*domain.Book], error) {
	var zero store.Paginated[*domain.Book]
	p.Validate()

	where, args := buildBookFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*)` + bookFrom + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return zero, err
	}

	query := `SELECT ` + bookColumns + bookFrom + where +
		` ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, p.Limit, p.Offset())...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return zero, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}

	return store.NewPaginated(books, total, p), nil
}

// buildBookFilter renders a BookFilter as a WHERE clause and its arguments.
func buildBookFilter(filter store.BookFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.AuthorID != "" {
		conds = append(conds, "b.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if filter.IsBorrowed != nil {
		conds = append(conds, "b.is_borrowed = ?")
		args = append(args, boolToInt(*filter.IsBorrowed))
	}
	if filter.Search != "" {
		conds = append(conds, `b.title LIKE ? ESCAPE '\' COLLATE NOCASE`)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike escapes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// UpdateBook updates a book's title and author.
// The is_borrowed flag is owned by BorrowBook/ReturnBook and never touched here.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?,
			title = ?,
			author_id = ?
		WHERE id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		book.AuthorID,
		book.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteBook removes a book and its borrow history.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
