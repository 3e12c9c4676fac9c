package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/store"
)

// authorColumns is the ordered list of columns selected in author queries.
// Must match the scan order in scanAuthor.
const authorColumns = `id, created_at, updated_at, name, bio`

// scanAuthor scans a sql.Row (or sql.Rows via its Scan method) into a domain.Author.
func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*domain.Author, error) {
	var a domain.Author

	var (
		createdAt string
		updatedAt string
		bio       sql.NullString
	)

	err := scanner.Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
		&a.Name,
		&bio,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if bio.Valid {
		a.Bio = bio.String
	}

	return &a, nil
}

// CreateAuthor inserts a new author.
// Returns store.ErrAlreadyExists if the author ID already exists.
func (s *Store) CreateAuthor(ctx context.Context, author *domain.Author) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, created_at, updated_at, name, bio)
		VALUES (?, ?, ?, ?, ?)`,
		author.ID,
		formatTime(author.CreatedAt),
		formatTime(author.UpdatedAt),
		author.Name,
		nullString(author.Bio),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetAuthor retrieves an author by ID.
// Returns store.ErrNotFound if the author does not exist.
func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE id = ?`, id)

	a, err := scanAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAuthors returns all authors ordered by name.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+authorColumns+` FROM authors ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}

// UpdateAuthor performs a full row update on an existing author.
// Returns store.ErrNotFound if the author does not exist.
func (s *Store) UpdateAuthor(ctx context.Context, author *domain.Author) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE authors SET
			updated_at = ?,
			name = ?,
			bio = ?
		WHERE id = ?`,
		formatTime(author.UpdatedAt),
		author.Name,
		nullString(author.Bio),
		author.ID,
	)
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

// DeleteAuthor removes an author. Books referencing the author are removed
// by the ON DELETE CASCADE constraint.
// Returns store.ErrNotFound if the author does not exist.
func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, id)
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
