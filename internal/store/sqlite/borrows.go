package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/store"
)

// borrowColumns is the ordered list of columns selected in borrow queries.
// Must match the scan order in scanBorrowRecord.
const borrowColumns = `id, created_at, updated_at, book_id, user_id, borrowed_at, returned_at`

// scanBorrowRecord scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.BorrowRecord.
func scanBorrowRecord(scanner interface{ Scan(dest ...any) error }) (*domain.BorrowRecord, error) {
	var r domain.BorrowRecord

	var (
		createdAt  string
		updatedAt  string
		borrowedAt string
		returnedAt sql.NullString
	)

	err := scanner.Scan(
		&r.ID,
		&createdAt,
		&updatedAt,
		&r.BookID,
		&r.UserID,
		&borrowedAt,
		&returnedAt,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	r.BorrowedAt, err = parseTime(borrowedAt)
	if err != nil {
		return nil, err
	}
	r.ReturnedAt, err = parseNullableTime(returnedAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// BorrowBook marks the book borrowed and creates the given open borrow
// record in a single transaction. The availability flag and the record
// either both change or neither does.
//
// Returns store.ErrNotFound if the book does not exist and
// store.ErrAlreadyBorrowed if it is already out.
func (s *Store) BorrowBook(ctx context.Context, record *domain.BorrowRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin borrow tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var isBorrowed int
	err = tx.QueryRowContext(ctx,
		`SELECT is_borrowed FROM books WHERE id = ?`, record.BookID).Scan(&isBorrowed)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	if isBorrowed != 0 {
		return store.ErrAlreadyBorrowed
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE books SET is_borrowed = 1, updated_at = ? WHERE id = ? AND is_borrowed = 0`,
		formatTime(record.BorrowedAt), record.BookID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrAlreadyBorrowed
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO borrow_records (id, created_at, updated_at, book_id, user_id, borrowed_at, returned_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		record.ID,
		formatTime(record.CreatedAt),
		formatTime(record.UpdatedAt),
		record.BookID,
		record.UserID,
		formatTime(record.BorrowedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			// The partial unique index caught a second open record.
			return store.ErrAlreadyBorrowed
		}
		return err
	}

	return tx.Commit()
}

// ReturnBook closes the open borrow record for the book and clears the
// availability flag in a single transaction. Returns the closed record.
//
// Returns store.ErrNotFound if the book does not exist,
// store.ErrNotBorrowed if no borrow is open, and store.ErrNotOwner if the
// open borrow belongs to a different user.
func (s *Store) ReturnBook(ctx context.Context, bookID, userID string, returnedAt time.Time) (*domain.BorrowRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin return tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE id = ?`, bookID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, store.ErrNotFound
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+borrowColumns+` FROM borrow_records WHERE book_id = ? AND returned_at IS NULL`, bookID)
	record, err := scanBorrowRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotBorrowed
	}
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, store.ErrNotOwner
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE borrow_records SET returned_at = ?, updated_at = ? WHERE id = ?`,
		formatTime(returnedAt), formatTime(returnedAt), record.ID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE books SET is_borrowed = 0, updated_at = ? WHERE id = ?`,
		formatTime(returnedAt), bookID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	record.ReturnedAt = &returnedAt
	record.UpdatedAt = returnedAt
	return record, nil
}

// GetOpenBorrowRecord returns the open borrow record for a book.
// Returns store.ErrNotFound if no borrow is open.
func (s *Store) GetOpenBorrowRecord(ctx context.Context, bookID string) (*domain.BorrowRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+borrowColumns+` FROM borrow_records WHERE book_id = ? AND returned_at IS NULL`, bookID)

	record, err := scanBorrowRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListBorrowsByUser returns a user's borrow records, newest first.
// When openOnly is set, only currently open borrows are returned, each with
// its book populated.
func (s *Store) ListBorrowsByUser(ctx context.Context, userID string, openOnly bool) ([]*domain.BorrowRecord, error) {
	query := `SELECT ` + borrowColumns + ` FROM borrow_records WHERE user_id = ?`
	if openOnly {
		query += ` AND returned_at IS NULL`
	}
	query += ` ORDER BY borrowed_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*domain.BorrowRecord{}
	for rows.Next() {
		r, err := scanBorrowRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Populate books for display. Borrow lists are short so the extra
	// queries stay cheap.
	for _, r := range records {
		book, err := s.GetBook(ctx, r.BookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		r.Book = book
	}

	return records, nil
}
