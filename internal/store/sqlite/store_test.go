package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/id"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedAuthor inserts an author for tests that need one.
func seedAuthor(t *testing.T, s *Store, name string) *domain.Author {
	t.Helper()
	author := &domain.Author{
		Entity: domain.Entity{ID: id.MustGenerate("author")},
		Name:   name,
	}
	author.InitTimestamps()
	if err := s.CreateAuthor(context.Background(), author); err != nil {
		t.Fatalf("seed author: %v", err)
	}
	return author
}

// seedBook inserts a book for tests that need one.
func seedBook(t *testing.T, s *Store, title, authorID string) *domain.Book {
	t.Helper()
	book := &domain.Book{
		Entity:   domain.Entity{ID: id.MustGenerate("book")},
		Title:    title,
		AuthorID: authorID,
	}
	book.InitTimestamps()
	if err := s.CreateBook(context.Background(), book); err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return book
}

// seedUser inserts a user for tests that need one.
func seedUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Entity:       domain.Entity{ID: id.MustGenerate("user")},
		Email:        email,
		PasswordHash: "hashed",
		Name:         "Test User",
		Role:         domain.RoleUser,
	}
	user.InitTimestamps()
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{"users", "authors", "books", "borrow_records"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	defer s2.Close()
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Now()
	parsed, err := parseTime(formatTime(now))
	if err != nil {
		t.Fatalf("parse formatted time: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("round trip changed time: %v != %v", parsed, now)
	}
}
