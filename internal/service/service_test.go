package service

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven-server/internal/auth"
	"github.com/bookhaven/bookhaven-server/internal/cache"
	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/kv"
	"github.com/bookhaven/bookhaven-server/internal/lock"
	"github.com/bookhaven/bookhaven-server/internal/store/sqlite"
)

// testEnv bundles the stores and services needed by service tests.
// The raw token keys stay visible so tests can mint tokens with
// different lifetimes against the same keys.
type testEnv struct {
	store      *sqlite.Store
	kv         *kv.Store
	cache      *cache.Cache
	locker     *lock.Locker
	tokens     *auth.TokenService
	accessKey  []byte
	refreshKey []byte
	auth       *AuthService
	books      *BookService
	authors    *AuthorService
	users      *UserService
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	kvStore, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kvStore.Close() })

	accessKey := make([]byte, 32)
	refreshKey := make([]byte, 32)
	_, err = rand.Read(accessKey)
	require.NoError(t, err)
	_, err = rand.Read(refreshKey)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(accessKey, refreshKey, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	c := cache.New(kvStore, time.Hour, nil)
	locker := lock.New(kvStore)

	env := &testEnv{
		store:      st,
		kv:         kvStore,
		cache:      c,
		locker:     locker,
		tokens:     tokens,
		accessKey:  accessKey,
		refreshKey: refreshKey,
		auth:       NewAuthService(st, tokens, nil),
		books:      NewBookService(st, c, locker, nil, 5*time.Second, nil),
		authors:    NewAuthorService(st, c, nil, nil),
		users:      NewUserService(st, c, nil, nil),
	}
	return env
}

// signup registers a user and returns the auth response.
func (e *testEnv) signup(t *testing.T, email, name string) *AuthResponse {
	t.Helper()
	resp, err := e.auth.Signup(context.Background(), SignupRequest{
		Email:    email,
		Password: "correct horse battery staple",
		Name:     name,
	})
	require.NoError(t, err)
	return resp
}

// addAuthor creates an author through the service.
func (e *testEnv) addAuthor(t *testing.T, name string) *domain.Author {
	t.Helper()
	author, err := e.authors.CreateAuthor(context.Background(), CreateAuthorRequest{Name: name})
	require.NoError(t, err)
	return author
}

// addBook creates a book through the service.
func (e *testEnv) addBook(t *testing.T, title, authorID string) *domain.Book {
	t.Helper()
	book, err := e.books.CreateBook(context.Background(), CreateBookRequest{
		Title:    title,
		AuthorID: authorID,
	})
	require.NoError(t, err)
	return book
}
