// Package main provides a tool to seed the catalog database.
//
// It creates an admin account and, optionally, a small sample catalog of
// authors and books for local development.
//
// Usage:
//
//	DATA_PATH=~/Bookhaven/data go run ./cmd/seed --email admin@example.com --password changeme
//	DATA_PATH=~/Bookhaven/data go run ./cmd/seed --email admin@example.com --password changeme --sample-catalog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bookhaven/bookhaven-server/internal/auth"
	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/id"
	"github.com/bookhaven/bookhaven-server/internal/store"
	"github.com/bookhaven/bookhaven-server/internal/store/sqlite"
)

var (
	email         = flag.String("email", "", "Admin email address (required)")
	password      = flag.String("password", "", "Admin password (required)")
	name          = flag.String("name", "Administrator", "Admin display name")
	sampleCatalog = flag.Bool("sample-catalog", false, "Also create sample authors and books")
)

func main() {
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Bookhaven/data")
	}

	dbPath := filepath.Join(dataPath, "catalog.db")
	fmt.Printf("Opening catalog database at: %s\n", dbPath)

	st, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	seedAdmin(ctx, st)

	if *sampleCatalog {
		seedCatalog(ctx, st)
	}
}

func seedAdmin(ctx context.Context, st *sqlite.Store) {
	passwordHash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &domain.User{
		Entity:       domain.Entity{ID: id.MustGenerate("user")},
		Email:        *email,
		PasswordHash: passwordHash,
		Name:         *name,
		Role:         domain.RoleAdmin,
	}
	user.InitTimestamps()

	if err := st.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			fmt.Printf("Admin account %s already exists, skipping\n", *email)
			return
		}
		log.Fatalf("Failed to create admin account: %v", err)
	}

	fmt.Printf("Created admin account %s (%s)\n", *email, user.ID)
}

func seedCatalog(ctx context.Context, st *sqlite.Store) {
	catalog := map[string][]string{
		"Frank Herbert":     {"Dune", "Dune Messiah", "Children of Dune"},
		"Ursula K. Le Guin": {"The Left Hand of Darkness", "The Dispossessed"},
		"Octavia E. Butler": {"Kindred", "Parable of the Sower"},
		"Stanislaw Lem":     {"Solaris"},
	}

	created := 0
	for authorName, titles := range catalog {
		author := &domain.Author{
			Entity: domain.Entity{ID: id.MustGenerate("author")},
			Name:   authorName,
		}
		author.InitTimestamps()

		if err := st.CreateAuthor(ctx, author); err != nil {
			log.Fatalf("Failed to create author %s: %v", authorName, err)
		}

		for _, title := range titles {
			book := &domain.Book{
				Entity:   domain.Entity{ID: id.MustGenerate("book")},
				Title:    title,
				AuthorID: author.ID,
			}
			book.InitTimestamps()

			if err := st.CreateBook(ctx, book); err != nil {
				log.Fatalf("Failed to create book %s: %v", title, err)
			}
			created++
		}
	}

	fmt.Printf("Created %d authors and %d books\n", len(catalog), created)
}
