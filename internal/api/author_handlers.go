package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/service"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Description: "Returns all authors in the catalog",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Description: "Returns a single author by ID",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "createAuthor",
		Method:      http.MethodPost,
		Path:        "/api/v1/authors",
		Summary:     "Create author",
		Description: "Adds an author to the catalog (admin only)",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAuthor",
		Method:      http.MethodPut,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Update author",
		Description: "Updates an author's name and bio (admin only)",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAuthor",
		Method:      http.MethodDelete,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Delete author",
		Description: "Removes an author and all their books (admin only)",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAuthor)
}

// === DTOs ===

// AuthorResponse contains author information in API responses.
type AuthorResponse struct {
	ID        string    `json:"id" doc:"Author ID"`
	Name      string    `json:"name" doc:"Author name"`
	Bio       string    `json:"bio,omitempty" doc:"Author biography"`
	CreatedAt time.Time `json:"createdAt" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updatedAt" doc:"Last update timestamp"`
}

// AuthorRequest is the request body for creating or updating an author.
type AuthorRequest struct {
	Name string `json:"name" doc:"Author name"`
	Bio  string `json:"bio,omitempty" doc:"Author biography"`
}

// GetAuthorInput identifies an author without requiring credentials.
type GetAuthorInput struct {
	ID string `path:"id" doc:"Author ID"`
}

// CreateAuthorInput wraps the create request for Huma.
type CreateAuthorInput struct {
	AuthParams
	Body AuthorRequest
}

// UpdateAuthorInput wraps the update request for Huma.
type UpdateAuthorInput struct {
	AuthParams
	ID   string `path:"id" doc:"Author ID"`
	Body AuthorRequest
}

// DeleteAuthorInput identifies an author for deletion.
type DeleteAuthorInput struct {
	AuthParams
	ID string `path:"id" doc:"Author ID"`
}

// AuthorOutput wraps a single author response for Huma.
type AuthorOutput struct {
	Body AuthorResponse
}

// AuthorListOutput wraps an author listing for Huma.
type AuthorListOutput struct {
	Body []AuthorResponse
}

func toAuthorResponse(author *domain.Author) AuthorResponse {
	return AuthorResponse{
		ID:        author.ID,
		Name:      author.Name,
		Bio:       author.Bio,
		CreatedAt: author.CreatedAt,
		UpdatedAt: author.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*AuthorListOutput, error) {
	authors, err := s.services.Author.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]AuthorResponse, 0, len(authors))
	for _, author := range authors {
		items = append(items, toAuthorResponse(author))
	}

	return &AuthorListOutput{Body: items}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *GetAuthorInput) (*AuthorOutput, error) {
	author, err := s.services.Author.GetAuthor(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: toAuthorResponse(author)}, nil
}

func (s *Server) handleCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.AuthParams); err != nil {
		return nil, err
	}

	author, err := s.services.Author.CreateAuthor(ctx, service.CreateAuthorRequest{
		Name: input.Body.Name,
		Bio:  input.Body.Bio,
	})
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: toAuthorResponse(author)}, nil
}

func (s *Server) handleUpdateAuthor(ctx context.Context, input *UpdateAuthorInput) (*AuthorOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.AuthParams); err != nil {
		return nil, err
	}

	author, err := s.services.Author.UpdateAuthor(ctx, input.ID, service.UpdateAuthorRequest{
		Name: input.Body.Name,
		Bio:  input.Body.Bio,
	})
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: toAuthorResponse(author)}, nil
}

func (s *Server) handleDeleteAuthor(ctx context.Context, input *DeleteAuthorInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.AuthParams); err != nil {
		return nil, err
	}

	if err := s.services.Author.DeleteAuthor(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Author deleted"}}, nil
}
