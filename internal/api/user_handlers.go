package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/store"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's information",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns all user accounts (admin only)",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyBorrowedBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/borrowed",
		Summary:     "My borrowed books",
		Description: "Returns the authenticated user's open loans",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyBorrowedBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyBorrowHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/history",
		Summary:     "My borrow history",
		Description: "Returns every loan the authenticated user has opened, including closed ones",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyBorrowHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserBorrowedBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/borrowed",
		Summary:     "User's borrowed books",
		Description: "Returns a user's open loans (admin only)",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUserBorrowedBooks)
}

// === DTOs ===

// AuthenticatedInput carries credentials only.
type AuthenticatedInput struct {
	AuthParams
}

// UserPathInput identifies a user account.
type UserPathInput struct {
	AuthParams
	ID string `path:"id" doc:"User ID"`
}

// ListUsersInput carries credentials and pagination for the account listing.
type ListUsersInput struct {
	AuthParams
	Page  int `query:"page" default:"1" minimum:"1" doc:"Page number"`
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"100" doc:"Page size"`
}

// UserOutput wraps a single user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UserListOutput wraps a paginated user listing for Huma.
type UserListOutput struct {
	Body store.Paginated[UserResponse]
}

// BorrowRecordListOutput wraps a loan listing for Huma.
type BorrowRecordListOutput struct {
	Body []BorrowRecordResponse
}

func toBorrowRecordListOutput(records []*domain.BorrowRecord) *BorrowRecordListOutput {
	items := make([]BorrowRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, toBorrowRecordResponse(record))
	}
	return &BorrowRecordListOutput{Body: items}
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *AuthenticatedInput) (*UserOutput, error) {
	claims, err := s.authenticateRequest(input.AuthParams)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*UserListOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.AuthParams); err != nil {
		return nil, err
	}

	page, err := s.services.User.ListUsers(ctx, store.Pagination{Page: input.Page, Limit: input.Limit})
	if err != nil {
		return nil, err
	}

	items := make([]UserResponse, 0, len(page.Items))
	for _, user := range page.Items {
		items = append(items, toUserResponse(user))
	}

	return &UserListOutput{Body: store.Paginated[UserResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}}, nil
}

func (s *Server) handleGetMyBorrowedBooks(ctx context.Context, input *AuthenticatedInput) (*BorrowRecordListOutput, error) {
	claims, err := s.authenticateRequest(input.AuthParams)
	if err != nil {
		return nil, err
	}

	records, err := s.services.User.BorrowedBooks(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return toBorrowRecordListOutput(records), nil
}

func (s *Server) handleGetMyBorrowHistory(ctx context.Context, input *AuthenticatedInput) (*BorrowRecordListOutput, error) {
	claims, err := s.authenticateRequest(input.AuthParams)
	if err != nil {
		return nil, err
	}

	records, err := s.services.User.BorrowHistory(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return toBorrowRecordListOutput(records), nil
}

func (s *Server) handleGetUserBorrowedBooks(ctx context.Context, input *UserPathInput) (*BorrowRecordListOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.AuthParams); err != nil {
		return nil, err
	}

	// The target user must exist so a bad ID reads as 404, not an empty list.
	if _, err := s.services.User.GetUser(ctx, input.ID); err != nil {
		return nil, err
	}

	records, err := s.services.User.BorrowedBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return toBorrowRecordListOutput(records), nil
}
