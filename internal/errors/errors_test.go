package errors

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeResourceBusy, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	err := NotFound("book not found")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))
}

func TestError_Is_WrappedCause(t *testing.T) {
	err := Conflict("book already borrowed").WithCause(io.ErrUnexpectedEOF)

	assert.True(t, Is(err, ErrConflict))
	assert.True(t, Is(err, io.ErrUnexpectedEOF))
}

func TestError_ErrorIncludesCause(t *testing.T) {
	err := Internal("query failed").WithCause(io.ErrUnexpectedEOF)

	assert.Equal(t, "query failed: unexpected EOF", err.Error())
	assert.Equal(t, io.ErrUnexpectedEOF, Unwrap(err))
}

func TestError_ErrorWithoutCause(t *testing.T) {
	err := Validation("title is required")

	assert.Equal(t, "title is required", err.Error())
	assert.Nil(t, Unwrap(err))
}

func TestConstructors_Formatting(t *testing.T) {
	err := NotFoundf("book %s not found", "book-123")
	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, "book book-123 not found", err.Message)

	err = Validationf("page must be >= %d", 1)
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "page must be >= 1", err.Message)
}

func TestWrap(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, CodeInternal, "read failed")

	assert.Equal(t, CodeInternal, err.Code)
	assert.True(t, Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestAs_ExtractsDomainError(t *testing.T) {
	var err error = ResourceBusy("book is being processed")

	var domainErr *Error
	assert.True(t, As(err, &domainErr))
	assert.Equal(t, CodeResourceBusy, domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus())
}
