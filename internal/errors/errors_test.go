package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is_MatchesByCode(t *testing.T) {
	err := NotFoundf("directory %q not found", "/tmp/x")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))
}

func TestError_WrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("lstat: no such file")
	err := Wrap(cause, CodeVanished, "entry vanished during refresh")

	assert.Equal(t, cause, Unwrap(err))
	assert.Contains(t, err.Error(), "lstat")
	assert.True(t, Is(err, ErrVanished))
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeVanished, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeStaleGeneration, http.StatusGone},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_WithDetails(t *testing.T) {
	err := ValidationWithDetails("bad request", map[string]string{"field": "path"})
	assert.Equal(t, CodeValidation, err.Code)
	assert.NotNil(t, err.Details)

	var domainErr *Error
	assert.True(t, As(err, &domainErr))
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
}
