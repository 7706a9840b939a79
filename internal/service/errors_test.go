package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded validation error", Coded(CodeValidationError, "bad input"), "VALIDATION_ERROR"},
		{"coded not found", Coded(CodeNotFound, "missing"), "NOT_FOUND"},
		{"wrapped coded error", fmt.Errorf("outer: %w", Coded(CodeConflict, "dupe")), "CONFLICT"},
		{"plain error", errors.New("boom"), "INTERNAL_ERROR"},
		{"wrapped plain error", fmt.Errorf("outer: %w", errors.New("boom")), "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestCodedMessage(t *testing.T) {
	err := Coded(CodeValidationError, "month %d out of range", 13)
	assert.EqualError(t, err, "month 13 out of range")
}
