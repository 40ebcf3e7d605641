package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	wrapped := fmt.Errorf("delete post: %w", NotFound("post", 7))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, "delete post: post 7 not found", wrapped.Error())

	assert.True(t, IsForbidden(Forbidden("Only admins can create posts")))
	assert.True(t, IsValidation(Validation("username", "Username already exists")))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Validation("email", "Email already registered"), "Email already registered"},
		{&AuthError{Message: "Invalid username or password"}, "Invalid username or password"},
		{fmt.Errorf("wrap: %w", Forbidden("You can only delete your own comments")), "You can only delete your own comments"},
		{NotFound("post", 1), ""},
		{errors.New("disk full"), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err))
	}
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "username: taken", Validation("username", "taken").Error())
	assert.Equal(t, "taken", Validation("", "taken").Error())
}
