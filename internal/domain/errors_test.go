package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("Branding Identities")
	assert.True(t, ok)
	assert.Equal(t, CategoryBranding, c)

	c, ok = ParseCategory("All")
	assert.True(t, ok)
	assert.Equal(t, CategoryAll, c)
	assert.False(t, c.IsConcrete())

	_, ok = ParseCategory("branding identities")
	assert.False(t, ok, "matching is exact")
}

func TestFilterTabs(t *testing.T) {
	tabs := FilterTabs()
	assert.Len(t, tabs, 6)
	assert.Equal(t, CategoryAll, tabs[0])
	assert.Equal(t, CategoryOther, tabs[5])
}

func TestGatewayErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("delete: %w", &GatewayError{Op: "storage.remove", Err: ErrNotFound})
	assert.True(t, IsNotFound(err))

	var gerr *GatewayError
	assert.True(t, errors.As(err, &gerr))
	assert.Equal(t, "storage.remove", gerr.Op)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "File size must be less than 50 MB",
		UserMessage(&ValidationError{Field: "file", Message: "File size must be less than 50 MB"}))
	assert.Equal(t, "That item no longer exists.", UserMessage(&GatewayError{Op: "rows.delete", Err: ErrNotFound}))
	assert.Equal(t, "Something went wrong: boom", UserMessage(&GatewayError{Op: "rows.list", Err: errors.New("boom")}))
	assert.Contains(t, UserMessage(&PathResolutionError{URL: "https://elsewhere/x.png"}), "storage")
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(errors.New("x")))
}

func TestUserMessageConflicts(t *testing.T) {
	assert.Equal(t, "An account with that email already exists.", UserMessage(ErrAccountExists))
	assert.True(t, errors.Is(ErrAccountExists, ErrConflict))

	collision := &GatewayError{Op: "storage.upload", Err: fmt.Errorf("object %q: %w", "logo-collection/a.png", ErrConflict)}
	msg := UserMessage(collision)
	assert.NotContains(t, msg, "account")
	assert.Equal(t, "A file with that name already exists. Please try again.", msg)
}
