package publishing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrNotFound indicates an item was not found
	ErrNotFound = errors.New("item not found")

	// ErrNotAuthorised indicates the caller lacks the required permission
	ErrNotAuthorised = errors.New("not authorised")

	// ErrNotAuthenticated indicates the caller has no session
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidPreviewToken indicates a preview token failed verification
	ErrInvalidPreviewToken = errors.New("invalid preview token")
)

// DuplicateSlugError is returned when publishing would give two items the
// same slug in their pending or published revisions.
type DuplicateSlugError struct {
	Kind   Kind
	ItemID uuid.UUID
	Slug   string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("%s %s already uses slug %q", e.Kind, e.ItemID, e.Slug)
}

// UserInputError reports malformed or contradictory arguments.
type UserInputError struct {
	Message string
}

func (e *UserInputError) Error() string {
	return e.Message
}

func userInput(format string, args ...interface{}) error {
	return &UserInputError{Message: fmt.Sprintf(format, args...)}
}

// ItemError represents an error related to item operations
type ItemError struct {
	ItemID uuid.UUID
	Op     string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item operation %s failed for item %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// IsUserInput reports whether err is or wraps a *UserInputError.
func IsUserInput(err error) bool {
	var target *UserInputError
	return errors.As(err, &target)
}

// IsDuplicateSlug reports whether err is or wraps a *DuplicateSlugError.
func IsDuplicateSlug(err error) bool {
	var target *DuplicateSlugError
	return errors.As(err, &target)
}
