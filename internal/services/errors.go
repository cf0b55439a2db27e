package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes.
var (
	ErrPaperNotFound    = errors.New("exam paper not found")
	ErrSectionNotFound  = errors.New("section not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSchoolNotFound   = errors.New("school not found")

	ErrInvalidLogin  = errors.New("invalid email or password")
	ErrEmailTaken    = errors.New("email already registered")
	ErrPaperConflict = errors.New("paper was modified by another save")
)

// PermissionError is returned when the acting user may not perform an
// operation on a resource.
type PermissionError struct {
	UserID   string
	Resource string
	ID       string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %s: %s", e.UserID, e.Action, e.Resource, e.ID, e.Reason)
}

func NewPermissionError(userID, resource, id, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		ID:       id,
		Action:   action,
		Reason:   reason,
	}
}

// IsPermissionError reports whether err is a permission failure.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// GenerationError wraps a content model failure. AI features degrade to an
// error response without touching paper state.
type GenerationError struct {
	Feature string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Feature, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func NewGenerationError(feature string, err error) *GenerationError {
	return &GenerationError{Feature: feature, Err: err}
}

// IsGenerationError reports whether err came from the content model.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
