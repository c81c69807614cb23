package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Precondition violations: the caller attempted an operation whose
// prerequisite state does not hold.
var (
	ErrTenantMismatch  = errors.New("user does not belong to the circle's tenant")
	ErrNotCircleMember = errors.New("user is not a member of the circle")
	ErrNotParticipant  = errors.New("user has no open participation in the challenge")
)

// Conflict violations: a uniqueness or state invariant was about to be
// broken. Detected at the same atomic boundary as the write.
var (
	ErrAlreadyMember    = errors.New("user already joined the circle")
	ErrAlreadyJoined    = errors.New("user already joined the challenge")
	ErrAlreadyReviewed  = errors.New("submission has already been reviewed")
	ErrReviewInProgress = errors.New("a submission for this challenge is already under review")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapErrorToStatus maps stable error kinds to HTTP status codes
func MapErrorToStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrTenantMismatch) || errors.Is(err, ErrNotCircleMember) || errors.Is(err, ErrNotParticipant) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrAlreadyMember) || errors.Is(err, ErrAlreadyJoined) ||
		errors.Is(err, ErrAlreadyReviewed) || errors.Is(err, ErrReviewInProgress) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrRateLimitExceeded) {
		return http.StatusTooManyRequests
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
