package util

import "errors"

// Expected quiz flow conditions. Controllers translate each one into a
// specific user-facing message; none of them is logged as critical.
var (
	ErrTestNotFound      = errors.New("test not found")
	ErrTestInactive      = errors.New("test is not active")
	ErrNoQuestions       = errors.New("test has no questions")
	ErrAlreadyInProgress = errors.New("quiz already in progress")
	ErrSessionExpired    = errors.New("quiz session expired")
	ErrQuestionMismatch  = errors.New("answer does not match the current question")
	ErrInvalidTest       = errors.New("test cannot be scored")
	ErrPersistenceFailed = errors.New("failed to save quiz attempt")

	ErrUserNotFound     = errors.New("user not found")
	ErrUserBlocked      = errors.New("user is blocked")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidAnswer    = errors.New("answer shape does not match question type")
)
