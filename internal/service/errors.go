package service

import "errors"

// Domain errors surfaced to handlers.
var (
	// ErrValidation marks recoverable input problems; wrap it with a reason.
	ErrValidation = errors.New("validation failed")
	// ErrPaperNotFound indicates the referenced paper does not exist.
	ErrPaperNotFound = errors.New("paper not found")
	// ErrSubmissionNotFound indicates the submission group has no rows.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrDuplicateSubmission indicates the student already submitted for the paper.
	ErrDuplicateSubmission = errors.New("you have already submitted a solution for this paper")
	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates a rename target that is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrReportNotReady indicates the group has not been graded yet.
	ErrReportNotReady = errors.New("submission has not been graded yet")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid username, password or role")
	// ErrForbidden indicates the actor may not access the resource.
	ErrForbidden = errors.New("access denied")
	// ErrFileNotFound indicates the blob reference cannot be resolved.
	ErrFileNotFound = errors.New("file not found")
)
