package service

import "errors"

// Sentinel errors returned by the lifecycle services. Handlers translate them
// into transport statuses.
var (
	// ErrAssignmentNotFound covers both a missing assignment and one owned by
	// a different tutor on ownership-scoped operations, so callers cannot
	// probe for existence.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrNotAssigned indicates a student acting on an assignment they are not
	// rostered on.
	ErrNotAssigned = errors.New("assignment not found or you are not assigned to it")

	// ErrNotAuthorized indicates a tutor viewing an assignment they do not own.
	ErrNotAuthorized = errors.New("you are not authorized to view this assignment")

	// ErrInvalidStudents indicates a roster request naming ids that do not
	// resolve to existing students.
	ErrInvalidStudents = errors.New("some student ids are invalid")

	// ErrDuplicateSubmission indicates a second submission for a pair.
	ErrDuplicateSubmission = errors.New("submission already exists")

	// ErrSubmissionNotFound indicates grading a pair without a submission.
	ErrSubmissionNotFound = errors.New("submission not found")
)
