package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")

	// ErrNoAssessment means the user has no analyzed assessment yet, so no
	// recommendation can exist. Distinct from an empty match set.
	ErrNoAssessment = errors.New("no assessment analyzed yet")

	// ErrRecommendationUnavailable means the graph source could not be
	// queried. Callers may retry; it must never read as "no matches".
	ErrRecommendationUnavailable = errors.New("recommendation source unavailable")

	ErrCourseNotFound = errors.New("course not found")
	ErrUserNotFound   = errors.New("user not found")
)
