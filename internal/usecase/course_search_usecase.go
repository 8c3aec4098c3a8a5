package usecase

import (
	"context"
	"fmt"

	"tadreeb/internal/repository"
	"tadreeb/internal/search"

	"github.com/google/uuid"
)

type CourseSearchItem struct {
	CourseID        uuid.UUID `json:"course_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	DifficultyLevel string    `json:"difficulty_level"`
	Language        string    `json:"language"`
	Subject         string    `json:"subject"`
	Provider        string    `json:"provider"`
}

type CourseSearchUsecase interface {
	SearchByDomain(ctx context.Context, domainID uuid.UUID, limit int) ([]CourseSearchItem, error)
}

// CourseSearch is the domain-scoped, text-matching search path. It is the
// consumer of the synonym resolver; the graph recommendation query never
// matches on text.
type CourseSearch struct {
	resolver *search.Resolver
	courses  repository.CourseRepository
}

func NewCourseSearchUsecase(resolver *search.Resolver, courses repository.CourseRepository) *CourseSearch {
	return &CourseSearch{resolver: resolver, courses: courses}
}

func (u *CourseSearch) SearchByDomain(ctx context.Context, domainID uuid.UUID, limit int) ([]CourseSearchItem, error) {
	if domainID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	terms := u.resolver.Expand(ctx, []uuid.UUID{domainID})[domainID]
	if len(terms) == 0 {
		return []CourseSearchItem{}, nil
	}

	courses, err := u.courses.SearchByTerms(ctx, terms, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	out := make([]CourseSearchItem, 0, len(courses))
	for _, c := range courses {
		out = append(out, CourseSearchItem{
			CourseID:        c.ID,
			Name:            c.Name,
			Description:     c.Description,
			URL:             c.URL,
			DifficultyLevel: c.DifficultyLevel,
			Language:        c.Language,
			Subject:         c.Subject,
			Provider:        c.Provider,
		})
	}
	return out, nil
}

var _ CourseSearchUsecase = (*CourseSearch)(nil)
