package handler

import (
	"errors"
	"strconv"

	"tadreeb/internal/delivery/http/dto"
	"tadreeb/internal/delivery/http/middleware"
	"tadreeb/internal/pkg/response"
	"tadreeb/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RecommendationHandler struct {
	uc usecase.RecommendationUsecase
}

func NewRecommendationHandler(uc usecase.RecommendationUsecase) *RecommendationHandler {
	return &RecommendationHandler{uc: uc}
}

func (h *RecommendationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/recommendations", h.GetRecommendations)
}

func (h *RecommendationHandler) GetRecommendations(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	limit := parseQueryInt(c, "limit", 0)

	result, err := h.uc.Recommend(c.Context(), userID, limit)
	if err != nil {
		return mapRecommendationError(err)
	}

	courses := make([]dto.RecommendedCourseResponse, 0, len(result.Courses))
	for _, rc := range result.Courses {
		courses = append(courses, dto.RecommendedCourseResponse{
			CourseID:            rc.CourseID,
			Name:                rc.Name,
			Description:         rc.Description,
			URL:                 rc.URL,
			DifficultyLevel:     rc.DifficultyLevel,
			Language:            rc.Language,
			Subject:             rc.Subject,
			Provider:            rc.Provider,
			AISummary:           rc.AISummary,
			SkillNames:          rc.SkillNames,
			RecommendationScore: rc.RecommendationScore,
			MatchingSkills:      rc.MatchingSkills,
			MaxPriority:         rc.MaxPriority,
		})
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RecommendationResponse{
		QueryPath: result.QueryPath,
		Courses:   courses,
	})
}

func parseQueryInt(c fiber.Ctx, key string, defaultVal int) int {
	s := c.Query(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func mapRecommendationError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrNoAssessment):
		return middleware.NewAppError(fiber.StatusNotFound, "No assessment analyzed yet", nil, err)
	case errors.Is(err, usecase.ErrRecommendationUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Recommendation service unavailable", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
