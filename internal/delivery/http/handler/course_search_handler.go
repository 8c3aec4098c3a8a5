package handler

import (
	"errors"

	"tadreeb/internal/delivery/http/dto"
	"tadreeb/internal/delivery/http/middleware"
	"tadreeb/internal/pkg/response"
	"tadreeb/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type CourseSearchHandler struct {
	uc usecase.CourseSearchUsecase
}

func NewCourseSearchHandler(uc usecase.CourseSearchUsecase) *CourseSearchHandler {
	return &CourseSearchHandler{uc: uc}
}

func (h *CourseSearchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/courses/search", h.SearchByDomain)
}

func (h *CourseSearchHandler) SearchByDomain(c fiber.Ctx) error {
	domainID, err := uuid.Parse(c.Query("domain_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid domain_id", nil, err)
	}
	limit := parseQueryInt(c, "limit", 20)

	items, err := h.uc.SearchByDomain(c.Context(), domainID, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid domain_id", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	out := make([]dto.CourseSearchResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.CourseSearchResponse{
			CourseID:        it.CourseID,
			Name:            it.Name,
			Description:     it.Description,
			URL:             it.URL,
			DifficultyLevel: it.DifficultyLevel,
			Language:        it.Language,
			Subject:         it.Subject,
			Provider:        it.Provider,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
