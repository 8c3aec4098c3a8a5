package handler

import (
	"context"
	"errors"
	"log"
	"time"

	"tadreeb/internal/delivery/http/dto"
	"tadreeb/internal/delivery/http/middleware"
	"tadreeb/internal/pkg/response"
	"tadreeb/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const bulkSyncTimeout = 30 * time.Minute

type GraphSyncHandler struct {
	uc     usecase.GraphSyncUsecase
	logger *log.Logger
}

func NewGraphSyncHandler(uc usecase.GraphSyncUsecase, logger *log.Logger) *GraphSyncHandler {
	return &GraphSyncHandler{uc: uc, logger: logger}
}

func (h *GraphSyncHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/graph/sync")
	grp.Post("/", h.SyncAll)
	grp.Post("/courses/:id", h.SyncCourse)
	grp.Post("/users/:id/needs", h.SyncUserNeeds)
	grp.Get("/status", h.Status)
}

// SyncAll kicks off the repair pass in the background; progress is observable
// over the sync websocket and through the status endpoint.
func (h *GraphSyncHandler) SyncAll(c fiber.Ctx) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), bulkSyncTimeout)
		defer cancel()
		if _, err := h.uc.SyncAllCourses(ctx); err != nil && h.logger != nil {
			h.logger.Printf("[GraphSync] bulk sync error | err=%v", err)
		}
	}()
	return response.Success(c, fiber.StatusAccepted, "sync started", nil)
}

func (h *GraphSyncHandler) SyncCourse(c fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid course id", nil, err)
	}

	if err := h.uc.SyncCourse(c.Context(), courseID); err != nil {
		switch {
		case errors.Is(err, usecase.ErrCourseNotFound):
			return middleware.NewAppError(fiber.StatusNotFound, "Course not found", nil, err)
		case errors.Is(err, usecase.ErrInvalidInput):
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid course id", nil, err)
		default:
			return middleware.NewAppError(fiber.StatusServiceUnavailable, "Course sync failed, will retry on next pass", nil, err)
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *GraphSyncHandler) SyncUserNeeds(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid user id", nil, err)
	}

	if err := h.uc.SyncUserNeeds(c.Context(), userID); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
		case errors.Is(err, usecase.ErrInvalidInput):
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid user id", nil, err)
		default:
			return middleware.NewAppError(fiber.StatusServiceUnavailable, "Needs sync failed", nil, err)
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *GraphSyncHandler) Status(c fiber.Ctx) error {
	status, err := h.uc.Status(c.Context())
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SyncStatusResponse{
		SyncedCourses:   status.SyncedCourses,
		UnsyncedCourses: status.UnsyncedCourses,
	})
}
