package routes

import (
	"tadreeb/internal/delivery/http/handler"
	"tadreeb/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type V1Handlers struct {
	Auth            *middleware.AuthMiddleware
	Recommendations *handler.RecommendationHandler
	CourseSearch    *handler.CourseSearchHandler
	GraphSync       *handler.GraphSyncHandler
}

func RegisterV1(app *fiber.App, h V1Handlers) {
	if app == nil || h.Auth == nil {
		return
	}

	v1 := app.Group("/api/v1", h.Auth.Middleware())

	if h.Recommendations != nil {
		h.Recommendations.RegisterRoutes(v1)
	}
	if h.CourseSearch != nil {
		h.CourseSearch.RegisterRoutes(v1)
	}

	if h.GraphSync != nil {
		admin := v1.Group("/admin", h.Auth.RequireAdmin())
		h.GraphSync.RegisterRoutes(admin)
	}
}
