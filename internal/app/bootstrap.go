package app

import (
	"fmt"
	"strings"

	"tadreeb/internal/delivery/http/handler"
	"tadreeb/internal/delivery/http/middleware"
	"tadreeb/internal/delivery/http/routes"
	"tadreeb/internal/pkg/jwt"
	"tadreeb/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	errMw := middleware.NewErrorMiddleware()
	f.Use(errMw.Middleware())
	f.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())

	health := handler.NewHealthHandler(c.DB)
	f.Get("/health", health.Handle)

	wsHandler := ws.NewHandler(c.Hub, c.Logger)
	f.Get("/ws/sync", wsHandler.HandleSyncWS)

	auth := middleware.NewAuthMiddleware(jwt.NewHMACService(c.Config.JWT.AccessSecret))
	routes.RegisterV1(f, routes.V1Handlers{
		Auth:            auth,
		Recommendations: handler.NewRecommendationHandler(c.Recommendations),
		CourseSearch:    handler.NewCourseSearchHandler(c.CourseSearch),
		GraphSync:       handler.NewGraphSyncHandler(c.GraphSync, c.Logger),
	})

	return &App{Fiber: f, Container: c}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
