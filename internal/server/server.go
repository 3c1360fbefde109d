package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pulseboard/api/internal/config"
	appmw "github.com/pulseboard/api/internal/middleware"
	"github.com/pulseboard/api/internal/modules/user"
	"github.com/pulseboard/api/internal/session"
)

// New creates and configures a new server instance.
func New(cfg *config.Config, log *slog.Logger, userService user.Service, sessions session.Provider) chi.Router {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	guard := appmw.NewAccessGuard(cfg.App.ProtectedPaths, cfg.App.SigninPath, sessions, log)
	router.Use(guard.Handler)

	api := humachi.New(router, huma.DefaultConfig("Pulseboard Auth API", "1.0.0"))

	userHandler := user.NewHandler(userService, log, cfg)
	userHandler.RegisterRoutes(api)

	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Description: "Responds with the server's health status.",
	}, func(ctx context.Context, input *struct{}) (*struct {
		Body struct {
			Status string `json:"status"`
		}
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status"`
			}
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	return router
}
