package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vaultpass/ecomkit-go/internal/config"
	"github.com/vaultpass/ecomkit-go/internal/handler"
	"github.com/vaultpass/ecomkit-go/internal/middleware"
	"github.com/vaultpass/ecomkit-go/internal/service"
)

// batchScope is the token scope required on batch routes when JWT_SECRET is set.
const batchScope = "batch"

// newRouter wires the middleware chain and every /api/v1 route. ctx bounds
// background work started by middleware.
func newRouter(ctx context.Context, cfg config.Config, recorder service.Recorder, audit bool) http.Handler {
	debug := !cfg.IsProduction()

	genService := service.NewGeneratorService(cfg.Password.GenerationConfig(), cfg.BatchWorkers, recorder)
	qrService := service.NewQRCodeService(recorder)

	passwordHandler := handler.NewPasswordHandler(genService, cfg.BodyLimitBytes, debug)
	qrHandler := handler.NewQRCodeHandler(qrService, cfg.BodyLimitBytes, debug)
	healthHandler := handler.NewHealthHandler(cfg.Env, audit)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.HandleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitWindow, cfg.RateLimitMaxRequests))

			r.Post("/password/generate", passwordHandler.HandleGenerate)
			r.Post("/password/ecommerce", passwordHandler.HandleEcommerce)
			r.Post("/password/validate", passwordHandler.HandleValidate)
			r.Post("/password/verify", passwordHandler.HandleVerify)
			r.Post("/qrcode/generate", qrHandler.HandleGenerate)
			r.Post("/qrcode/product", qrHandler.HandleProduct)

			r.Group(func(r chi.Router) {
				if cfg.JWTSecret != "" {
					r.Use(middleware.JWTAuth(cfg.JWTSecret, batchScope))
				}
				r.Post("/password/batch", passwordHandler.HandleBatch)
				r.Post("/qrcode/batch", qrHandler.HandleBatch)
			})
		})
	})

	return r
}
