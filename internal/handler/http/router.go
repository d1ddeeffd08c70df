package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-finalization-go/internal/config"
	"github.com/cmlabs-hris/hris-finalization-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/idempotency"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(cfg *config.Config, JWTService jwt.Service, finalizationHandler FinalizationHandler, idempotencyStore *idempotency.Store) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-finalization"),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", idempotency.HeaderKey},
		ExposedHeaders:   []string{"Link", idempotency.HeaderReplayed},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.SlogLevel(),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireCompany)

			r.Route("/time-finalizations", func(r chi.Router) {
				r.Get("/", finalizationHandler.ListFinalizations)
				r.Get("/{id}", finalizationHandler.GetFinalization)

				r.With(middleware.RequireFinalizer, middleware.Idempotency(idempotencyStore)).
					Post("/", finalizationHandler.Finalize)
			})
		})
	})

	return r
}
